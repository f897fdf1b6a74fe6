package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/adrianbeloqui/zendesk-jira-migrator/cmd/zjm/commands"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
)

const version = "0.1.0"

func main() {
	configPath := os.Getenv("ZJM_CONFIG")
	jsonOutput := false

	// Global flags
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 < len(args) {
				configPath = args[i+1]
				args = append(args[:i], args[i+2:]...)
				i--
			}
		case "--json":
			jsonOutput = true
			args = append(args[:i], args[i+1:]...)
			i--
		case "--version", "-v":
			fmt.Println("zjm version", version)
			os.Exit(0)
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		}
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	output.Format = cfg.Output
	if jsonOutput {
		output.Format = "json"
	}

	logger, err := output.Logger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := "menu"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "migrate":
		err = commands.Migrate(ctx, cfg, args)
	case "notify":
		err = commands.Notify(ctx, cfg, args)
	case "records":
		err = commands.Records(ctx, cfg, args)
	case "job":
		err = commands.Job(ctx, cfg, args)
	case "doctor":
		err = commands.Doctor(ctx, cfg, args)
	case "menu":
		err = commands.Menu(ctx, cfg, os.Stdin)
	case "completion":
		err = commands.Completion(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`zjm - Zendesk to JIRA ticket migrator

Usage:
  zjm [command] [flags]

Commands:
  migrate      Migrate the tickets of the configured views (--dry-run to preview)
  notify       Notify the requesters of migrated tickets
  records      List migrated tickets
  job          Show a bulk update job status
  doctor       Check credentials, views, project and storage before migrating
  menu         Interactive menu (default)
  completion   Generate shell completions

Global Flags:
  --config <path>  YAML configuration file (default: $ZJM_CONFIG)
  --json           Output as JSON
  --version        Show version
  --help           Show help

Environment Variables:
  ZENDESK_SUBDOMAIN  Zendesk subdomain (or ZENDESK_URL)
  ZENDESK_USER       Zendesk user email
  ZENDESK_PASSWORD   Zendesk password (or ZENDESK_TOKEN)
  ZENDESK_VIEWS      Comma separated view IDs to migrate
  JIRA_URL           JIRA base URL
  JIRA_USER          JIRA user
  JIRA_PASSWORD      JIRA password
  JIRA_PROJECT_KEY   Project receiving the issues
  ZJM_STORE          Record store URL (file://, redis://, postgres://)
  ZJM_ARCHIVE_*      Optional S3 compatible attachment archive (ENDPOINT, BUCKET, ACCESS_KEY, SECRET_KEY, USE_SSL)
  ZJM_OUTPUT         Default output format (table|json)
  ZJM_LOG_LEVEL      Log level (debug|info|warn|error)
`)
}
