package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
)

// Completion prints a shell completion script.
func Completion(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("shell type required\n\nUsage: zjm completion <bash|zsh|fish>")
	}

	switch args[0] {
	case "bash":
		fmt.Fprint(output.Stdout, bashCompletion())
	case "zsh":
		fmt.Fprint(output.Stdout, zshCompletion())
	case "fish":
		fmt.Fprint(output.Stdout, fishCompletion())
	default:
		return fmt.Errorf("unsupported shell: %s\n\nSupported: bash, zsh, fish", args[0])
	}
	return nil
}

type commandSpec struct {
	description string
	flags       []string
}

var commandSpecs = map[string]commandSpec{
	"migrate":    {"Migrate the tickets of the configured views", []string{"--dry-run", "--views"}},
	"notify":     {"Notify the requesters of migrated tickets", nil},
	"records":    {"List migrated tickets", nil},
	"job":        {"Show a bulk update job status", nil},
	"doctor":     {"Check the setup before migrating", nil},
	"menu":       {"Interactive menu", nil},
	"completion": {"Generate shell completions", nil},
}

var globalFlags = []string{"--config", "--json", "--version", "--help"}

func commandNames() []string {
	names := make([]string, 0, len(commandSpecs))
	for k := range commandSpecs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func bashCompletion() string {
	var b strings.Builder
	b.WriteString(`_zjm() {
    local cur
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"

    if [ ${COMP_CWORD} -eq 1 ]; then
        COMPREPLY=($(compgen -W "` + strings.Join(commandNames(), " ") + " " + strings.Join(globalFlags, " ") + `" -- "${cur}"))
        return 0
    fi

    case "${COMP_WORDS[1]}" in
`)
	for _, cmd := range commandNames() {
		words := strings.Join(append(append([]string(nil), commandSpecs[cmd].flags...), globalFlags...), " ")
		if cmd == "completion" {
			words = "bash zsh fish"
		}
		fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W \"%s\" -- \"${cur}\")) ;;\n", cmd, words)
	}
	b.WriteString(`    esac
    return 0
}
complete -F _zjm zjm
`)
	return b.String()
}

func zshCompletion() string {
	var b strings.Builder
	b.WriteString("#compdef zjm\n\n_zjm() {\n    local -a commands\n    commands=(\n")
	for _, cmd := range commandNames() {
		fmt.Fprintf(&b, "        '%s:%s'\n", cmd, commandSpecs[cmd].description)
	}
	b.WriteString(`    )

    _arguments -C \
        '--config[YAML configuration file]:file:_files' \
        '--json[Output as JSON]' \
        '--version[Show version]' \
        '--help[Show help]' \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
    command)
        _describe 'command' commands
        ;;
    args)
        case $words[1] in
        migrate)
            _arguments '--dry-run[Preview without changes]' '--views[Comma separated view IDs]:views'
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
        esac
        ;;
    esac
}

_zjm "$@"
`)
	return b.String()
}

func fishCompletion() string {
	var b strings.Builder
	b.WriteString("# Fish completion for zjm\n\ncomplete -c zjm -f\n\n")
	for _, f := range globalFlags {
		fmt.Fprintf(&b, "complete -c zjm -l %s\n", strings.TrimPrefix(f, "--"))
	}
	b.WriteString("\n")
	for _, cmd := range commandNames() {
		spec := commandSpecs[cmd]
		fmt.Fprintf(&b, "complete -c zjm -n '__fish_use_subcommand' -a %s -d '%s'\n", cmd, spec.description)
		for _, f := range spec.flags {
			fmt.Fprintf(&b, "complete -c zjm -n '__fish_seen_subcommand_from %s' -l %s\n", cmd, strings.TrimPrefix(f, "--"))
		}
	}
	for _, shell := range []string{"bash", "zsh", "fish"} {
		fmt.Fprintf(&b, "complete -c zjm -n '__fish_seen_subcommand_from completion' -a %s\n", shell)
	}
	return b.String()
}
