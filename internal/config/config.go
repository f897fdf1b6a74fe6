package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// .env in the working directory is loaded before Load reads the environment.
	_ "github.com/joho/godotenv/autoload"
)

const (
	defaultIssueType    = "Story"
	defaultBatchSize    = 100
	maxBatchSize        = 100
	defaultPollInterval = time.Second
	defaultMaxRounds    = 600
)

// Endpoint holds what is needed to reach one remote API.
type Endpoint struct {
	URL                string
	User               string
	Password           string
	InsecureSkipVerify bool
}

// ZendeskConfig holds helpdesk settings.
type ZendeskConfig struct {
	Subdomain string
	URL       string // overrides the subdomain derived URL
	User      string
	Password  string
	Token     string // API token, used instead of Password when set
	Views     []int64
}

// JiraConfig holds issue tracker settings.
type JiraConfig struct {
	URL                string
	User               string
	Password           string
	ProjectKey         string
	IssueType          string
	InsecureSkipVerify bool
}

// TrackerConfig tunes the bulk update job tracker.
type TrackerConfig struct {
	BatchSize    int
	PollInterval time.Duration
	MaxRounds    int
}

// Templates holds the text/template sources of the notes added to tickets.
type Templates struct {
	MigratedNote    string
	RequesterNotice string
	Signature       string
}

// ArchiveConfig locates the optional attachment archive.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Config holds CLI configuration.
type Config struct {
	Zendesk      ZendeskConfig
	Jira         JiraConfig
	Tracker      TrackerConfig
	Templates    Templates
	Archive      ArchiveConfig
	DownloadPath string
	DataPath     string
	Store        string // record store URL, empty for the file store
	Output       string // "table", "json"
	LogLevel     string
}

// DefaultMigratedNote is the private note added to migrated tickets.
const DefaultMigratedNote = "This ticket has been migrated to JIRA, issue {{.IssueKey}}"

// DefaultRequesterNotice is the public comment sent to requesters.
const DefaultRequesterNotice = "Dear Requester, \n\n " +
	"This is an update to let you know that we have migrated to JIRA. " +
	"Your card number is {{.IssueKey}}. \n\n " +
	"Thank you, \n{{.Signature}}"

// Load reads configuration from the YAML file named by ZJM_CONFIG, if any,
// and from environment variables.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("ZJM_CONFIG"))
}

// LoadFrom builds the configuration from defaults, then the YAML file at
// path (skipped when empty), then environment variables, which win.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		Jira: JiraConfig{IssueType: defaultIssueType},
		Tracker: TrackerConfig{
			BatchSize:    defaultBatchSize,
			PollInterval: defaultPollInterval,
			MaxRounds:    defaultMaxRounds,
		},
		Templates: Templates{
			MigratedNote:    DefaultMigratedNote,
			RequesterNotice: DefaultRequesterNotice,
			Signature:       "MIB Team",
		},
		DownloadPath: "tmp",
		DataPath:     "data",
		Output:       "table",
		LogLevel:     "info",
	}

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Zendesk.Subdomain, "ZENDESK_SUBDOMAIN")
	setString(&c.Zendesk.URL, "ZENDESK_URL")
	setString(&c.Zendesk.User, "ZENDESK_USER")
	setString(&c.Zendesk.Password, "ZENDESK_PASSWORD")
	setString(&c.Zendesk.Token, "ZENDESK_TOKEN")
	if v := os.Getenv("ZENDESK_VIEWS"); v != "" {
		views, err := ParseViews(v)
		if err != nil {
			return fmt.Errorf("ZENDESK_VIEWS: %w", err)
		}
		c.Zendesk.Views = views
	}

	setString(&c.Jira.URL, "JIRA_URL")
	setString(&c.Jira.User, "JIRA_USER")
	setString(&c.Jira.Password, "JIRA_PASSWORD")
	setString(&c.Jira.ProjectKey, "JIRA_PROJECT_KEY")
	setString(&c.Jira.IssueType, "JIRA_ISSUE_TYPE")
	if v := os.Getenv("JIRA_INSECURE_SKIP_VERIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("JIRA_INSECURE_SKIP_VERIFY: %w", err)
		}
		c.Jira.InsecureSkipVerify = b
	}

	setString(&c.Archive.Endpoint, "ZJM_ARCHIVE_ENDPOINT")
	setString(&c.Archive.AccessKey, "ZJM_ARCHIVE_ACCESS_KEY")
	setString(&c.Archive.SecretKey, "ZJM_ARCHIVE_SECRET_KEY")
	setString(&c.Archive.Bucket, "ZJM_ARCHIVE_BUCKET")
	if v := os.Getenv("ZJM_ARCHIVE_USE_SSL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ZJM_ARCHIVE_USE_SSL: %w", err)
		}
		c.Archive.UseSSL = b
	}

	setString(&c.DownloadPath, "ZJM_DOWNLOAD_PATH")
	setString(&c.DataPath, "ZJM_DATA_PATH")
	setString(&c.Store, "ZJM_STORE")
	setString(&c.Output, "ZJM_OUTPUT")
	setString(&c.LogLevel, "ZJM_LOG_LEVEL")

	if v := os.Getenv("ZJM_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ZJM_BATCH_SIZE: %w", err)
		}
		c.Tracker.BatchSize = n
	}
	if v := os.Getenv("ZJM_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ZJM_POLL_INTERVAL: %w", err)
		}
		c.Tracker.PollInterval = d
	}
	if v := os.Getenv("ZJM_MAX_POLL_ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ZJM_MAX_POLL_ROUNDS: %w", err)
		}
		c.Tracker.MaxRounds = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ParseViews parses a comma-separated list of view IDs.
func ParseViews(s string) ([]int64, error) {
	var views []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid view id %q", part)
		}
		views = append(views, id)
	}
	return views, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Zendesk.Subdomain == "" && c.Zendesk.URL == "" {
		errs = append(errs, errors.New("ZENDESK_SUBDOMAIN or ZENDESK_URL is required"))
	}
	if c.Zendesk.User == "" {
		errs = append(errs, errors.New("ZENDESK_USER is required"))
	}
	if c.Zendesk.Password == "" && c.Zendesk.Token == "" {
		errs = append(errs, errors.New("ZENDESK_PASSWORD or ZENDESK_TOKEN is required"))
	}
	if c.Jira.URL == "" {
		errs = append(errs, errors.New("JIRA_URL is required"))
	}
	if c.Jira.User == "" {
		errs = append(errs, errors.New("JIRA_USER is required"))
	}
	if c.Jira.Password == "" {
		errs = append(errs, errors.New("JIRA_PASSWORD is required"))
	}
	if c.Jira.ProjectKey == "" {
		errs = append(errs, errors.New("JIRA_PROJECT_KEY is required"))
	}
	if c.Tracker.BatchSize <= 0 || c.Tracker.BatchSize > maxBatchSize {
		errs = append(errs, fmt.Errorf("batch size must be between 1 and %d, got %d", maxBatchSize, c.Tracker.BatchSize))
	}
	if c.Tracker.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("poll interval must be positive, got %s", c.Tracker.PollInterval))
	}
	return errors.Join(errs...)
}

// ZendeskURL returns the helpdesk base URL.
func (c *Config) ZendeskURL() string {
	if c.Zendesk.URL != "" {
		return strings.TrimRight(c.Zendesk.URL, "/")
	}
	return fmt.Sprintf("https://%s.zendesk.com", c.Zendesk.Subdomain)
}

// JiraURL returns the issue tracker base URL.
func (c *Config) JiraURL() string {
	return strings.TrimRight(c.Jira.URL, "/")
}

// ZendeskEndpoint returns the helpdesk endpoint. With an API token the
// username becomes "<email>/token".
func (c *Config) ZendeskEndpoint() Endpoint {
	ep := Endpoint{URL: c.ZendeskURL(), User: c.Zendesk.User, Password: c.Zendesk.Password}
	if c.Zendesk.Token != "" {
		ep.User = c.Zendesk.User + "/token"
		ep.Password = c.Zendesk.Token
	}
	return ep
}

// JiraEndpoint returns the issue tracker endpoint.
func (c *Config) JiraEndpoint() Endpoint {
	return Endpoint{
		URL:                c.JiraURL(),
		User:               c.Jira.User,
		Password:           c.Jira.Password,
		InsecureSkipVerify: c.Jira.InsecureSkipVerify,
	}
}
