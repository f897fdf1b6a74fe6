package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML configuration file layout. Credentials are read from the
// environment only.
type File struct {
	Zendesk struct {
		Subdomain string  `yaml:"subdomain"`
		URL       string  `yaml:"url"`
		User      string  `yaml:"user"`
		Views     []int64 `yaml:"views"`
	} `yaml:"zendesk"`
	Jira struct {
		URL                string `yaml:"url"`
		User               string `yaml:"user"`
		ProjectKey         string `yaml:"project_key"`
		IssueType          string `yaml:"issue_type"`
		InsecureSkipVerify *bool  `yaml:"insecure_skip_verify,omitempty"`
	} `yaml:"jira"`
	Tracker struct {
		BatchSize     int    `yaml:"batch_size"`
		PollInterval  string `yaml:"poll_interval"`
		MaxPollRounds int    `yaml:"max_poll_rounds"`
	} `yaml:"tracker"`
	Templates struct {
		MigratedNote    string `yaml:"migrated_note"`
		RequesterNotice string `yaml:"requester_notice"`
		Signature       string `yaml:"signature"`
	} `yaml:"templates"`
	Archive struct {
		Endpoint string `yaml:"endpoint"`
		Bucket   string `yaml:"bucket"`
		UseSSL   *bool  `yaml:"use_ssl,omitempty"`
	} `yaml:"archive"`
	DownloadPath string `yaml:"download_path"`
	DataPath     string `yaml:"data_path"`
	Store        string `yaml:"store"`
}

// LoadFile overlays the settings present in a YAML file.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c.apply(&f)
}

func (c *Config) apply(f *File) error {
	overlay(&c.Zendesk.Subdomain, f.Zendesk.Subdomain)
	overlay(&c.Zendesk.URL, f.Zendesk.URL)
	overlay(&c.Zendesk.User, f.Zendesk.User)
	if len(f.Zendesk.Views) > 0 {
		c.Zendesk.Views = f.Zendesk.Views
	}

	overlay(&c.Jira.URL, f.Jira.URL)
	overlay(&c.Jira.User, f.Jira.User)
	overlay(&c.Jira.ProjectKey, f.Jira.ProjectKey)
	overlay(&c.Jira.IssueType, f.Jira.IssueType)
	if f.Jira.InsecureSkipVerify != nil {
		c.Jira.InsecureSkipVerify = *f.Jira.InsecureSkipVerify
	}

	if f.Tracker.BatchSize != 0 {
		c.Tracker.BatchSize = f.Tracker.BatchSize
	}
	if f.Tracker.PollInterval != "" {
		d, err := time.ParseDuration(f.Tracker.PollInterval)
		if err != nil {
			return fmt.Errorf("tracker.poll_interval: %w", err)
		}
		c.Tracker.PollInterval = d
	}
	if f.Tracker.MaxPollRounds != 0 {
		c.Tracker.MaxRounds = f.Tracker.MaxPollRounds
	}

	overlay(&c.Templates.MigratedNote, f.Templates.MigratedNote)
	overlay(&c.Templates.RequesterNotice, f.Templates.RequesterNotice)
	overlay(&c.Templates.Signature, f.Templates.Signature)

	overlay(&c.Archive.Endpoint, f.Archive.Endpoint)
	overlay(&c.Archive.Bucket, f.Archive.Bucket)
	if f.Archive.UseSSL != nil {
		c.Archive.UseSSL = *f.Archive.UseSSL
	}

	overlay(&c.DownloadPath, f.DownloadPath)
	overlay(&c.DataPath, f.DataPath)
	overlay(&c.Store, f.Store)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
