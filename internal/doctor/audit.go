// Package doctor checks that a migration can run before it is started.
//
// It reaches both APIs with the configured credentials, confirms the views
// and the target project exist, opens the record store, probes the download
// folder and the attachment archive, then scores the results.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/archive"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/client"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/store"
)

// Severity classifies check results.
type Severity string

const (
	SevPass     Severity = "pass"
	SevWarning  Severity = "warning"
	SevCritical Severity = "critical"
	SevSkip     Severity = "skip"
)

// Check is the result of a single readiness check.
type Check struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
}

// Report is the complete audit output.
type Report struct {
	Timestamp  time.Time                `json:"timestamp"`
	Checks     []Check                  `json:"checks"`
	Score      int                      `json:"score"`
	MaxScore   int                      `json:"max_score"`
	Grade      string                   `json:"grade"`
	Categories map[string]CategoryScore `json:"categories"`
}

// CategoryScore summarizes a check category.
type CategoryScore struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Critical int `json:"critical"`
	Total    int `json:"total"`
}

// Ready reports whether no check failed critically.
func (r *Report) Ready() bool {
	for _, c := range r.Categories {
		if c.Critical > 0 {
			return false
		}
	}
	return true
}

// Auditor runs readiness checks against a configuration.
type Auditor struct {
	cfg     *config.Config
	zendesk *client.Client
	jira    *client.Client
	now     func() time.Time
}

// NewAuditor creates an auditor for cfg.
func NewAuditor(cfg *config.Config) *Auditor {
	return &Auditor{
		cfg:     cfg,
		zendesk: client.New(cfg.ZendeskEndpoint()),
		jira:    client.New(cfg.JiraEndpoint()),
		now:     time.Now,
	}
}

// Run executes all checks and returns a report.
func (a *Auditor) Run(ctx context.Context) *Report {
	report := &Report{
		Timestamp:  a.now(),
		Categories: make(map[string]CategoryScore),
	}

	checks := []func(context.Context) Check{
		a.checkConfig,
		a.checkZendeskAuth,
		a.checkZendeskTLS,
		a.checkViews,
		a.checkJiraAuth,
		a.checkJiraTLS,
		a.checkProject,
		a.checkStore,
		a.checkDownloadPath,
		a.checkArchive,
	}

	for _, fn := range checks {
		check := fn(ctx)
		report.Checks = append(report.Checks, check)

		cat := report.Categories[check.Category]
		cat.Total++
		switch check.Severity {
		case SevPass:
			cat.Passed++
		case SevWarning:
			cat.Warnings++
		case SevCritical:
			cat.Critical++
		}
		report.Categories[check.Category] = cat
	}

	report.MaxScore = len(report.Checks) * 5
	for _, c := range report.Checks {
		switch c.Severity {
		case SevPass:
			report.Score += 5
		case SevWarning:
			report.Score += 3
		case SevSkip:
			report.Score += 4
		}
	}

	pct := report.Score * 100 / report.MaxScore
	switch {
	case pct >= 90:
		report.Grade = "A"
	case pct >= 80:
		report.Grade = "B"
	case pct >= 70:
		report.Grade = "C"
	case pct >= 60:
		report.Grade = "D"
	default:
		report.Grade = "F"
	}

	return report
}

func (a *Auditor) checkConfig(ctx context.Context) Check {
	c := Check{ID: "CFG-001", Category: "config", Name: "Configuration"}
	if err := a.cfg.Validate(); err != nil {
		c.Severity = SevCritical
		c.Message = strings.ReplaceAll(err.Error(), "\n", "; ")
		c.Fix = "Set the missing variables in the environment, .env or the --config file"
		return c
	}
	if len(a.cfg.Zendesk.Views) == 0 {
		c.Severity = SevWarning
		c.Message = "No views configured"
		c.Fix = "Set ZENDESK_VIEWS or pass --views to migrate"
		return c
	}
	c.Severity = SevPass
	c.Message = "All required settings present"
	return c
}

// apiCheck maps the outcome of an authenticated GET to a check.
func apiCheck(c Check, err error, ok string) Check {
	switch {
	case err == nil:
		c.Severity = SevPass
		c.Message = ok
	case isStatus(err, 401, 403):
		c.Severity = SevCritical
		c.Message = fmt.Sprintf("Credentials rejected: %v", err)
		c.Fix = "Check the user and password or API token"
	default:
		c.Severity = SevCritical
		c.Message = err.Error()
	}
	return c
}

func isStatus(err error, codes ...int) bool {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

func (a *Auditor) checkZendeskAuth(ctx context.Context) Check {
	c := Check{ID: "ZD-001", Category: "zendesk", Name: "Zendesk Authentication"}
	var resp struct {
		User struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	err := a.zendesk.GetJSON(ctx, "/api/v2/users/me.json", &resp)
	if err == nil && resp.User.ID == 0 {
		c.Severity = SevCritical
		c.Message = "Authenticated as anonymous user"
		c.Fix = "Check ZENDESK_USER and ZENDESK_PASSWORD or ZENDESK_TOKEN"
		return c
	}
	return apiCheck(c, err, fmt.Sprintf("Authenticated as %s", resp.User.Email))
}

func tlsCheck(c Check, rawURL string, skipVerify bool) Check {
	u, err := url.Parse(rawURL)
	switch {
	case err != nil || u.Host == "":
		c.Severity = SevSkip
		c.Message = "No URL configured"
	case u.Scheme != "https":
		c.Severity = SevWarning
		c.Message = "Credentials are sent without TLS"
		c.Fix = "Use an https:// URL"
	case skipVerify:
		c.Severity = SevWarning
		c.Message = "TLS certificate verification is disabled"
		c.Fix = "Unset JIRA_INSECURE_SKIP_VERIFY once the certificate is trusted"
	default:
		c.Severity = SevPass
		c.Message = "HTTPS with certificate verification"
	}
	return c
}

func (a *Auditor) checkZendeskTLS(ctx context.Context) Check {
	c := Check{ID: "ZD-002", Category: "zendesk", Name: "Zendesk TLS"}
	if a.cfg.Zendesk.Subdomain == "" && a.cfg.Zendesk.URL == "" {
		return tlsCheck(c, "", false)
	}
	return tlsCheck(c, a.cfg.ZendeskURL(), false)
}

func (a *Auditor) checkViews(ctx context.Context) Check {
	c := Check{ID: "ZD-003", Category: "zendesk", Name: "Zendesk Views"}
	if len(a.cfg.Zendesk.Views) == 0 {
		c.Severity = SevSkip
		c.Message = "No views configured"
		return c
	}
	var missing []string
	for _, id := range a.cfg.Zendesk.Views {
		var resp struct {
			View struct {
				Active bool `json:"active"`
			} `json:"view"`
		}
		err := a.zendesk.GetJSON(ctx, fmt.Sprintf("/api/v2/views/%d.json", id), &resp)
		if client.IsNotFound(err) {
			missing = append(missing, fmt.Sprint(id))
			continue
		}
		if err != nil {
			return apiCheck(c, err, "")
		}
	}
	if len(missing) > 0 {
		c.Severity = SevCritical
		c.Message = "Views not found: " + strings.Join(missing, ", ")
		c.Fix = "Check the view IDs in ZENDESK_VIEWS"
		return c
	}
	c.Severity = SevPass
	c.Message = fmt.Sprintf("%d views readable", len(a.cfg.Zendesk.Views))
	return c
}

func (a *Auditor) checkJiraAuth(ctx context.Context) Check {
	c := Check{ID: "JIRA-001", Category: "jira", Name: "JIRA Authentication"}
	var resp struct {
		Name string `json:"name"`
	}
	err := a.jira.GetJSON(ctx, "/rest/api/2/myself", &resp)
	return apiCheck(c, err, fmt.Sprintf("Authenticated as %s", resp.Name))
}

func (a *Auditor) checkJiraTLS(ctx context.Context) Check {
	c := Check{ID: "JIRA-002", Category: "jira", Name: "JIRA TLS"}
	return tlsCheck(c, a.cfg.JiraURL(), a.cfg.Jira.InsecureSkipVerify)
}

func (a *Auditor) checkProject(ctx context.Context) Check {
	c := Check{ID: "JIRA-003", Category: "jira", Name: "JIRA Project"}
	key := a.cfg.Jira.ProjectKey
	if key == "" {
		c.Severity = SevSkip
		c.Message = "No project key configured"
		return c
	}
	var resp struct {
		Name string `json:"name"`
	}
	err := a.jira.GetJSON(ctx, "/rest/api/2/project/"+url.PathEscape(key), &resp)
	if client.IsNotFound(err) {
		c.Severity = SevCritical
		c.Message = fmt.Sprintf("Project %s not found", key)
		c.Fix = "Check JIRA_PROJECT_KEY"
		return c
	}
	return apiCheck(c, err, fmt.Sprintf("Project %s (%s)", key, resp.Name))
}

func (a *Auditor) checkStore(ctx context.Context) Check {
	c := Check{ID: "STORE-001", Category: "storage", Name: "Record Store"}
	if a.cfg.Jira.ProjectKey == "" {
		c.Severity = SevSkip
		c.Message = "No project key configured"
		return c
	}
	st, err := store.Open(ctx, a.cfg.Store, a.cfg.DataPath, a.cfg.Jira.ProjectKey)
	if err != nil {
		c.Severity = SevCritical
		c.Message = err.Error()
		c.Fix = "Check ZJM_STORE"
		return c
	}
	defer st.Close()

	records, err := st.ReadAll(ctx)
	if err != nil {
		c.Severity = SevCritical
		c.Message = err.Error()
		return c
	}
	c.Severity = SevPass
	c.Message = fmt.Sprintf("%d migrated tickets recorded", len(records))
	return c
}

func (a *Auditor) checkDownloadPath(ctx context.Context) Check {
	c := Check{ID: "FS-001", Category: "storage", Name: "Download Folder"}
	if err := os.MkdirAll(a.cfg.DownloadPath, 0o755); err != nil {
		c.Severity = SevCritical
		c.Message = err.Error()
		c.Fix = "Point ZJM_DOWNLOAD_PATH to a writable folder"
		return c
	}
	f, err := os.CreateTemp(a.cfg.DownloadPath, ".probe-*")
	if err != nil {
		c.Severity = SevCritical
		c.Message = err.Error()
		c.Fix = "Point ZJM_DOWNLOAD_PATH to a writable folder"
		return c
	}
	f.Close()
	os.Remove(f.Name())

	c.Severity = SevPass
	c.Message = fmt.Sprintf("%s is writable", a.cfg.DownloadPath)
	return c
}

func (a *Auditor) checkArchive(ctx context.Context) Check {
	c := Check{ID: "FS-002", Category: "storage", Name: "Attachment Archive"}
	if a.cfg.Archive.Endpoint == "" {
		c.Severity = SevSkip
		c.Message = "No archive configured"
		return c
	}
	arch, err := archive.New(archive.Config(a.cfg.Archive))
	if err == nil {
		err = arch.Ready(ctx)
	}
	if err != nil {
		c.Severity = SevWarning
		c.Message = err.Error()
		c.Fix = "Check ZJM_ARCHIVE_ENDPOINT and the archive credentials; attachments are still migrated without it"
		return c
	}
	c.Severity = SevPass
	c.Message = fmt.Sprintf("Bucket %s ready", arch.Bucket())
	return c
}
