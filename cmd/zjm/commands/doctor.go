package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/doctor"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
)

var severityIcons = map[doctor.Severity]string{
	doctor.SevPass:     "✓",
	doctor.SevWarning:  "⚠",
	doctor.SevCritical: "✗",
	doctor.SevSkip:     "-",
}

// Doctor checks credentials, views, project, record store and download
// folder before a migration.
func Doctor(ctx context.Context, cfg *config.Config, args []string) error {
	report := doctor.NewAuditor(cfg).Run(ctx)

	if output.Format == "json" {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		rows := make([][]string, 0, len(report.Checks))
		for _, c := range report.Checks {
			rows = append(rows, []string{severityIcons[c.Severity], c.ID, c.Name, c.Message})
		}
		output.Table([]string{"", "CHECK", "NAME", "RESULT"}, rows)
		for _, c := range report.Checks {
			if c.Fix != "" && c.Severity != doctor.SevPass {
				fmt.Fprintf(output.Stdout, "  %s: %s\n", c.ID, c.Fix)
			}
		}
		fmt.Fprintf(output.Stdout, "\nScore: %d/%d (%s)\n", report.Score, report.MaxScore, report.Grade)
	}

	if !report.Ready() {
		var failed []string
		for _, c := range report.Checks {
			if c.Severity == doctor.SevCritical {
				failed = append(failed, c.ID)
			}
		}
		return fmt.Errorf("not ready to migrate: %s", strings.Join(failed, ", "))
	}
	return nil
}
