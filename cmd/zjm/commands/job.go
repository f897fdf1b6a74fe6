package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/client"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/zendesk"
)

// Job shows the state of a Zendesk bulk update job.
func Job(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("job ID required\n\nUsage: zjm job <job-id>")
	}
	if cfg.Zendesk.Subdomain == "" && cfg.Zendesk.URL == "" {
		return fmt.Errorf("ZENDESK_SUBDOMAIN or ZENDESK_URL is required")
	}

	zd := zendesk.New(client.New(cfg.ZendeskEndpoint()))
	job, err := zd.FetchJobStatus(ctx, args[0])
	if err != nil {
		return err
	}

	if output.Format == "json" {
		return output.JSON(job)
	}

	rows := [][]string{
		{"ID", job.ID},
		{"Status", string(job.Status)},
		{"Progress", fmt.Sprintf("%d/%d", job.Progress, job.Total)},
	}
	if job.URL != "" {
		rows = append(rows, []string{"URL", job.URL})
	}
	if job.Message != "" {
		rows = append(rows, []string{"Message", job.Message})
	}
	output.Fields(rows)

	if len(job.Results) == 0 {
		return nil
	}
	results := make([][]string, 0, len(job.Results))
	for _, r := range job.Results {
		errText := r.Error
		if errText == "" {
			errText = "-"
		}
		results = append(results, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatBool(r.Success),
			r.Status,
			errText,
		})
	}
	fmt.Fprintln(output.Stdout)
	output.Table([]string{"TICKET", "SUCCESS", "STATUS", "ERROR"}, results)
	return nil
}
