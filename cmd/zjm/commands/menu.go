package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/config"
	"github.com/adrianbeloqui/zendesk-jira-migrator/internal/output"
)

const menuText = `Enter an action to perform:
    1 - Migrate Zendesk tickets to JIRA
    2 - Notify migrated tickets' requesters
    9 - Quit
`

// Menu prompts for actions until the user quits or the input ends. A
// failed action is reported and the menu shown again.
func Menu(ctx context.Context, cfg *config.Config, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(output.Stdout, menuText)
		fmt.Fprint(output.Stdout, "Enter Action: ")
		if !scanner.Scan() {
			fmt.Fprintln(output.Stdout)
			return scanner.Err()
		}

		var err error
		switch action := strings.TrimSpace(scanner.Text()); action {
		case "1":
			err = Migrate(ctx, cfg, nil)
		case "2":
			err = Notify(ctx, cfg, nil)
		case "9":
			return nil
		case "":
			continue
		default:
			output.Warn("unknown action %q", action)
			continue
		}
		if err != nil {
			output.Warn("%v", err)
		}
	}
}
