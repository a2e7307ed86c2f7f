package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studyquest/internal/oracle"
	"studyquest/internal/quest"
	"studyquest/internal/ui"
)

func newAskCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the Oracle; proposed quests are added to your log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := strings.Join(args, " ")
			ctx := context.Background()
			return withSession(ctx, cmd.OutOrStdout(), func(s *session) error {
				client, err := oracle.NewClient(s.cfg.Oracle)
				if err != nil {
					return err
				}
				res, err := oracle.NewSession(client, oracle.WithSessionLogger(s.log)).Ask(ctx, msg)
				if err != nil {
					return fmt.Errorf("ask oracle: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, ui.Heading(ui.IconOracle, "The Oracle"))
				if res.CleanMessage != "" {
					fmt.Fprintln(out, res.CleanMessage)
				}
				if res.Quest == nil {
					return nil
				}

				fmt.Fprintln(out)
				if dryRun {
					fmt.Fprintln(out, ui.Muted.Render("Proposed quest (not added):"))
					printQuest(out, quest.FromProposal("draft", *res.Quest), false)
					return nil
				}
				q, _, err := s.eng.AddProposal(ctx, *res.Quest)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Quest added"), q.Title, ui.Muted.Render("["+q.ID+"]"))
				printQuest(out, q, false)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show a proposed quest without adding it")
	return cmd
}
