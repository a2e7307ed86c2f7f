package root

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"studyquest/internal/quest"
	"studyquest/internal/ui"
)

func newListCmd() *cobra.Command {
	var openOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quests and their tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withSession(ctx, cmd.OutOrStdout(), func(s *session) error {
				qs := s.eng.Quests()
				if len(qs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no quests)"))
					return nil
				}
				for _, q := range qs {
					printQuest(cmd.OutOrStdout(), q, openOnly)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&openOnly, "open", false, "Hide completed tasks")
	return cmd
}

func printQuest(w io.Writer, q quest.Quest, openOnly bool) {
	p := quest.Progress(q)
	fmt.Fprintf(w, "%s %s %s %s %s\n",
		ui.QuestIcon(q.Icon),
		ui.H2.Render(q.Title),
		ui.Muted.Render("["+q.ID+"]"),
		ui.ProgressBar(p, 100, 10),
		ui.DeadlineText(q.Deadline, q.DeadlineIcon),
	)
	for i, t := range q.Tasks {
		if openOnly && t.Completed {
			continue
		}
		fmt.Fprintf(w, "   %2d %s %s %s\n", i+1, ui.TaskMark(t.Completed), t.Title, ui.Muted.Render(fmt.Sprintf("(%d XP)", t.XP)))
	}
	fmt.Fprintln(w)
}
