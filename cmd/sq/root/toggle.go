package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"studyquest/internal/quest"
	"studyquest/internal/ui"
)

func newToggleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <quest-id> <task-number>",
		Short: "Mark a task done, or undo it",
		Long:  "Toggle one task of a quest. Task numbers start at 1, as shown by `sq list`.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("quest id and task number are required")
			}
			if n, err := strconv.Atoi(args[1]); err != nil || n < 1 {
				return errors.New("task number must be a positive integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			questID := args[0]
			n, _ := strconv.Atoi(args[1])
			idx := n - 1

			ctx := context.Background()
			return withSession(ctx, cmd.OutOrStdout(), func(s *session) error {
				before := s.eng.Quests()
				qi := quest.Find(before, questID)
				if qi < 0 {
					return fmt.Errorf("no quest %q", questID)
				}
				if idx >= len(before[qi].Tasks) {
					return fmt.Errorf("quest %q has %d tasks", questID, len(before[qi].Tasks))
				}
				levelBefore := quest.LevelForTotalXP(quest.TotalXP(before))

				after := s.eng.ToggleTask(ctx, questID, idx)
				t := after[qi].Tasks[idx]
				total := quest.TotalXP(after)
				levelAfter := quest.LevelForTotalXP(total)

				out := cmd.OutOrStdout()
				if t.Completed {
					fmt.Fprintf(out, "%s %s %s\n", ui.Good.Render(ui.IconDone+" Done"), t.Title, ui.Muted.Render(fmt.Sprintf("(+%d XP)", t.XP)))
				} else {
					fmt.Fprintf(out, "%s %s %s\n", ui.Warn.Render("↩ Reopened"), t.Title, ui.Muted.Render(fmt.Sprintf("(-%d XP)", t.XP)))
				}
				fmt.Fprintln(out, ui.LabelValue("Quest", fmt.Sprintf("%s %d%%", after[qi].Title, quest.Progress(after[qi]))))
				fmt.Fprintln(out, ui.LabelValue("Total XP", total))
				if levelAfter > levelBefore {
					fmt.Fprintln(out, ui.Gold.Render(ui.IconTrophy+" LEVEL UP")+" "+ui.LabelValue("Level", levelAfter))
				}
				return nil
			})
		},
	}

	return cmd
}
