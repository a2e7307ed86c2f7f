package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"studyquest/internal/quest"
	"studyquest/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, XP and quest progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withSession(ctx, cmd.OutOrStdout(), func(s *session) error {
				snap := s.eng.Snapshot()
				out := cmd.OutOrStdout()

				lvl := quest.LevelForTotalXP(snap.TotalXP)
				nextReq := quest.XPRequiredForLevel(lvl + 1)
				into, span := quest.LevelProgress(snap.TotalXP)

				fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Scholar Status"))
				fmt.Fprintln(out, ui.LabelValue("User", snap.User))
				fmt.Fprintln(out, ui.LabelValue("Level", lvl))
				fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (next at %d, %d to go)", snap.TotalXP, nextReq, nextReq-snap.TotalXP)))
				fmt.Fprintln(out, ui.ProgressBar(into, span, 30))
				fmt.Fprintln(out, ui.LabelValue("XP on the table", quest.AvailableXP(snap.Quests)-snap.TotalXP))
				fmt.Fprintln(out, "")

				fmt.Fprintln(out, ui.H2.Render(ui.IconScroll+" Quests"))
				for _, q := range snap.Quests {
					p := quest.Progress(q)
					mark := ""
					if p == 100 {
						mark = " " + ui.Gold.Render(ui.IconTrophy)
					}
					fmt.Fprintf(out, "- %s %s %3d%% %s%s\n",
						ui.QuestIcon(q.Icon), q.Title, p,
						ui.Muted.Render(fmt.Sprintf("(%d/%d tasks)", quest.CompletedCount(q), len(q.Tasks))),
						mark,
					)
				}
				return nil
			})
		},
	}

	return cmd
}
