package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"studyquest/internal/quest"
	"studyquest/internal/ui"
)

func newAddCmd() *cobra.Command {
	var deadline string
	var icon string
	var tasks []string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a quest",
		Example: `  sq add "Operating Systems" --deadline "Exam: 4 Days" --task "Deadlocks:200" --task "File Systems"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New("title is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := quest.Proposal{Title: args[0], Icon: icon, Deadline: deadline}
			for _, raw := range tasks {
				t, err := parseTaskFlag(raw)
				if err != nil {
					return err
				}
				p.Tasks = append(p.Tasks, t)
			}

			ctx := context.Background()
			return withSession(ctx, cmd.OutOrStdout(), func(s *session) error {
				q, _, err := s.eng.AddProposal(ctx, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), q.Title, ui.Muted.Render("["+q.ID+"]"))
				printQuest(cmd.OutOrStdout(), q, false)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "Deadline label (default \"No Deadline\")")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon name (default \"school\")")
	cmd.Flags().StringArrayVarP(&tasks, "task", "t", nil, "Task as title or title:xp (repeatable)")

	return cmd
}

// parseTaskFlag splits "title:xp" at the last colon. Without a numeric
// suffix the whole value is the title and xp falls back to the default.
func parseTaskFlag(raw string) (quest.ProposedTask, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		if xp, err := strconv.Atoi(strings.TrimSpace(raw[i+1:])); err == nil {
			if xp <= 0 {
				return quest.ProposedTask{}, fmt.Errorf("task %q: xp must be positive", raw)
			}
			return quest.ProposedTask{Title: strings.TrimSpace(raw[:i]), XP: &xp}, nil
		}
	}
	if raw == "" {
		return quest.ProposedTask{}, errors.New("task title is required")
	}
	return quest.ProposedTask{Title: raw}, nil
}
