package root

import (
	"context"

	"github.com/spf13/cobra"

	"studyquest/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI quest board",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			feed := tui.NewResultFeed(64)
			s, err := openSession(ctx, feed)
			if err != nil {
				return err
			}
			if s.user == "" {
				_ = s.close(ctx)
				return errNoUser
			}

			runErr := tui.RunBoard(ctx, s.eng, s.user, feed, cmd.OutOrStdout())
			if err := s.close(ctx); runErr == nil {
				runErr = err
			}
			return runErr
		},
	}

	return cmd
}
