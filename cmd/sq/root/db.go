package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"studyquest/internal/storage"
	"studyquest/internal/ui"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the quest store",
	}
	cmd.AddCommand(newDBMigrateCmd(), newDBResetCmd())
	return cmd
}

func openStore(ctx context.Context) (storage.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = store.Close()
	}
	return store, cleanup, nil
}

func newDBMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the quest table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			switch st := store.(type) {
			case *storage.SQLiteStore:
				// Opening a sqlite store already migrates it.
			case *storage.PostgresStore:
				if err := st.Migrate(ctx); err != nil {
					return err
				}
			default:
				return errors.New("the rest store's schema is managed by the server")
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Schema up to date"))
			return nil
		},
	}
}

func newDBResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every local quest of --user (sqlite only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.User == "" {
				return errNoUser
			}
			store, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			local, ok := store.(*storage.SQLiteStore)
			if !ok {
				return errors.New("reset is only available for the sqlite store")
			}
			n, err := local.DeleteQuestsForUser(ctx, cfg.User)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d quests of %s\n", ui.Warn.Render(ui.IconWarn+" Deleted"), n, cfg.User)
			return nil
		},
	}
}
