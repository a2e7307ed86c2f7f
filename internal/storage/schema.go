package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quests (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			icon_color TEXT NOT NULL DEFAULT '',
			deadline TEXT NOT NULL DEFAULT '',
			deadline_bg TEXT NOT NULL DEFAULT '',
			deadline_color TEXT NOT NULL DEFAULT '',
			deadline_icon TEXT NOT NULL DEFAULT '',
			progress_color TEXT NOT NULL DEFAULT '',
			tasks TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Seeded ids repeat across users, so uniqueness is per owner.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_quests_user_id_id ON quests(user_id, id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
