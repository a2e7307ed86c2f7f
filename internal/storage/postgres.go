package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyquest/internal/quest"
)

// PostgresStore talks to the remote quest table directly over the Postgres
// wire protocol. Columns use the quest's JSON names, quoted, plus the owner
// column. Each call runs in its own transaction with the credential published
// as request.jwt so row-level security policies can read it.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
	owner string
}

type PostgresConfig struct {
	URL         string
	Table       string
	OwnerColumn string
}

func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres url missing")
	}
	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(pool, cfg.Table, cfg.OwnerColumn), nil
}

// NewPostgresStore wraps pool. Blank names fall back to DefaultTable and
// DefaultOwnerColumn.
func NewPostgresStore(pool *pgxpool.Pool, table, owner string) *PostgresStore {
	if table == "" {
		table = DefaultTable
	}
	if owner == "" {
		owner = DefaultOwnerColumn
	}
	return &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
		owner: pgx.Identifier{owner}.Sanitize(),
	}
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the quest table when it does not exist yet.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			"id" TEXT NOT NULL,
			%s TEXT NOT NULL,
			"title" TEXT NOT NULL,
			"icon" TEXT NOT NULL DEFAULT '',
			"iconColor" TEXT NOT NULL DEFAULT '',
			"deadline" TEXT NOT NULL DEFAULT '',
			"deadlineBg" TEXT NOT NULL DEFAULT '',
			"deadlineColor" TEXT NOT NULL DEFAULT '',
			"deadlineIcon" TEXT NOT NULL DEFAULT '',
			"progressColor" TEXT NOT NULL DEFAULT '',
			"tasks" JSONB NOT NULL DEFAULT '[]'::jsonb,
			PRIMARY KEY (%s, "id")
		)`, s.table, s.owner, s.owner),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) withCredential(ctx context.Context, cred Credential, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if cred != "" {
			if _, err := tx.Exec(ctx, `SELECT set_config('request.jwt', $1, true)`, string(cred)); err != nil {
				return fmt.Errorf("set credential: %w", err)
			}
		}
		return fn(tx)
	})
}

func (s *PostgresStore) SelectQuestsForUser(ctx context.Context, cred Credential, user string) ([]quest.Quest, error) {
	var out []quest.Quest
	err := s.withCredential(ctx, cred, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, fmt.Sprintf(`
			SELECT "id", "title", "icon", "iconColor", "deadline", "deadlineBg",
				"deadlineColor", "deadlineIcon", "progressColor", "tasks"::text
			FROM %s
			WHERE %s = $1
		`, s.table, s.owner), user)
		if err != nil {
			return fmt.Errorf("quest list: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			q, err := scanQuest(rows)
			if err != nil {
				return err
			}
			out = append(out, q)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("quest list rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, remoteErr("select quests", err)
	}
	return out, nil
}

func (s *PostgresStore) InsertQuests(ctx context.Context, cred Credential, rows []QuestRow) error {
	if len(rows) == 0 {
		return nil
	}
	stmt := fmt.Sprintf(`
		INSERT INTO %s (
			"id", %s, "title", "icon", "iconColor", "deadline", "deadlineBg",
			"deadlineColor", "deadlineIcon", "progressColor", "tasks"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb)
	`, s.table, s.owner)
	err := s.withCredential(ctx, cred, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range rows {
			tasksJSON, err := encodeTasks(r.Tasks)
			if err != nil {
				return err
			}
			batch.Queue(stmt, r.ID, r.UserID, r.Title, r.Icon, r.IconColor, r.Deadline, r.DeadlineBg,
				r.DeadlineColor, r.DeadlineIcon, r.ProgressColor, tasksJSON)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("quest insert: %w", err)
		}
		return nil
	})
	return remoteErr("insert quests", err)
}

func (s *PostgresStore) UpdateQuestTasks(ctx context.Context, cred Credential, questID, user string, tasks []quest.Task) error {
	tasksJSON, err := encodeTasks(tasks)
	if err != nil {
		return remoteErr("update quest tasks", err)
	}
	err = s.withCredential(ctx, cred, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`
			UPDATE %s
			SET "tasks" = $1::jsonb
			WHERE "id" = $2 AND %s = $3
		`, s.table, s.owner), tasksJSON, questID, user); err != nil {
			return fmt.Errorf("quest update tasks: %w", err)
		}
		return nil
	})
	return remoteErr("update quest tasks", err)
}
