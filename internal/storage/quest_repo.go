package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"studyquest/internal/quest"
)

// SQLiteStore keeps the quest table in a local SQLite file. The credential
// is accepted for interface parity and not checked.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) SelectQuestsForUser(ctx context.Context, _ Credential, user string) ([]quest.Quest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, icon, icon_color, deadline, deadline_bg, deadline_color,
			deadline_icon, progress_color, tasks
		FROM quests
		WHERE user_id = ?
		ORDER BY seq ASC
	`, user)
	if err != nil {
		return nil, remoteErr("select quests", fmt.Errorf("quest list: %w", err))
	}
	defer rows.Close()

	var out []quest.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, remoteErr("select quests", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("select quests", fmt.Errorf("quest list rows: %w", err))
	}
	return out, nil
}

func (s *SQLiteStore) InsertQuests(ctx context.Context, _ Credential, rows []QuestRow) error {
	if len(rows) == 0 {
		return nil
	}
	err := WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, r := range rows {
			tasksJSON, err := encodeTasks(r.Tasks)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quests (
					id, user_id, title, icon, icon_color, deadline, deadline_bg,
					deadline_color, deadline_icon, progress_color, tasks
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, r.ID, r.UserID, r.Title, r.Icon, r.IconColor, r.Deadline, r.DeadlineBg,
				r.DeadlineColor, r.DeadlineIcon, r.ProgressColor, tasksJSON); err != nil {
				return fmt.Errorf("quest insert %s: %w", r.ID, err)
			}
		}
		return nil
	})
	return remoteErr("insert quests", err)
}

// UpdateQuestTasks overwrites the task list of one quest. Updating a quest
// that does not exist is not an error, matching a filtered remote PATCH.
func (s *SQLiteStore) UpdateQuestTasks(ctx context.Context, _ Credential, questID, user string, tasks []quest.Task) error {
	tasksJSON, err := encodeTasks(tasks)
	if err != nil {
		return remoteErr("update quest tasks", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE quests
		SET tasks = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?
	`, tasksJSON, questID, user)
	if err != nil {
		return remoteErr("update quest tasks", fmt.Errorf("quest update tasks: %w", err))
	}
	return nil
}

// DeleteQuestsForUser removes every quest owned by user.
func (s *SQLiteStore) DeleteQuestsForUser(ctx context.Context, user string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quests WHERE user_id = ?`, user)
	if err != nil {
		return 0, fmt.Errorf("quest delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("quest delete rows affected: %w", err)
	}
	return n, nil
}

func encodeTasks(tasks []quest.Task) (string, error) {
	if tasks == nil {
		tasks = []quest.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("marshal tasks: %w", err)
	}
	return string(data), nil
}

func decodeTasks(raw []byte) ([]quest.Task, error) {
	tasks := []quest.Task{}
	if len(raw) == 0 {
		return tasks, nil
	}
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuest(row scanner) (quest.Quest, error) {
	var (
		q        quest.Quest
		tasksRaw string
	)
	if err := row.Scan(
		&q.ID, &q.Title, &q.Icon, &q.IconColor, &q.Deadline, &q.DeadlineBg,
		&q.DeadlineColor, &q.DeadlineIcon, &q.ProgressColor, &tasksRaw,
	); err != nil {
		return quest.Quest{}, fmt.Errorf("quest scan: %w", err)
	}
	tasks, err := decodeTasks([]byte(tasksRaw))
	if err != nil {
		return quest.Quest{}, fmt.Errorf("quest %s: %w", q.ID, err)
	}
	q.Tasks = tasks
	return q, nil
}
