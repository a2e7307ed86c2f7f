package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = WithTx(ctx, s.db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO quests (id, user_id, title, tasks) VALUES ('p1', 'alice', 'Half', '[]')
			`); err != nil {
				t.Fatalf("insert: %v", err)
			}
			panic("boom")
		})
	}()

	// The pool holds one connection; a leaked transaction would block here.
	qctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	qs, err := s.SelectQuestsForUser(qctx, "", "alice")
	if err != nil {
		t.Fatalf("select after panic: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("got %d quests, want 0 after rollback", len(qs))
	}
}
