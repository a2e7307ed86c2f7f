package engine

import (
	"context"

	"go.uber.org/zap"

	"studyquest/internal/quest"
	"studyquest/internal/storage"
)

// Load fetches user's quests and makes them the collection. Switching to a
// different user empties the collection first. An empty remote result seeds
// the default quests locally and writes them back in the background.
//
// Once the collection for user is known, loading the same user again is a
// no-op, so optimistic changes with writes still in flight are kept.
//
// Loading stays true when no credential is available, since the fetch never
// happens. A Load superseded by Reset or another Load while it was waiting on
// the store drops its result.
func (e *Engine) Load(ctx context.Context, user string) {
	if user == "" {
		return
	}

	e.mu.Lock()
	if e.user == user && e.known {
		e.mu.Unlock()
		e.log.Debug("quests already loaded", zap.String("user", user))
		return
	}
	if e.user != user {
		e.resetLocked()
		e.user = user
	}
	e.session++
	gen := e.session
	e.loading = true
	e.mu.Unlock()

	cred, err := e.credential(ctx)
	if err != nil {
		e.report(Result{Op: OpLoad, User: user, Status: Skipped, Err: err})
		return
	}

	rows, err := e.store.SelectQuestsForUser(ctx, cred, user)

	e.mu.Lock()
	if e.session != gen {
		e.mu.Unlock()
		e.log.Debug("discarding superseded load", zap.String("user", user))
		return
	}
	e.loading = false
	if err != nil {
		e.mu.Unlock()
		e.report(Result{Op: OpLoad, User: user, Status: PersistFailed, Err: err})
		return
	}
	e.known = true
	if len(rows) > 0 {
		e.quests = quest.CloneAll(rows)
		e.mu.Unlock()
		e.report(Result{Op: OpLoad, User: user, Status: Persisted})
		return
	}

	// First login. Another client may be seeding the same user concurrently;
	// nothing here prevents a duplicate seed.
	seed := quest.DefaultSeed()
	e.quests = seed
	seedRows := storage.RowsForUser(user, seed)
	e.mu.Unlock()

	e.report(Result{Op: OpLoad, User: user, Status: Persisted})
	e.log.Info("seeding default quests", zap.String("user", user), zap.Int("count", len(seedRows)))
	e.persist(ctx, OpSeed, user, "", func(ctx context.Context, cred storage.Credential) error {
		return e.store.InsertQuests(ctx, cred, seedRows)
	})
}
