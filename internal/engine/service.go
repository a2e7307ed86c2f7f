// Package engine owns the quest collection of one signed-in user and keeps it
// in step with the remote quest table.
//
// Every mutation is committed to memory before the method returns; the
// matching remote write runs afterwards on its own goroutine and its outcome
// goes to the Reporter. Remote failures never roll back local state.
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"studyquest/internal/auth"
	"studyquest/internal/logging"
	"studyquest/internal/quest"
	"studyquest/internal/storage"
)

// Engine is scoped to one session: build it at sign-in, Reset or drop it at
// sign-out.
type Engine struct {
	store    storage.QuestStore
	tokens   auth.TokenSource
	template string
	log      *zap.Logger
	reporter Reporter
	newID    func() string

	mu      sync.Mutex
	user    string
	session uint64
	quests  []quest.Quest
	loading bool
	// known is set once a Load for user has fetched or seeded the collection.
	known bool

	inflight sync.WaitGroup
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = logging.OrNop(l).Named("engine") }
}

// WithReporter adds an observer for background write outcomes. Outcomes are
// logged regardless.
func WithReporter(r Reporter) Option {
	return func(e *Engine) { e.reporter = r }
}

func WithTokenTemplate(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.template = name
		}
	}
}

func WithIDFunc(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

func New(store storage.QuestStore, tokens auth.TokenSource, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		tokens:   tokens,
		template: auth.DefaultTemplate,
		log:      zap.NewNop(),
		newID:    quest.NewID,
		loading:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	User    string
	Quests  []quest.Quest
	Loading bool
	TotalXP int
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		User:    e.user,
		Quests:  quest.CloneAll(e.quests),
		Loading: e.loading,
		TotalXP: quest.TotalXP(e.quests),
	}
}

func (e *Engine) Quests() []quest.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return quest.CloneAll(e.quests)
}

// Loading reports whether the collection is still unknown: true from a Load
// call until its fetch resolves, and before the first Load.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

func (e *Engine) User() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user
}

func (e *Engine) TotalXP() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return quest.TotalXP(e.quests)
}

// Progress returns the progress of one quest and whether it exists.
func (e *Engine) Progress(questID string) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := quest.Find(e.quests, questID)
	if i < 0 {
		return 0, false
	}
	return quest.Progress(e.quests[i]), true
}

// Reset ends the session: the collection is emptied and any Load still in
// flight is discarded when it returns. Background writes already started keep
// running for the user they were issued for.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) resetLocked() {
	e.user = ""
	e.quests = nil
	e.loading = true
	e.known = false
	e.session++
}

// Wait blocks until every background write started so far has resolved.
func (e *Engine) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for background writes and ends the session.
func (e *Engine) Close(ctx context.Context) error {
	err := e.Wait(ctx)
	e.Reset()
	return err
}
