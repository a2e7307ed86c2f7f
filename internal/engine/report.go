package engine

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"studyquest/internal/storage"
)

type Op string

const (
	OpLoad       Op = "load"
	OpSeed       Op = "seed"
	OpAddQuest   Op = "add_quest"
	OpToggleTask Op = "toggle_task"
)

type Status int

const (
	// Persisted: the remote call succeeded. For OpLoad the fetch resolved.
	Persisted Status = iota + 1
	// PersistFailed: the remote call returned an error; local state is kept.
	PersistFailed
	// Skipped: no session or no credential, so no remote call was made.
	Skipped
)

func (s Status) String() string {
	switch s {
	case Persisted:
		return "persisted"
	case PersistFailed:
		return "persist_failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of one remote call issued by the engine.
type Result struct {
	Op      Op
	User    string
	QuestID string
	Status  Status
	Err     error
}

type Reporter interface {
	Report(Result)
}

type ReporterFunc func(Result)

func (f ReporterFunc) Report(r Result) { f(r) }

func (e *Engine) report(r Result) {
	fields := []zap.Field{
		zap.String("op", string(r.Op)),
		zap.String("user", r.User),
		zap.String("status", r.Status.String()),
	}
	if r.QuestID != "" {
		fields = append(fields, zap.String("quest_id", r.QuestID))
	}
	switch r.Status {
	case Persisted:
		e.log.Debug("remote sync done", fields...)
	case Skipped:
		e.log.Warn("remote sync skipped", append(fields, zap.Error(r.Err))...)
	default:
		var re *storage.RemoteError
		if errors.As(r.Err, &re) {
			fields = append(fields, zap.String("remote_op", re.Op))
		}
		e.log.Error("remote sync failed", append(fields, zap.Error(r.Err))...)
	}
	if e.reporter != nil {
		e.reporter.Report(r)
	}
}

// credential asks the token source for a credential. A source error is
// treated like an absent token.
func (e *Engine) credential(ctx context.Context) (storage.Credential, error) {
	tok, ok, err := e.tokens.Token(ctx, e.template)
	if err != nil {
		return "", errors.Join(ErrNoCredential, err)
	}
	if !ok {
		return "", ErrNoCredential
	}
	return storage.Credential(tok), nil
}

// persist runs write on its own goroutine with a context that outlives the
// caller's cancellation. It never touches engine state.
func (e *Engine) persist(ctx context.Context, op Op, user, questID string, write func(context.Context, storage.Credential) error) {
	res := Result{Op: op, User: user, QuestID: questID}
	if user == "" {
		res.Status = Skipped
		res.Err = ErrNoSession
		e.report(res)
		return
	}

	bg := context.WithoutCancel(ctx)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()

		cred, err := e.credential(bg)
		if err != nil {
			res.Status = Skipped
			res.Err = err
			e.report(res)
			return
		}
		if err := write(bg, cred); err != nil {
			res.Status = PersistFailed
			res.Err = err
			e.report(res)
			return
		}
		res.Status = Persisted
		e.report(res)
	}()
}
