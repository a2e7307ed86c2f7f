package root

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"studyquest/internal/auth"
	"studyquest/internal/config"
	"studyquest/internal/engine"
	"studyquest/internal/logging"
	"studyquest/internal/storage"
	"studyquest/internal/ui"
)

// localCredential satisfies the token requirement for the sqlite store,
// which does not check credentials.
const localCredential = "local"

type session struct {
	cfg   config.Config
	log   *zap.Logger
	store storage.Store
	eng   *engine.Engine
	user  string
	flush func()

	results *resultLog
}

// resultLog collects background write outcomes for printing after Close.
type resultLog struct {
	mu      sync.Mutex
	results []engine.Result
}

func (l *resultLog) Report(r engine.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(userFlag) != "" {
		cfg.User = strings.TrimSpace(userFlag)
	}
	return cfg, nil
}

func tokenSource(cfg config.Config) auth.TokenSource {
	chain := auth.Chain{auth.Static(cfg.Auth.Token), auth.Env{Prefix: config.EnvPrefix}}
	if cfg.Store.Driver == "" || cfg.Store.Driver == "sqlite" {
		chain = append(chain, auth.Static(localCredential))
	}
	return chain
}

// openSession wires config, logger, store and engine. A nil reporter collects
// results for printSync.
func openSession(ctx context.Context, reporter engine.Reporter) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, flush, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenStore(ctx, cfg.Store)
	if err != nil {
		flush()
		return nil, err
	}

	s := &session{cfg: cfg, log: log, store: store, user: cfg.User, flush: flush}
	if reporter == nil {
		s.results = &resultLog{}
		reporter = s.results
	}
	s.eng = engine.New(store, tokenSource(cfg),
		engine.WithLogger(log),
		engine.WithReporter(reporter),
		engine.WithTokenTemplate(cfg.Auth.Template),
	)
	return s, nil
}

var errNoUser = errors.New("no user: pass --user or set STUDYQUEST_USER")

// load fetches the user's quests and fails when they stay unknown.
func (s *session) load(ctx context.Context) error {
	if s.user == "" {
		return errNoUser
	}
	s.eng.Load(ctx, s.user)
	if s.eng.Loading() {
		return fmt.Errorf("quests for %s unavailable: no credential for the %s store", s.user, s.cfg.Store.Driver)
	}
	return nil
}

// close waits for background writes before releasing the store.
func (s *session) close(ctx context.Context) error {
	err := s.eng.Close(ctx)
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	s.flush()
	return err
}

// printSync reports collected write outcomes other than the load itself.
func (s *session) printSync(w io.Writer) {
	if s.results == nil {
		return
	}
	s.results.mu.Lock()
	defer s.results.mu.Unlock()
	for _, r := range s.results.results {
		if r.Op == engine.OpLoad && r.Status == engine.Persisted {
			continue
		}
		line := fmt.Sprintf("%s %s %s", ui.Muted.Render("sync"), r.Op, ui.SyncStatusText(r.Status.String()))
		if r.Err != nil {
			line += " " + ui.Muted.Render(r.Err.Error())
		}
		fmt.Fprintln(w, line)
	}
}

// withSession runs fn against a loaded session and always closes it.
func withSession(ctx context.Context, w io.Writer, fn func(*session) error) error {
	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	runErr := s.load(ctx)
	if runErr == nil {
		runErr = fn(s)
	}
	closeErr := s.close(ctx)
	s.printSync(w)
	if runErr != nil {
		return runErr
	}
	return closeErr
}
