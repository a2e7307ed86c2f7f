package oracle

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"studyquest/internal/logging"
)

// Session is one conversation with the oracle.
type Session struct {
	client Client
	system string
	log    *zap.Logger

	mu      sync.Mutex
	history []Message
}

type SessionOption func(*Session)

func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(s *Session) { s.log = logging.OrNop(l).Named("oracle") }
}

// WithSystemPrompt replaces SystemPrompt for this session.
func WithSystemPrompt(p string) SessionOption {
	return func(s *Session) { s.system = p }
}

func NewSession(client Client, opts ...SessionOption) *Session {
	s := &Session{client: client, system: SystemPrompt(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask sends msg with the conversation so far and parses the reply. The
// exchange is recorded only when the call succeeds.
func (s *Session) Ask(ctx context.Context, msg string) (Result, error) {
	msg = strings.TrimSpace(msg)

	s.mu.Lock()
	messages := make([]Message, 0, len(s.history)+2)
	if s.system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: s.system})
	}
	messages = append(messages, s.history...)
	messages = append(messages, Message{Role: RoleUser, Content: msg})
	s.mu.Unlock()

	reply, err := s.client.Send(ctx, messages)
	if err != nil {
		s.log.Error("oracle request failed", zap.Error(err))
		return Result{}, err
	}

	res, perr := parse(reply)
	if perr != nil {
		s.log.Warn("ignoring malformed quest block", zap.Error(perr))
	} else if res.Quest != nil {
		s.log.Info("oracle proposed quest", zap.String("title", res.Quest.Title), zap.Int("tasks", len(res.Quest.Tasks)))
	}

	s.mu.Lock()
	s.history = append(s.history,
		Message{Role: RoleUser, Content: msg},
		Message{Role: RoleAssistant, Content: reply},
	)
	s.mu.Unlock()
	return res, nil
}

func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}
