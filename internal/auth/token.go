// Package auth provides the credential capability used before every remote
// quest call. Issuing tokens is someone else's job; a TokenSource only hands
// out what it already has, or reports that nothing is available.
package auth

import (
	"context"
	"os"
	"strings"
)

// DefaultTemplate names the token template the quest store expects.
const DefaultTemplate = "supabase"

// TokenSource yields a credential for a named template. ok is false when no
// credential is available; callers then skip the remote call.
type TokenSource interface {
	Token(ctx context.Context, template string) (token string, ok bool, err error)
}

// Func adapts a function to TokenSource.
type Func func(ctx context.Context, template string) (string, bool, error)

func (f Func) Token(ctx context.Context, template string) (string, bool, error) {
	return f(ctx, template)
}

// Static always returns the same token for every template.
type Static string

func (s Static) Token(context.Context, string) (string, bool, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", false, nil
	}
	return string(s), true, nil
}

// Env reads STUDYQUEST_TOKEN_<TEMPLATE> and falls back to STUDYQUEST_TOKEN.
type Env struct {
	Prefix string
}

func (e Env) Token(_ context.Context, template string) (string, bool, error) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "STUDYQUEST"
	}
	base := prefix + "_TOKEN"
	if template != "" {
		key := base + "_" + envSuffix(template)
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v, true, nil
		}
	}
	if v := strings.TrimSpace(os.Getenv(base)); v != "" {
		return v, true, nil
	}
	return "", false, nil
}

func envSuffix(template string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(template)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Chain tries each source in order and returns the first credential found.
type Chain []TokenSource

func (c Chain) Token(ctx context.Context, template string) (string, bool, error) {
	for _, src := range c {
		tok, ok, err := src.Token(ctx, template)
		if err != nil {
			return "", false, err
		}
		if ok {
			return tok, true, nil
		}
	}
	return "", false, nil
}
