package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession marks a remote write skipped because no user is signed in.
	ErrNoSession = errors.New("no active session")
	// ErrNoCredential marks a remote call skipped because no token was available.
	ErrNoCredential = errors.New("no credential available")
)

// DuplicateQuestError is returned by AddQuest when the id is already taken.
type DuplicateQuestError struct {
	ID string
}

func (e DuplicateQuestError) Error() string {
	return fmt.Sprintf("quest %q already exists", e.ID)
}
