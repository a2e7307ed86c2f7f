package storage

import (
	"context"
	"fmt"

	"studyquest/internal/quest"
)

// Remote table defaults: the quest table and the column naming its owner.
const (
	DefaultTable       = "quests"
	DefaultOwnerColumn = "clerk_user_id"
)

// Credential is an opaque bearer token supplied per call.
type Credential string

// QuestRow is a quest as persisted remotely: the quest attributes plus the
// owning user. Tasks travel as one JSON blob.
type QuestRow struct {
	quest.Quest
	UserID string `json:"clerk_user_id"`
}

// RowsForUser tags each quest with user.
func RowsForUser(user string, qs []quest.Quest) []QuestRow {
	rows := make([]QuestRow, len(qs))
	for i, q := range qs {
		rows[i] = QuestRow{Quest: q.Clone(), UserID: user}
	}
	return rows
}

// QuestStore is the remote quest table as seen by the sync engine.
// Implementations do not retry.
type QuestStore interface {
	SelectQuestsForUser(ctx context.Context, cred Credential, user string) ([]quest.Quest, error)
	InsertQuests(ctx context.Context, cred Credential, rows []QuestRow) error
	UpdateQuestTasks(ctx context.Context, cred Credential, questID, user string, tasks []quest.Task) error
}

// RemoteError reports a transport, auth or store failure.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func remoteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Op: op, Err: err}
}
