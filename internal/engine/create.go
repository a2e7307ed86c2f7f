package engine

import (
	"context"

	"studyquest/internal/quest"
	"studyquest/internal/storage"
)

// AddQuest appends q to the collection and returns the updated collection
// before any network call completes. The remote insert runs in the
// background; its failure is reported, never rolled back. Only local
// validation errors are returned.
func (e *Engine) AddQuest(ctx context.Context, q quest.Quest) ([]quest.Quest, error) {
	if err := quest.Validate(q); err != nil {
		return nil, err
	}
	q = q.Clone()
	if q.Tasks == nil {
		q.Tasks = []quest.Task{}
	}

	e.mu.Lock()
	if quest.Find(e.quests, q.ID) >= 0 {
		e.mu.Unlock()
		return nil, DuplicateQuestError{ID: q.ID}
	}
	e.quests = append(e.quests, q)
	user := e.user
	snap := quest.CloneAll(e.quests)
	e.mu.Unlock()

	rows := storage.RowsForUser(user, []quest.Quest{q})
	e.persist(ctx, OpAddQuest, user, q.ID, func(ctx context.Context, cred storage.Credential) error {
		return e.store.InsertQuests(ctx, cred, rows)
	})
	return snap, nil
}

// AddProposal turns an oracle proposal into a quest with a fresh id and
// adds it through AddQuest.
func (e *Engine) AddProposal(ctx context.Context, p quest.Proposal) (quest.Quest, []quest.Quest, error) {
	q := quest.FromProposal(e.newID(), p)
	snap, err := e.AddQuest(ctx, q)
	if err != nil {
		return quest.Quest{}, nil, err
	}
	return q, snap, nil
}
