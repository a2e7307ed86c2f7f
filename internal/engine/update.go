package engine

import (
	"context"

	"studyquest/internal/quest"
	"studyquest/internal/storage"
)

// ToggleTask flips the completed flag of one task and returns the updated
// collection. Unknown quests and out-of-range indexes are no-ops.
//
// The new task list is computed from the current collection while holding
// the lock, so back-to-back toggles always see each other. The remote update
// carries the whole task list, so out-of-order completion still leaves the
// last issued value.
func (e *Engine) ToggleTask(ctx context.Context, questID string, taskIndex int) []quest.Quest {
	e.mu.Lock()
	i := quest.Find(e.quests, questID)
	if i < 0 || taskIndex < 0 || taskIndex >= len(e.quests[i].Tasks) {
		snap := quest.CloneAll(e.quests)
		e.mu.Unlock()
		return snap
	}

	next := e.quests[i].Clone()
	next.Tasks[taskIndex].Completed = !next.Tasks[taskIndex].Completed
	e.quests[i] = next

	user := e.user
	tasks := next.Clone().Tasks
	snap := quest.CloneAll(e.quests)
	e.mu.Unlock()

	e.persist(ctx, OpToggleTask, user, questID, func(ctx context.Context, cred storage.Credential) error {
		return e.store.UpdateQuestTasks(ctx, cred, questID, user, tasks)
	})
	return snap
}
