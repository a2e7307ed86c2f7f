package quest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidQuest is wrapped by Validate failures.
var ErrInvalidQuest = errors.New("invalid quest")

type Task struct {
	Title     string `json:"title" yaml:"title"`
	XP        int    `json:"xp" yaml:"xp"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Quest is a trackable unit of study work. Task order is significant: the
// index is the address used by task mutations.
type Quest struct {
	ID            string `json:"id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	Icon          string `json:"icon" yaml:"icon"`
	IconColor     string `json:"iconColor" yaml:"iconColor"`
	Deadline      string `json:"deadline" yaml:"deadline"`
	DeadlineBg    string `json:"deadlineBg" yaml:"deadlineBg"`
	DeadlineColor string `json:"deadlineColor" yaml:"deadlineColor"`
	DeadlineIcon  string `json:"deadlineIcon" yaml:"deadlineIcon"`
	ProgressColor string `json:"progressColor" yaml:"progressColor"`
	Tasks         []Task `json:"tasks" yaml:"tasks"`
}

// Clone returns a copy that shares no task storage with q.
func (q Quest) Clone() Quest {
	out := q
	if q.Tasks != nil {
		out.Tasks = make([]Task, len(q.Tasks))
		copy(out.Tasks, q.Tasks)
	}
	return out
}

func (q Quest) Progress() int { return Progress(q) }

// CloneAll deep-copies a collection.
func CloneAll(qs []Quest) []Quest {
	if qs == nil {
		return nil
	}
	out := make([]Quest, len(qs))
	for i := range qs {
		out[i] = qs[i].Clone()
	}
	return out
}

// Find returns the index of the quest with the given id, or -1.
func Find(qs []Quest, id string) int {
	for i := range qs {
		if qs[i].ID == id {
			return i
		}
	}
	return -1
}

func Validate(q Quest) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidQuest)
	}
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidQuest)
	}
	for i, t := range q.Tasks {
		if t.XP <= 0 {
			return fmt.Errorf("%w: task %d xp must be positive, got %d", ErrInvalidQuest, i, t.XP)
		}
	}
	return nil
}

// NewID returns a fresh quest id for quests created during a session.
func NewID() string {
	return uuid.NewString()
}
