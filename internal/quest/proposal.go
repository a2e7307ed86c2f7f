package quest

import "strings"

// Defaults applied to quests created from user input or oracle proposals.
const (
	DefaultIcon          = "school"
	DefaultIconColor     = "#6B8E23"
	DefaultDeadline      = "No Deadline"
	DefaultDeadlineBg    = "bg-primary/10 border-primary/20"
	DefaultDeadlineColor = "#6B8E23"
	DefaultDeadlineIcon  = "event-upcoming"
	DefaultProgressColor = "bg-primary"
	DefaultTaskXP        = 100
)

// ProposedTask is a task as suggested by the oracle. XP is nil when the
// proposal did not carry a usable number.
type ProposedTask struct {
	Title string
	XP    *int
}

// Proposal is a quest suggestion before defaults are applied.
type Proposal struct {
	Title     string
	Icon      string
	IconColor string
	Deadline  string
	Tasks     []ProposedTask
}

// FromProposal builds a complete quest from p, filling styling defaults,
// dropping tasks with blank titles and falling back to DefaultTaskXP.
func FromProposal(id string, p Proposal) Quest {
	q := Quest{
		ID:            id,
		Title:         strings.TrimSpace(p.Title),
		Icon:          orDefault(p.Icon, DefaultIcon),
		IconColor:     orDefault(p.IconColor, DefaultIconColor),
		Deadline:      orDefault(p.Deadline, DefaultDeadline),
		DeadlineBg:    DefaultDeadlineBg,
		DeadlineColor: DefaultDeadlineColor,
		DeadlineIcon:  DefaultDeadlineIcon,
		ProgressColor: DefaultProgressColor,
		Tasks:         []Task{},
	}
	for _, pt := range p.Tasks {
		title := strings.TrimSpace(pt.Title)
		if title == "" {
			continue
		}
		xp := DefaultTaskXP
		if pt.XP != nil && *pt.XP > 0 {
			xp = *pt.XP
		}
		q.Tasks = append(q.Tasks, Task{Title: title, XP: xp})
	}
	return q
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
