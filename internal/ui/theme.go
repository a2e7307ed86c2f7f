package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// StudyQuest theme (CLI + TUI).
// Reusable styles, a few emojis and quest line rendering.

const (
	IconQuest   = "🗺️"
	IconSparkle = "✨"
	IconPlus    = "➕"
	IconDone    = "✅"
	IconTodo    = "⬜"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconOracle  = "🔮"
	IconScroll  = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// QuestIcon maps a quest icon name to an emoji.
func QuestIcon(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "security", "shield":
		return "🛡️"
	case "memory", "computer":
		return "💾"
	case "account-tree", "tree":
		return "🌳"
	case "science", "biotech":
		return "🔬"
	case "calculate", "functions":
		return "🧮"
	case "school", "":
		return "🎓"
	default:
		return IconQuest
	}
}

// DeadlineText colors a deadline label by its urgency icon.
func DeadlineText(label, icon string) string {
	switch strings.ToLower(strings.TrimSpace(icon)) {
	case "warning":
		return Bad.Render(label)
	case "timer":
		return Warn.Render(label)
	default:
		return Muted.Render(label)
	}
}

func TaskMark(completed bool) string {
	if completed {
		return IconDone
	}
	return IconTodo
}

// SyncStatusText renders a background write outcome.
func SyncStatusText(status string) string {
	switch status {
	case "persisted":
		return Good.Render("synced")
	case "skipped":
		return Warn.Render("not synced")
	case "persist_failed":
		return Bad.Render("sync failed")
	default:
		return Muted.Render(status)
	}
}

// ProgressBar renders value/total as a fixed-width bar.
func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := int(float64(value) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
