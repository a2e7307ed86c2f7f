package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studyquest/internal/engine"
	"studyquest/internal/quest"
	"studyquest/internal/ui"
)

type boardModel struct {
	ctx     context.Context
	eng     *engine.Engine
	user    string
	results <-chan engine.Result

	width  int
	height int

	quests  []quest.Quest
	totalXP int

	expanded map[string]bool
	selected int

	lastLog string
	loading bool
}

type loadedMsg struct {
	snap engine.Snapshot
}

type resultMsg struct {
	res engine.Result
}

func newBoardModel(ctx context.Context, eng *engine.Engine, user string, results <-chan engine.Result) boardModel {
	return boardModel{
		ctx:      ctx,
		eng:      eng,
		user:     user,
		results:  results,
		expanded: map[string]bool{},
		loading:  true,
		lastLog:  "Loading quests…",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitResult())
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		m.eng.Load(m.ctx, m.user)
		return loadedMsg{snap: m.eng.Snapshot()}
	}
}

// waitResult delivers the next background write outcome as a message.
func (m boardModel) waitResult() tea.Cmd {
	if m.results == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case r, ok := <-m.results:
			if !ok {
				return nil
			}
			return resultMsg{res: r}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *boardModel) apply(snap engine.Snapshot) {
	m.quests = snap.Quests
	m.totalXP = snap.TotalXP
	m.loading = snap.Loading
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.apply(msg.snap)
		if m.loading {
			m.lastLog = "Still loading (no credential?)."
			return m, nil
		}
		// Default-expand the first quest.
		if len(m.quests) > 0 && len(m.expanded) == 0 {
			m.expanded[m.quests[0].ID] = true
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case resultMsg:
		r := msg.res
		line := fmt.Sprintf("%s %s", r.Op, ui.SyncStatusText(r.Status.String()))
		if r.Err != nil {
			line += ": " + r.Err.Error()
		}
		m.lastLog = line
		return m, m.waitResult()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			lines := m.questLines()
			if m.selected < len(lines)-1 {
				m.selected++
			}
			return m, nil
		case "enter":
			lines := m.questLines()
			if m.selected < 0 || m.selected >= len(lines) {
				return m, nil
			}
			line := lines[m.selected]
			if line.isQuest {
				m.expanded[line.questID] = !m.expanded[line.questID]
			}
			return m, nil
		case " ", "x":
			lines := m.questLines()
			if m.selected < 0 || m.selected >= len(lines) {
				return m, nil
			}
			line := lines[m.selected]
			if line.isQuest {
				m.lastLog = "Select a task to toggle."
				return m, nil
			}
			m.quests = m.eng.ToggleTask(m.ctx, line.questID, line.taskIndex)
			m.totalXP = quest.TotalXP(m.quests)
			state := "reopened"
			if t := m.task(line.questID, line.taskIndex); t != nil && t.Completed {
				state = fmt.Sprintf("done (+%d XP)", t.XP)
			}
			m.lastLog = fmt.Sprintf("%s: %s", line.title, state)
			return m, nil
		}
	}
	return m, nil
}

type questLine struct {
	questID   string
	taskIndex int
	isQuest   bool
	title     string
	completed bool
	xp        int
	progress  int
	expanded  bool
}

func (m boardModel) questLines() []questLine {
	var out []questLine
	for _, q := range m.quests {
		out = append(out, questLine{
			questID:   q.ID,
			taskIndex: -1,
			isQuest:   true,
			title:     q.Title,
			progress:  quest.Progress(q),
			expanded:  m.expanded[q.ID],
		})
		if !m.expanded[q.ID] {
			continue
		}
		for i, t := range q.Tasks {
			out = append(out, questLine{
				questID:   q.ID,
				taskIndex: i,
				title:     t.Title,
				completed: t.Completed,
				xp:        t.XP,
			})
		}
	}
	return out
}

func (m boardModel) task(questID string, i int) *quest.Task {
	qi := quest.Find(m.quests, questID)
	if qi < 0 || i < 0 || i >= len(m.quests[qi].Tasks) {
		return nil
	}
	return &m.quests[qi].Tasks[i]
}

func (m boardModel) View() string {
	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "StudyQuest | " + m.user + " | loading…"
	}
	lvl := quest.LevelForTotalXP(m.totalXP)
	into, span := quest.LevelProgress(m.totalXP)
	return fmt.Sprintf("StudyQuest | %s | Level %d | XP %d %s", m.user, lvl, m.totalXP, ui.ProgressBar(into, span, 30))
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Quests"}
	if m.loading {
		lines = append(lines, "Loading…")
	}
	for _, q := range m.quests {
		lines = append(lines, fmt.Sprintf("- %s %3d%%", padRight(q.Title, 12), quest.Progress(q)))
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- enter: expand/collapse")
	lines = append(lines, "- space/x: toggle task")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Next up")
	next := nextTasks(m.quests, 3)
	if len(next) == 0 {
		out = append(out, "(all quests cleared)")
	}
	for _, n := range next {
		out = append(out, fmt.Sprintf("- %s: %s (xp=%d)", n.quest, n.task, n.xp))
	}
	out = append(out, "")
	out = append(out, "Quest Log")

	lines := m.questLines()
	if len(lines) == 0 {
		out = append(out, "(empty)")
		return strings.Join(out, "\n")
	}
	for i, ql := range lines {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		if ql.isQuest {
			fold := "▸ "
			if ql.expanded {
				fold = "▾ "
			}
			out = append(out, fmt.Sprintf("%s%s%s %s", cursor, fold, ql.title, ui.ProgressBar(ql.progress, 100, 10)))
			continue
		}
		out = append(out, fmt.Sprintf("%s    %s %s (xp=%d)", cursor, ui.TaskMark(ql.completed), ql.title, ql.xp))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

type nextTask struct {
	quest string
	task  string
	xp    int
}

// nextTasks returns the first open task of each quest, in quest order.
func nextTasks(quests []quest.Quest, n int) []nextTask {
	var out []nextTask
	for _, q := range quests {
		for _, t := range q.Tasks {
			if t.Completed {
				continue
			}
			out = append(out, nextTask{quest: q.Title, task: t.Title, xp: t.XP})
			break
		}
		if len(out) >= n {
			break
		}
	}
	return out
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
