package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"studyquest/internal/engine"
)

// ResultFeed is an engine.Reporter that hands results to the board. Results
// are dropped when the buffer is full.
type ResultFeed chan engine.Result

func NewResultFeed(size int) ResultFeed {
	return make(ResultFeed, size)
}

func (f ResultFeed) Report(r engine.Result) {
	select {
	case f <- r:
	default:
	}
}

// RunBoard loads user's quests into eng and runs the board until quit.
func RunBoard(ctx context.Context, eng *engine.Engine, user string, feed ResultFeed, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newBoardModel(ctx, eng, user, feed)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(out))
	_, err := p.Run()
	return err
}
