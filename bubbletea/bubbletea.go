// Package bubbletea provides a Bubble Tea TUI that renders conversation
// snapshots as they stream in and stops the stream on request.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatstream"
)

// SendFunc sends msg on the TUI's conversation. Each snapshot is passed to
// onSnapshot in stream order. The function blocks until the stream reaches a
// terminal state. Stopping the signal ends the stream gracefully.
type SendFunc func(ctx context.Context, msg chatstream.Message, signal *chatstream.Signal, onSnapshot func(chatstream.Draft)) (chatstream.Outcome, error)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// SnapshotMsg carries one published draft to the model.
type SnapshotMsg struct {
	Draft chatstream.Draft
}

// DoneMsg signals that a send has finished.
type DoneMsg struct {
	Outcome chatstream.Outcome
	Err     error
}
