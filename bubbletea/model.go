package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/goldmark"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI. It never mutates the
// conversation itself: it only displays the latest snapshot.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	send   SendFunc
	theme  chatstream.Theme
	styles Styles
	title  string

	draft  chatstream.Draft
	state  chatstream.StreamState
	signal *chatstream.Signal

	running bool
	cancel  context.CancelFunc
	snapCh  chan chatstream.Draft
	doneCh  chan DoneMsg
	err     error
	ready   bool
}

// New creates a TUI Model showing the given conversation.
func New(send SendFunc, conv chatstream.Conversation, theme chatstream.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		Input:  ti,
		send:   send,
		theme:  theme,
		styles: NewStyles(theme),
		title:  conv.Name,
		draft:  conv.Draft(),
		state:  chatstream.StreamStateIdle,
		signal: &chatstream.Signal{},
	}
}

// Running returns whether a stream is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last send, if any.
func (m Model) Err() error { return m.err }

// State returns the state of the last send.
func (m Model) State() chatstream.StreamState { return m.state }

// Draft returns the draft currently on screen.
func (m Model) Draft() chatstream.Draft { return m.draft }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		m.draft = msg.Draft
		m.state = chatstream.StreamStateStreaming
		m = m.refresh()
		if m.snapCh != nil {
			return m, listenForSnapshot(m.snapCh, m.doneCh)
		}
		return m, nil

	case DoneMsg:
		m.running = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.snapCh = nil
		m.doneCh = nil
		m.err = msg.Err
		m.state = msg.Outcome.State
		if msg.Err != nil {
			m.state = chatstream.StreamStateErrored
		}
		if len(msg.Outcome.Draft.Messages) > 0 {
			m.draft = msg.Outcome.Draft
		}
		m = m.refresh()
		return m, m.Input.Focus()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const chrome = 4 // status line, input line and the newlines between sections
	vpHeight := max(msg.Height-chrome, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.stop()
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m.stop()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	if m.running {
		return m, nil
	}

	// 'j'/'k' and friends are text, so only non-rune keys scroll.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// stop raises the signal and unblocks a read that is waiting on the network.
func (m Model) stop() {
	m.signal.Stop()
	if m.cancel != nil {
		m.cancel()
	}
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.signal.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.snapCh = make(chan chatstream.Draft, 64)
	m.doneCh = make(chan DoneMsg, 1)
	m.running = true
	m.state = chatstream.StreamStateStreaming

	msg := chatstream.UserMessage(text)
	m.draft = m.draft.Clone()
	m.draft.Messages = append(m.draft.Messages, msg)
	m = m.refresh()

	return m, tea.Batch(
		startSend(ctx, m.send, msg, m.signal, m.snapCh, m.doneCh),
		listenForSnapshot(m.snapCh, m.doneCh),
	)
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	width := m.Viewport.Width
	var blocks []string
	if m.title != "" {
		blocks = append(blocks, m.styles.Muted.Render(m.title))
	}
	for _, msg := range m.draft.Messages {
		switch msg.Role {
		case chatstream.RoleUser:
			body := lipgloss.NewStyle().Width(max(width-2, 10)).Render(msg.Content)
			blocks = append(blocks, m.styles.UserMsg.Render("> ")+body)
		case chatstream.RoleAssistant:
			body := goldmark.Render(msg.Content, width, m.theme)
			blocks = append(blocks, body)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.running:
		return m.styles.Muted.Render("Generating... Esc to stop")
	case m.state == chatstream.StreamStateCancelled:
		return m.styles.Warning.Render("Stopped.") + " " + m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
	case m.state == chatstream.StreamStateCompleted:
		return m.styles.Success.Render("Done.") + " " + m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
	}
	return m.styles.Muted.Render("Enter to send, Ctrl+C to quit")
}

// startSend runs send in a goroutine and reports completion on doneCh after
// every snapshot has been queued.
func startSend(ctx context.Context, send SendFunc, msg chatstream.Message, signal *chatstream.Signal, snapCh chan<- chatstream.Draft, doneCh chan<- DoneMsg) tea.Cmd {
	return func() tea.Msg {
		out, err := send(ctx, msg, signal, func(d chatstream.Draft) {
			snapCh <- d
		})
		close(snapCh)
		doneCh <- DoneMsg{Outcome: out, Err: err}
		return nil
	}
}

// listenForSnapshot waits for the next snapshot. When the channel closes it
// returns the DoneMsg.
func listenForSnapshot(ch <-chan chatstream.Draft, doneCh <-chan DoneMsg) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return SnapshotMsg{Draft: d}
	}
}
