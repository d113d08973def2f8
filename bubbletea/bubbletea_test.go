package bubbletea_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chatstream"
	bt "github.com/fwojciec/chatstream/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and initializes it with a standard terminal size.
func initModel(t *testing.T, send bt.SendFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, send, chatstream.Conversation{}, 80, 24)
}

// initModelWithSize creates a model for conv with a custom terminal size.
func initModelWithSize(t *testing.T, send bt.SendFunc, conv chatstream.Conversation, width, height int) bt.Model {
	t.Helper()
	m := bt.New(send, conv, chatstream.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

func typeInputString(t *testing.T, ti textinput.Model, s string) textinput.Model {
	t.Helper()
	for _, r := range s {
		ti, _ = ti.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return ti
}

// nopSend completes immediately without publishing anything.
func nopSend(_ context.Context, _ chatstream.Message, _ *chatstream.Signal, _ func(chatstream.Draft)) (chatstream.Outcome, error) {
	return chatstream.Outcome{State: chatstream.StreamStateCompleted}, nil
}

func snapshot(msgs ...chatstream.Message) bt.SnapshotMsg {
	return bt.SnapshotMsg{Draft: chatstream.Draft{Messages: msgs}}
}
