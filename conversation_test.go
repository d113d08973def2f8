package chatstream_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/chatstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short text is kept", "What is Go?", "What is Go?"},
		{"exactly thirty characters", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"longer text is cut", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"multi-byte characters count once", strings.Repeat("é", 35), strings.Repeat("é", 30) + "..."},
		{"emoji sequences are not split", strings.Repeat("👍🏽", 31), strings.Repeat("👍🏽", 30) + "..."},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, chatstream.DefaultName(tt.content))
		})
	}
}

func TestConversation_Unnamed(t *testing.T) {
	t.Parallel()

	assert.True(t, chatstream.Conversation{}.Unnamed())
	assert.True(t, chatstream.Conversation{Name: chatstream.DefaultConversationName}.Unnamed())
	assert.False(t, chatstream.Conversation{Name: "Trip planning"}.Unnamed())
}

func TestConversation_Truncate(t *testing.T) {
	t.Parallel()

	msgs := func() []chatstream.Message {
		return []chatstream.Message{
			chatstream.UserMessage("q1"),
			chatstream.AssistantMessage("a1"),
			chatstream.UserMessage("q2"),
		}
	}

	tests := []struct {
		n    int
		want int
	}{
		{-1, 3},
		{0, 3},
		{1, 2},
		{3, 0},
		{10, 0},
	}
	for _, tt := range tests {
		c := chatstream.Conversation{Messages: msgs()}
		c.Truncate(tt.n)
		assert.Len(t, c.Messages, tt.want, "Truncate(%d)", tt.n)
	}
}

func TestConversation_DraftAndApply(t *testing.T) {
	t.Parallel()

	c := chatstream.Conversation{
		Messages:             []chatstream.Message{chatstream.UserMessage("hi")},
		RemoteConversationID: "r1",
	}

	d := c.Draft()
	assert.Equal(t, "r1", d.RemoteConversationID)
	d.Messages[0].Content = "changed"
	assert.Equal(t, "hi", c.Messages[0].Content, "Draft must not share storage")

	final := chatstream.Draft{
		Messages:             []chatstream.Message{chatstream.UserMessage("hi"), chatstream.AssistantMessage("hello")},
		RemoteConversationID: "r2",
	}
	c.Apply(final)
	require.Len(t, c.Messages, 2)
	assert.Equal(t, "r2", c.RemoteConversationID)
	final.Messages[1].Content = "changed"
	assert.Equal(t, "hello", c.Messages[1].Content, "Apply must not share storage")
}

func TestDraft_LastAssistant(t *testing.T) {
	t.Parallel()

	_, ok := chatstream.Draft{}.LastAssistant()
	assert.False(t, ok)

	_, ok = chatstream.Draft{Messages: []chatstream.Message{chatstream.UserMessage("q")}}.LastAssistant()
	assert.False(t, ok)

	msg, ok := chatstream.Draft{Messages: []chatstream.Message{
		chatstream.UserMessage("q"),
		chatstream.AssistantMessage("a"),
	}}.LastAssistant()
	assert.True(t, ok)
	assert.Equal(t, "a", msg.Content)
}

func TestNewRequest(t *testing.T) {
	t.Parallel()

	c := chatstream.Conversation{
		Model:                chatstream.Model{ID: "m", Key: "k"},
		Messages:             []chatstream.Message{chatstream.UserMessage("q")},
		Prompt:               "p",
		Temperature:          0.7,
		RemoteConversationID: "r",
	}
	req := chatstream.NewRequest(c)
	assert.Equal(t, "k", req.Key)
	assert.Equal(t, "p", req.Prompt)
	assert.Equal(t, 0.7, req.Temperature)
	assert.Equal(t, "r", req.ConversationID)
	assert.Equal(t, "q", req.Query())
	assert.Empty(t, chatstream.Request{}.Query())
}
