package chatstream

import (
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// DefaultConversationName is the placeholder name of a conversation that
// has not been named from its first message yet.
const DefaultConversationName = "New Conversation"

// maxNameLength is the number of user-perceived characters kept when a
// conversation is named after its first message.
const maxNameLength = 30

// Model describes a backend application the client can talk to. Key is the
// per-model credential sent with every request.
type Model struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	MaxLength  int    `json:"max_length" yaml:"maxLength"`
	TokenLimit int    `json:"token_limit" yaml:"tokenLimit"`
	Key        string `json:"-" yaml:"key"`
}

// Conversation is a persisted chat thread. RemoteConversationID is the
// backend-assigned identifier used to resume the thread server-side; it is
// empty until the first exchange reports one.
type Conversation struct {
	ID                   string
	Name                 string
	Messages             []Message
	Model                Model
	Prompt               string
	Temperature          float64
	FolderID             string
	RemoteConversationID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Draft returns the starting Draft for an exchange on c.
func (c Conversation) Draft() Draft {
	return Draft{
		Messages:             c.Messages,
		RemoteConversationID: c.RemoteConversationID,
	}.Clone()
}

// Apply copies the messages and remote id of d into c.
func (c *Conversation) Apply(d Draft) {
	d = d.Clone()
	c.Messages = d.Messages
	c.RemoteConversationID = d.RemoteConversationID
}

// Truncate drops the last n messages. It is a no-op for n <= 0 and empties
// the conversation when n exceeds its length.
func (c *Conversation) Truncate(n int) {
	if n <= 0 {
		return
	}
	if n >= len(c.Messages) {
		c.Messages = c.Messages[:0]
		return
	}
	c.Messages = c.Messages[:len(c.Messages)-n]
}

// Unnamed reports whether c still carries an empty or placeholder name.
func (c Conversation) Unnamed() bool {
	return c.Name == "" || c.Name == DefaultConversationName
}

// DefaultName derives a conversation name from the first user message: the
// first 30 grapheme clusters, with "..." appended when the text was cut.
func DefaultName(content string) string {
	var (
		b strings.Builder
		n int
	)
	gr := uniseg.NewGraphemes(content)
	for gr.Next() {
		if n == maxNameLength {
			return b.String() + "..."
		}
		b.WriteString(gr.Str())
		n++
	}
	return content
}
