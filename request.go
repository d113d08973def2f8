package chatstream

// Request carries everything the backend needs for one exchange. The caller
// supplies the model credential; this package never looks keys up itself.
type Request struct {
	Model          Model     `json:"model"`
	Messages       []Message `json:"messages"`
	Key            string    `json:"key"`
	Prompt         string    `json:"prompt"`
	Temperature    float64   `json:"temperature"`
	ConversationID string    `json:"conversationID"` // remote id; empty starts a new thread
	User           string    `json:"user,omitempty"`
}

// NewRequest builds a Request from the current state of a conversation.
func NewRequest(c Conversation) Request {
	return Request{
		Model:          c.Model,
		Messages:       c.Draft().Messages,
		Key:            c.Model.Key,
		Prompt:         c.Prompt,
		Temperature:    c.Temperature,
		ConversationID: c.RemoteConversationID,
	}
}

// Query returns the content of the last message, which is what the backend
// answers.
func (r Request) Query() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}
