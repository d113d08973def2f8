package chatstream

// Draft is the conversation state reconstructed during one streaming
// exchange. Messages is append-only except for the trailing assistant
// message, whose Content is replaced as cumulative text arrives.
//
// A Draft handed to a snapshot handler must be treated as read-only; use
// Clone before mutating.
type Draft struct {
	Messages             []Message
	RemoteConversationID string
}

// Clone returns a copy of d that shares no backing storage with it.
func (d Draft) Clone() Draft {
	out := Draft{RemoteConversationID: d.RemoteConversationID}
	if d.Messages != nil {
		out.Messages = make([]Message, len(d.Messages))
		copy(out.Messages, d.Messages)
	}
	return out
}

// LastAssistant returns the trailing message when it has RoleAssistant.
func (d Draft) LastAssistant() (Message, bool) {
	if n := len(d.Messages); n > 0 && d.Messages[n-1].Role == RoleAssistant {
		return d.Messages[n-1], true
	}
	return Message{}, false
}
