package chatstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// frameEvent is the subset of a backend event the reducer understands.
// Pointers distinguish an absent field from an empty one; any other field
// is ignored.
type frameEvent struct {
	Answer         *string `json:"answer"`
	ConversationID *string `json:"conversation_id"`
}

// Reducer folds frames into a Draft. It tracks the cumulative answer text
// and whether the in-progress assistant message exists yet, so it is scoped
// to exactly one stream; create a new Reducer per exchange.
type Reducer struct {
	started bool
	text    strings.Builder
}

// NewReducer returns a Reducer with an empty accumulator.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Reduce parses frame and applies it to d, returning the updated draft as a
// fresh snapshot. On ErrMalformedFrame d is returned unchanged and the
// accumulator is untouched.
func (r *Reducer) Reduce(frame string, d Draft) (Draft, error) {
	var evt frameEvent
	if err := json.Unmarshal([]byte(frame), &evt); err != nil {
		return d, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if evt.Answer == nil && evt.ConversationID == nil {
		return d, fmt.Errorf("%w: no answer or conversation_id", ErrMalformedFrame)
	}

	out := d.Clone()

	if evt.Answer != nil {
		r.text.WriteString(*evt.Answer)
		if !r.started {
			r.started = true
			out.Messages = append(out.Messages, AssistantMessage(r.text.String()))
		} else if n := len(out.Messages); n > 0 && out.Messages[n-1].Role == RoleAssistant {
			out.Messages[n-1].Content = r.text.String()
		} else {
			// The caller swapped in a draft without the in-progress message.
			out.Messages = append(out.Messages, AssistantMessage(r.text.String()))
		}
	}

	if evt.ConversationID != nil && *evt.ConversationID != "" {
		out.RemoteConversationID = *evt.ConversationID
	}

	return out, nil
}

// Started reports whether an assistant message has been created.
func (r *Reducer) Started() bool {
	return r.started
}

// Text returns the cumulative answer text seen so far.
func (r *Reducer) Text() string {
	return r.text.String()
}
