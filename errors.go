package chatstream

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrMalformedFrame indicates a frame that is not a JSON object or
	// carries neither an answer nor a conversation id. Streams recover from
	// it locally by skipping the frame.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrNoBody indicates a successful response without a readable body.
	ErrNoBody = errors.New("response has no body")

	// ErrConversationNotFound indicates a lookup for an unknown conversation.
	ErrConversationNotFound = errors.New("conversation not found")
)

// TransportError reports a failure to open the stream: a non-OK HTTP status
// or a response without a body. No draft is produced when it occurs.
type TransportError struct {
	StatusCode int
	Status     string
	Body       string // leading excerpt of the response body, if any
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("transport error: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("transport error: HTTP %d: %v", e.StatusCode, e.Err)
	case e.Body != "":
		return fmt.Sprintf("transport error: HTTP %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("transport error: HTTP %d %s", e.StatusCode, e.Status)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ReadError reports a failure while pulling bytes mid-stream. Snapshots
// published before the failure remain the last known state.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
