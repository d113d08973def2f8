package chatstream

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateIdle      StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, reducing frames.
	StreamStateCompleted                    // Byte source reached its natural end.
	StreamStateCancelled                    // Signal observed or Close() called early.
	StreamStateErrored                      // Read failure.
)

func (s StreamState) String() string {
	switch s {
	case StreamStateIdle:
		return "idle"
	case StreamStateStreaming:
		return "streaming"
	case StreamStateCompleted:
		return "completed"
	case StreamStateCancelled:
		return "cancelled"
	case StreamStateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further snapshots can be produced.
func (s StreamState) Terminal() bool {
	return s == StreamStateCompleted || s == StreamStateCancelled || s == StreamStateErrored
}

// Stream uses a pull-based iterator pattern. Cancellation flows through the
// Signal passed to Backend.Stream, or through Close.
//
// Next returns one Draft snapshot per reduced frame. It returns io.EOF once
// the stream is Completed or Cancelled, and a *ReadError when it Errored.
// Malformed frames are skipped without surfacing an error.
//
// Draft returns the latest snapshot in every state; before the first frame
// it is the starting draft. After a terminal state it is the final draft.
type Stream interface {
	Next() (Draft, error)
	State() StreamState
	Draft() Draft
	Close() error
}
