package chatstream

import "sync/atomic"

// Signal is a cooperative cancellation flag shared between the party that
// wants a stream stopped (typically a UI) and the stream reader, which
// checks it before every pull. A nil *Signal is never stopped.
type Signal struct {
	stopped atomic.Bool
}

// Stop requests that the stream end at the next pull boundary.
func (s *Signal) Stop() {
	if s != nil {
		s.stopped.Store(true)
	}
}

// Stopped reports whether Stop has been called since the last Reset.
func (s *Signal) Stopped() bool {
	return s != nil && s.stopped.Load()
}

// Reset clears the flag so the Signal can be reused for the next exchange.
func (s *Signal) Reset() {
	if s != nil {
		s.stopped.Store(false)
	}
}
