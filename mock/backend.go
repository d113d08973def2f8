// Package mock provides test doubles for chatstream interfaces using
// function fields.
package mock

import (
	"context"

	"github.com/fwojciec/chatstream"
)

// Interface compliance checks.
var (
	_ chatstream.Backend = (*Backend)(nil)
	_ chatstream.Stream  = (*Stream)(nil)
)

// Backend is a test double for chatstream.Backend.
// Set StreamFn before calling Stream.
type Backend struct {
	StreamFn func(ctx context.Context, req chatstream.Request, signal *chatstream.Signal) (chatstream.Stream, error)
}

// Stream delegates to StreamFn.
func (b *Backend) Stream(ctx context.Context, req chatstream.Request, signal *chatstream.Signal) (chatstream.Stream, error) {
	return b.StreamFn(ctx, req, signal)
}

// Stream is a test double for chatstream.Stream.
// Set the function fields for the methods you need.
type Stream struct {
	NextFn  func() (chatstream.Draft, error)
	StateFn func() chatstream.StreamState
	DraftFn func() chatstream.Draft
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (chatstream.Draft, error) {
	return s.NextFn()
}

// State delegates to StateFn.
func (s *Stream) State() chatstream.StreamState {
	return s.StateFn()
}

// Draft delegates to DraftFn.
func (s *Stream) Draft() chatstream.Draft {
	return s.DraftFn()
}

// Close delegates to CloseFn.
func (s *Stream) Close() error {
	return s.CloseFn()
}
