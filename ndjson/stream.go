package ndjson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/chatstream"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxTailLog bounds the excerpt of discarded trailing data in log records.
const maxTailLog = 64

// stream implements [chatstream.Stream] by pulling chunks from a byte
// source, splitting the decoded text into frames and reducing them.
type stream struct {
	body   io.ReadCloser
	src    io.Reader // UTF-8 decoding view of body
	chunk  []byte
	signal *chatstream.Signal
	abort  func()
	ctx    context.Context
	logger *slog.Logger

	splitter chatstream.Splitter
	reducer  *chatstream.Reducer
	pending  []string
	draft    chatstream.Draft

	state   chatstream.StreamState
	eof     bool  // byte source exhausted
	readErr error // read failure awaiting delivery after pending frames
	err     error // terminal error, if any
	closed  bool
}

// Interface compliance check.
var _ chatstream.Stream = (*stream)(nil)

// StreamOption configures a stream created by [NewStream].
type StreamOption func(*stream)

// WithSignal sets the cancellation signal checked before every pull.
func WithSignal(s *chatstream.Signal) StreamOption {
	return func(st *stream) { st.signal = s }
}

// WithAbort sets the function that tells the transport to stop sending,
// typically the cancel func of the request context.
func WithAbort(abort func()) StreamOption {
	return func(st *stream) { st.abort = abort }
}

// WithContext sets the context whose cancellation, when it surfaces as a
// read failure, is treated as a cancelled stream rather than an error.
func WithContext(ctx context.Context) StreamOption {
	return func(st *stream) { st.ctx = ctx }
}

// WithStreamLogger sets the stream's logger.
func WithStreamLogger(l *slog.Logger) StreamOption {
	return func(st *stream) { st.logger = l }
}

// WithReadSize sets the size of each pull from the body.
func WithReadSize(n int) StreamOption {
	return func(st *stream) {
		if n > 0 {
			st.chunk = make([]byte, n)
		}
	}
}

// NewStream returns a [chatstream.Stream] that reconstructs a conversation
// from body, starting from draft. Multi-byte characters split across pulls
// are carried over by the decoder; a leading byte order mark is dropped.
func NewStream(body io.ReadCloser, draft chatstream.Draft, opts ...StreamOption) chatstream.Stream {
	s := &stream{
		body:    body,
		chunk:   make([]byte, defaultChunkSize),
		ctx:     context.Background(),
		logger:  slog.New(slog.DiscardHandler),
		reducer: chatstream.NewReducer(),
		draft:   draft.Clone(),
		state:   chatstream.StreamStateIdle,
	}
	for _, o := range opts {
		o(s)
	}
	s.src = transform.NewReader(body, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	return s
}

// Next pulls until the next frame reduces into a new snapshot.
// Returns io.EOF once the stream is completed or cancelled.
func (s *stream) Next() (chatstream.Draft, error) {
	switch s.state {
	case chatstream.StreamStateCompleted, chatstream.StreamStateCancelled:
		return s.draft, io.EOF
	case chatstream.StreamStateErrored:
		return s.draft, s.err
	}
	s.state = chatstream.StreamStateStreaming

	for {
		// Frames already split but not yet reduced are dropped on stop.
		if s.signal.Stopped() {
			s.pending = nil
			s.cancel("signal")
			return s.draft, io.EOF
		}

		if len(s.pending) > 0 {
			frame := s.pending[0]
			s.pending = s.pending[1:]
			d, err := s.reducer.Reduce(frame, s.draft)
			if err != nil {
				s.logger.Debug("Skipping frame",
					slog.String("frame", excerpt(frame)),
					slog.String(errLoggerKey, err.Error()))
				continue
			}
			s.draft = d
			return d, nil
		}

		if s.eof {
			s.complete()
			return s.draft, io.EOF
		}
		if s.readErr != nil {
			s.fail(s.readErr)
			return s.draft, s.err
		}

		n, err := s.src.Read(s.chunk)
		if n > 0 {
			s.splitter.Append(string(s.chunk[:n]))
			s.pending = append(s.pending, s.splitter.Drain()...)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.eof = true
		case s.signal.Stopped() || s.ctx.Err() != nil:
			s.pending = nil
			s.cancel("interrupted read")
			return s.draft, io.EOF
		default:
			s.readErr = err
		}
	}
}

// State returns the current stream state.
func (s *stream) State() chatstream.StreamState {
	return s.state
}

// Draft returns the latest snapshot.
func (s *stream) Draft() chatstream.Draft {
	return s.draft
}

// Close aborts the transport and closes the body. Closing a stream that has
// not reached a terminal state marks it cancelled.
func (s *stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.state.Terminal() {
		s.state = chatstream.StreamStateCancelled
	}
	if s.abort != nil {
		s.abort()
	}
	return s.body.Close()
}

// complete finalizes a naturally ended stream. Text after the last
// delimiter cannot be a whole frame and is dropped.
func (s *stream) complete() {
	if tail := s.splitter.Buffered(); strings.TrimSpace(tail) != "" {
		s.logger.Warn("Discarding undelimited trailing data",
			slog.Int("bytes", len(tail)),
			slog.String("tail", excerpt(tail)))
	}
	s.splitter.Reset()
	s.state = chatstream.StreamStateCompleted
	if s.abort != nil {
		s.abort()
	}
}

func (s *stream) cancel(reason string) {
	s.logger.Debug("Stream cancelled", slog.String("reason", reason))
	if s.abort != nil {
		s.abort()
	}
	s.splitter.Reset()
	s.state = chatstream.StreamStateCancelled
}

func (s *stream) fail(err error) {
	if s.abort != nil {
		s.abort()
	}
	s.splitter.Reset()
	s.state = chatstream.StreamStateErrored
	s.err = fmt.Errorf("ndjson: %w", &chatstream.ReadError{Err: err})
}

func excerpt(s string) string {
	if len(s) <= maxTailLog {
		return s
	}
	return s[:maxTailLog] + "..."
}
