package mock

import (
	"io"

	"github.com/fwojciec/chatstream"
)

// Snapshots returns a Stream that replays drafts in order and then ends in
// the given terminal state. When final is StreamStateErrored, Next returns
// err after the last draft; otherwise it returns io.EOF. Close is a no-op.
func Snapshots(start chatstream.Draft, final chatstream.StreamState, err error, drafts ...chatstream.Draft) *Stream {
	current := start
	state := chatstream.StreamStateIdle
	i := 0
	return &Stream{
		NextFn: func() (chatstream.Draft, error) {
			if i < len(drafts) {
				current = drafts[i]
				i++
				state = chatstream.StreamStateStreaming
				return current, nil
			}
			state = final
			if final == chatstream.StreamStateErrored {
				return current, err
			}
			return current, io.EOF
		},
		StateFn: func() chatstream.StreamState { return state },
		DraftFn: func() chatstream.Draft { return current },
		CloseFn: func() error { return nil },
	}
}
