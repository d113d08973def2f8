package mock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_Delegates(t *testing.T) {
	t.Parallel()

	want := &mock.Stream{}
	var gotReq chatstream.Request
	b := &mock.Backend{
		StreamFn: func(_ context.Context, req chatstream.Request, _ *chatstream.Signal) (chatstream.Stream, error) {
			gotReq = req
			return want, nil
		},
	}
	s, err := b.Stream(context.Background(), chatstream.Request{Prompt: "p"}, nil)
	require.NoError(t, err)
	assert.Same(t, want, s)
	assert.Equal(t, "p", gotReq.Prompt)
}

func TestStore_Delegates(t *testing.T) {
	t.Parallel()

	var deleted string
	s := &mock.Store{
		ConversationsFn: func(context.Context) ([]chatstream.Conversation, error) {
			return []chatstream.Conversation{{ID: "a"}}, nil
		},
		ConversationFn: func(_ context.Context, id string) (chatstream.Conversation, error) {
			return chatstream.Conversation{ID: id}, nil
		},
		SaveConversationFn: func(context.Context, chatstream.Conversation) error {
			return assert.AnError
		},
		DeleteConversationFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	ctx := context.Background()

	convs, err := s.Conversations(ctx)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
	c, err := s.Conversation(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", c.ID)
	assert.ErrorIs(t, s.SaveConversation(ctx, c), assert.AnError)
	require.NoError(t, s.DeleteConversation(ctx, "y"))
	assert.Equal(t, "y", deleted)
}

func TestSnapshots(t *testing.T) {
	t.Parallel()

	start := chatstream.Draft{RemoteConversationID: "start"}
	d1 := chatstream.Draft{RemoteConversationID: "one"}
	d2 := chatstream.Draft{RemoteConversationID: "two"}

	t.Run("replays then ends", func(t *testing.T) {
		t.Parallel()
		s := mock.Snapshots(start, chatstream.StreamStateCompleted, nil, d1, d2)
		assert.Equal(t, chatstream.StreamStateIdle, s.State())
		assert.Equal(t, start, s.Draft())

		got, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, d1, got)
		assert.Equal(t, chatstream.StreamStateStreaming, s.State())

		got, err = s.Next()
		require.NoError(t, err)
		assert.Equal(t, d2, got)

		_, err = s.Next()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, chatstream.StreamStateCompleted, s.State())
		assert.Equal(t, d2, s.Draft())
		assert.NoError(t, s.Close())
	})

	t.Run("errored final state returns the error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		s := mock.Snapshots(start, chatstream.StreamStateErrored, boom)
		_, err := s.Next()
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, chatstream.StreamStateErrored, s.State())
	})
}
