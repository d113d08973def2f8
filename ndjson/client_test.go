package ndjson_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/ndjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() chatstream.Request {
	return chatstream.Request{
		Model:          chatstream.Model{ID: "m1", Name: "Model One", MaxLength: 1000, TokenLimit: 400, Key: "model-key"},
		Messages:       []chatstream.Message{chatstream.UserMessage("hi")},
		Key:            "model-key",
		Prompt:         "Be brief.",
		Temperature:    0.5,
		ConversationID: "remote-1",
		User:           "u-1",
	}
}

// writeFrames writes each frame followed by a newline, flushing after each.
func writeFrames(w http.ResponseWriter, frames ...string) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	for _, f := range frames {
		fmt.Fprintln(w, f)
		w.(http.Flusher).Flush()
	}
}

func TestClient_Stream(t *testing.T) {
	t.Parallel()

	t.Run("posts the request and streams snapshots", func(t *testing.T) {
		t.Parallel()

		bodies := make(chan map[string]any, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "application/x-ndjson", r.Header.Get("Accept"))
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			bodies <- body
			writeFrames(w, `{"answer":"Hel"}`, `{"answer":"lo"}`, `{"answer":" world","conversation_id":"c1"}`)
		}))
		t.Cleanup(srv.Close)

		c := ndjson.New(srv.URL, ndjson.WithChunkSize(5))
		s, err := c.Stream(context.Background(), validRequest(), nil)
		require.NoError(t, err)
		defer s.Close()

		snaps, err := drain(s)
		require.ErrorIs(t, err, io.EOF)
		assert.Len(t, snaps, 3)
		assert.Equal(t, chatstream.StreamStateCompleted, s.State())
		assert.Equal(t, []chatstream.Message{
			chatstream.UserMessage("hi"),
			chatstream.AssistantMessage("Hello world"),
		}, s.Draft().Messages)
		assert.Equal(t, "c1", s.Draft().RemoteConversationID)

		body := <-bodies
		assert.Equal(t, "model-key", body["key"])
		assert.Equal(t, "Be brief.", body["prompt"])
		assert.Equal(t, 0.5, body["temperature"])
		assert.Equal(t, "remote-1", body["conversationID"])
		assert.Equal(t, "u-1", body["user"])
		assert.Equal(t, []any{map[string]any{"role": "user", "content": "hi"}}, body["messages"])
		model, ok := body["model"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "m1", model["id"])
		assert.NotContains(t, model, "key")
	})

	t.Run("non-2xx status is a transport error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, "  boom\n")
		}))
		t.Cleanup(srv.Close)

		_, err := ndjson.New(srv.URL).Stream(context.Background(), validRequest(), nil)
		var te *chatstream.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
		assert.Equal(t, "boom", te.Body)
	})

	t.Run("error body excerpt is bounded", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, strings.Repeat("x", 4096))
		}))
		t.Cleanup(srv.Close)

		_, err := ndjson.New(srv.URL).Stream(context.Background(), validRequest(), nil)
		var te *chatstream.TransportError
		require.ErrorAs(t, err, &te)
		assert.Len(t, te.Body, 512)
	})

	t.Run("response without body is a transport error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		t.Cleanup(srv.Close)

		_, err := ndjson.New(srv.URL).Stream(context.Background(), validRequest(), nil)
		var te *chatstream.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusNoContent, te.StatusCode)
		assert.ErrorIs(t, err, chatstream.ErrNoBody)
	})

	t.Run("unreachable endpoint is a transport error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := ndjson.New(url).Stream(context.Background(), validRequest(), nil)
		var te *chatstream.TransportError
		require.ErrorAs(t, err, &te)
		assert.Zero(t, te.StatusCode)
		assert.Error(t, te.Err)
	})

	t.Run("invalid request is rejected before sending", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("request must not be sent")
		}))
		t.Cleanup(srv.Close)

		req := validRequest()
		req.Messages = append(req.Messages, chatstream.AssistantMessage("x"))
		_, err := ndjson.New(srv.URL).Stream(context.Background(), req, nil)
		assert.ErrorIs(t, err, chatstream.ErrValidation)
	})

	t.Run("signal stops a live stream and aborts the request", func(t *testing.T) {
		t.Parallel()

		aborted := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeFrames(w, `{"answer":"first"}`)
			<-r.Context().Done()
			close(aborted)
		}))
		t.Cleanup(srv.Close)

		sig := &chatstream.Signal{}
		s, err := ndjson.New(srv.URL).Stream(context.Background(), validRequest(), sig)
		require.NoError(t, err)
		defer s.Close()

		d, err := s.Next()
		require.NoError(t, err)
		assert.Equal(t, "first", assistantText(t, d))

		sig.Stop()
		_, err = s.Next()
		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, chatstream.StreamStateCancelled, s.State())
		assert.Equal(t, "first", assistantText(t, s.Draft()))

		select {
		case <-aborted:
		case <-time.After(5 * time.Second):
			t.Fatal("server request was not aborted")
		}
	})

	t.Run("context cancellation unblocks a stalled read", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeFrames(w, `{"answer":"first"}`)
			<-r.Context().Done()
		}))
		t.Cleanup(srv.Close)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s, err := ndjson.New(srv.URL).Stream(ctx, validRequest(), nil)
		require.NoError(t, err)
		defer s.Close()

		_, err = s.Next()
		require.NoError(t, err)

		time.AfterFunc(50*time.Millisecond, cancel)
		_, err = s.Next()
		require.ErrorIs(t, err, io.EOF)
		assert.Equal(t, chatstream.StreamStateCancelled, s.State())
	})
}
