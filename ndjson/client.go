// Package ndjson implements chatstream.Backend for services that answer a
// chat request with a newline-delimited JSON event stream.
package ndjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fwojciec/chatstream"
)

// Interface compliance check.
var _ chatstream.Backend = (*Client)(nil)

const (
	defaultChunkSize = 4096
	maxErrorBody     = 512
)

// Client implements [chatstream.Backend] over HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
	chunkSize  int
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used by the client and its streams.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithChunkSize sets the size of each pull from the response body.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// New creates a [Client] that posts requests to endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
		chunkSize:  defaultChunkSize,
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With(slog.String("module", "ndjson"))
	return c
}

// Stream posts req and returns a [chatstream.Stream] over the response body.
// The request context is cancelled when signal is observed, when the stream
// is closed early, or when it reaches a terminal state.
func (c *Client) Stream(ctx context.Context, req chatstream.Request, signal *chatstream.Signal) (chatstream.Stream, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("ndjson: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("ndjson: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ndjson: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ndjson: %w", &chatstream.TransportError{Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		return nil, fmt.Errorf("ndjson: %w", parseHTTPError(resp))
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		cancel()
		return nil, fmt.Errorf("ndjson: %w", &chatstream.TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        chatstream.ErrNoBody,
		})
	}

	c.logger.Debug("Stream opened",
		slog.String("endpoint", c.endpoint),
		slog.String("contentType", resp.Header.Get("Content-Type")))

	start := chatstream.Draft{
		Messages:             req.Messages,
		RemoteConversationID: req.ConversationID,
	}
	return NewStream(resp.Body, start,
		WithSignal(signal),
		WithAbort(cancel),
		WithContext(ctx),
		WithStreamLogger(c.logger),
		WithReadSize(c.chunkSize),
	), nil
}

func parseHTTPError(resp *http.Response) error {
	te := &chatstream.TransportError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		te.Err = fmt.Errorf("failed to read body: %w", err)
		return te
	}
	te.Body = strings.TrimSpace(string(body))
	return te
}

// errLoggerKey is the attribute key under which errors are logged.
const errLoggerKey = "err"
