package chatstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"
)

// errLoggerKey is the attribute key under which errors are logged.
const errLoggerKey = "err"

// Exchange orchestrates one send on a conversation: it builds the request,
// drains the backend stream while publishing snapshots, and persists the
// finished conversation.
type Exchange struct {
	backend Backend
	store   Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewExchange creates an Exchange. A nil store skips persistence and a nil
// logger discards log output.
func NewExchange(backend Backend, store Store, logger *slog.Logger) *Exchange {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exchange{
		backend: backend,
		store:   store,
		logger:  logger.With(slog.String("module", "exchange")),
		now:     time.Now,
	}
}

// SendOption configures a single Send invocation.
type SendOption func(*sendConfig)

type sendConfig struct {
	onSnapshot  func(Draft)
	deleteCount int
	user        string
}

// WithSnapshotHandler sets a callback that receives the starting draft and
// then one snapshot per reduced frame, in stream order and synchronously.
// If nil or not set, snapshots are discarded.
func WithSnapshotHandler(h func(Draft)) SendOption {
	return func(c *sendConfig) {
		c.onSnapshot = h
	}
}

// WithDeleteCount drops the last n messages of the conversation before the
// new message is appended, which is how a reply is regenerated or an edited
// message is resent.
func WithDeleteCount(n int) SendOption {
	return func(c *sendConfig) {
		c.deleteCount = n
	}
}

// WithUser sets the end-user identifier forwarded to the backend.
func WithUser(user string) SendOption {
	return func(c *sendConfig) {
		c.user = user
	}
}

// Outcome is the terminal result of a Send.
type Outcome struct {
	Draft Draft
	State StreamState
}

// Send appends msg to conv and streams the backend's answer.
//
// On a Completed or Cancelled stream the final draft is applied to conv,
// which is then saved to the store. On failure conv is left untouched; the
// returned Outcome still carries the last draft that was published so the
// caller can decide whether to keep it.
func (e *Exchange) Send(ctx context.Context, conv *Conversation, msg Message, signal *Signal, opts ...SendOption) (Outcome, error) {
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	working := *conv
	working.Messages = slices.Clone(conv.Messages)
	working.Truncate(cfg.deleteCount)
	working.Messages = append(working.Messages, msg)
	if len(working.Messages) == 1 && working.Unnamed() {
		working.Name = DefaultName(msg.Content)
	}

	req := NewRequest(working)
	req.User = cfg.user
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	logger := e.logger.With(slog.String("conversation", working.ID))
	start := working.Draft()
	cfg.publish(start)

	logger.Debug("Opening stream",
		slog.String("model", req.Model.ID),
		slog.Int("messages", len(req.Messages)),
		slog.Bool("resume", req.ConversationID != ""))

	stream, err := e.backend.Stream(ctx, req, signal)
	if err != nil {
		logger.Error("Failed to open stream", slog.String(errLoggerKey, err.Error()))
		return Outcome{Draft: start, State: StreamStateErrored}, err
	}
	defer stream.Close()

	// Drain the stream, forwarding snapshots to the handler if set.
	var streamErr error
	for {
		d, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		cfg.publish(d)
	}

	out := Outcome{Draft: stream.Draft(), State: stream.State()}
	if streamErr != nil {
		logger.Error("Stream failed", slog.String(errLoggerKey, streamErr.Error()))
		return out, streamErr
	}

	logger.Debug("Stream finished",
		slog.String("state", out.State.String()),
		slog.String("remoteConversationID", out.Draft.RemoteConversationID))

	now := e.now()
	working.Apply(out.Draft)
	if working.CreatedAt.IsZero() {
		working.CreatedAt = now
	}
	working.UpdatedAt = now

	if e.store != nil {
		// The caller's context may already be done after an interrupt.
		if err := e.store.SaveConversation(context.WithoutCancel(ctx), working); err != nil {
			logger.Error("Failed to save conversation", slog.String(errLoggerKey, err.Error()))
			return out, fmt.Errorf("save conversation: %w", err)
		}
	}

	*conv = working
	return out, nil
}

func (c *sendConfig) publish(d Draft) {
	if c.onSnapshot != nil {
		c.onSnapshot(d)
	}
}
