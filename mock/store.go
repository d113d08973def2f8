package mock

import (
	"context"

	"github.com/fwojciec/chatstream"
)

// Interface compliance check.
var _ chatstream.Store = (*Store)(nil)

// Store is a test double for chatstream.Store.
type Store struct {
	ConversationsFn      func(ctx context.Context) ([]chatstream.Conversation, error)
	ConversationFn       func(ctx context.Context, id string) (chatstream.Conversation, error)
	SaveConversationFn   func(ctx context.Context, c chatstream.Conversation) error
	DeleteConversationFn func(ctx context.Context, id string) error
}

// Conversations delegates to ConversationsFn.
func (s *Store) Conversations(ctx context.Context) ([]chatstream.Conversation, error) {
	return s.ConversationsFn(ctx)
}

// Conversation delegates to ConversationFn.
func (s *Store) Conversation(ctx context.Context, id string) (chatstream.Conversation, error) {
	return s.ConversationFn(ctx, id)
}

// SaveConversation delegates to SaveConversationFn.
func (s *Store) SaveConversation(ctx context.Context, c chatstream.Conversation) error {
	return s.SaveConversationFn(ctx, c)
}

// DeleteConversation delegates to DeleteConversationFn.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	return s.DeleteConversationFn(ctx, id)
}
