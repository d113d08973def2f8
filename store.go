package chatstream

import "context"

// Store persists conversations. SaveConversation merges by ID: an existing
// conversation is replaced in place, a new one is appended to the
// collection.
type Store interface {
	Conversations(ctx context.Context) ([]Conversation, error)
	Conversation(ctx context.Context, id string) (Conversation, error)
	SaveConversation(ctx context.Context, c Conversation) error
	DeleteConversation(ctx context.Context, id string) error
}
