package json

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/fwojciec/chatstream"
)

// Interface compliance check.
var _ chatstream.Store = (*Store)(nil)

// Store implements [chatstream.Store] on top of a single JSON file holding
// the whole collection. Every write rewrites the file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by the file at path. The file is created
// on first save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Conversations returns every stored conversation in insertion order.
func (s *Store) Conversations(context.Context) ([]chatstream.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Conversation returns the conversation with the given id.
func (s *Store) Conversation(_ context.Context, id string) (chatstream.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	convs, err := s.load()
	if err != nil {
		return chatstream.Conversation{}, err
	}
	i := slices.IndexFunc(convs, func(c chatstream.Conversation) bool { return c.ID == id })
	if i < 0 {
		return chatstream.Conversation{}, fmt.Errorf("%q: %w", id, chatstream.ErrConversationNotFound)
	}
	return convs[i], nil
}

// SaveConversation replaces the conversation with the same id, or appends
// c when none exists.
func (s *Store) SaveConversation(_ context.Context, c chatstream.Conversation) error {
	if c.ID == "" {
		return fmt.Errorf("conversation id is required: %w", chatstream.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	convs, err := s.load()
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(convs, func(x chatstream.Conversation) bool { return x.ID == c.ID }); i >= 0 {
		convs[i] = c
	} else {
		convs = append(convs, c)
	}
	return Save(s.path, convs)
}

// DeleteConversation removes the conversation with the given id.
func (s *Store) DeleteConversation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	convs, err := s.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(convs, func(c chatstream.Conversation) bool { return c.ID == id })
	if i < 0 {
		return fmt.Errorf("%q: %w", id, chatstream.ErrConversationNotFound)
	}
	return Save(s.path, slices.Delete(convs, i, i+1))
}

func (s *Store) load() ([]chatstream.Conversation, error) {
	convs, err := Load(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return convs, err
}
