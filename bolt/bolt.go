// Package bolt implements chatstream.Store on a bbolt key-value file.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/chatstream"
	chatjson "github.com/fwojciec/chatstream/json"
	bolt "go.etcd.io/bbolt"
)

// Interface compliance check.
var _ chatstream.Store = (*Store)(nil)

var (
	// conversationsBucket maps an 8-byte big-endian sequence number to a
	// JSON record, so iteration follows insertion order.
	conversationsBucket = []byte("conversations")
	// idsBucket maps a conversation id to its sequence key.
	idsBucket = []byte("conversation_ids")
)

// Store persists conversations in a bbolt database. Each save runs in its
// own read-write transaction, so a conversation is replaced atomically.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the database at path and initializes the
// required buckets. The file is created with 0600 permissions. Open fails
// after a second if another process holds the database lock.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("bolt: create dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(conversationsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(idsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bolt: create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conversations returns every stored conversation in insertion order.
func (s *Store) Conversations(context.Context) ([]chatstream.Conversation, error) {
	var convs []chatstream.Conversation
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(conversationsBucket).ForEach(func(_, v []byte) error {
			c, err := chatjson.UnmarshalConversation(v)
			if err != nil {
				return err
			}
			convs = append(convs, c)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}
	return convs, nil
}

// Conversation returns the conversation with the given id.
func (s *Store) Conversation(_ context.Context, id string) (chatstream.Conversation, error) {
	var c chatstream.Conversation
	err := s.db.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(idsBucket).Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%q: %w", id, chatstream.ErrConversationNotFound)
		}
		v := tx.Bucket(conversationsBucket).Get(key)
		if v == nil {
			return fmt.Errorf("%q: %w", id, chatstream.ErrConversationNotFound)
		}
		var err error
		c, err = chatjson.UnmarshalConversation(v)
		return err
	})
	if err != nil {
		return chatstream.Conversation{}, fmt.Errorf("bolt: %w", err)
	}
	return c, nil
}

// SaveConversation replaces the record of an existing conversation in
// place, or appends a new record under the next sequence number.
func (s *Store) SaveConversation(_ context.Context, c chatstream.Conversation) error {
	if c.ID == "" {
		return fmt.Errorf("bolt: conversation id is required: %w", chatstream.ErrValidation)
	}
	v, err := chatjson.MarshalConversation(c)
	if err != nil {
		return fmt.Errorf("bolt: marshal conversation: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		convs := tx.Bucket(conversationsBucket)
		ids := tx.Bucket(idsBucket)

		key := ids.Get([]byte(c.ID))
		if key != nil {
			key = append([]byte(nil), key...)
		} else {
			seq, err := convs.NextSequence()
			if err != nil {
				return fmt.Errorf("failed to get next sequence: %w", err)
			}
			key = sequenceKey(seq)
			if err := ids.Put([]byte(c.ID), key); err != nil {
				return err
			}
		}
		return convs.Put(key, v)
	})
	if err != nil {
		return fmt.Errorf("bolt: %w", err)
	}
	return nil
}

// DeleteConversation removes the conversation with the given id.
func (s *Store) DeleteConversation(_ context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(idsBucket)
		key := ids.Get([]byte(id))
		if key == nil {
			return fmt.Errorf("%q: %w", id, chatstream.ErrConversationNotFound)
		}
		// Copy before mutating the bucket that owns the value.
		key = append([]byte(nil), key...)
		if err := ids.Delete([]byte(id)); err != nil {
			return err
		}
		return tx.Bucket(conversationsBucket).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("bolt: %w", err)
	}
	return nil
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
