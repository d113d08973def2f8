// Package json persists conversations as a versioned JSON document.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/chatstream"
)

// currentVersion is the envelope version written by MarshalConversations.
const currentVersion = 1

// envelope is the v1 wire format for a persisted conversation collection.
type envelope struct {
	Version       int               `json:"version"`
	Conversations []conversationDTO `json:"conversations"`
}

// conversationDTO is the JSON representation of a Conversation. Model keys
// are credentials and are never written.
type conversationDTO struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Messages             []messageDTO `json:"messages"`
	Model                modelDTO     `json:"model"`
	Prompt               string       `json:"prompt"`
	Temperature          float64      `json:"temperature"`
	FolderID             *string      `json:"folder_id,omitempty"`
	RemoteConversationID *string      `json:"conversation_id,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type modelDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	MaxLength  int    `json:"max_length,omitempty"`
	TokenLimit int    `json:"token_limit,omitempty"`
}

// MarshalConversations serializes conversations to JSON in v1 envelope
// format.
func MarshalConversations(convs []chatstream.Conversation) ([]byte, error) {
	env := envelope{
		Version:       currentVersion,
		Conversations: make([]conversationDTO, len(convs)),
	}
	for i, c := range convs {
		env.Conversations[i] = marshalConversation(c)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversations deserializes conversations from JSON in v1
// envelope format.
func UnmarshalConversations(data []byte) ([]chatstream.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != currentVersion {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	convs := make([]chatstream.Conversation, len(env.Conversations))
	for i, dto := range env.Conversations {
		c, err := unmarshalConversation(dto)
		if err != nil {
			return nil, fmt.Errorf("conversation %d: %w", i, err)
		}
		convs[i] = c
	}
	return convs, nil
}

// MarshalConversation serializes a single conversation without an
// envelope. Stores that version their own layout use it per record.
func MarshalConversation(c chatstream.Conversation) ([]byte, error) {
	return json.Marshal(marshalConversation(c))
}

// UnmarshalConversation deserializes a record written by
// MarshalConversation.
func UnmarshalConversation(data []byte) (chatstream.Conversation, error) {
	var dto conversationDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return chatstream.Conversation{}, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return unmarshalConversation(dto)
}

// Save writes conversations to a JSON file, creating parent directories as
// needed. The file is replaced atomically.
func Save(path string, convs []chatstream.Conversation) error {
	data, err := MarshalConversations(convs)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads conversations from a JSON file.
func Load(path string) ([]chatstream.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalConversations(data)
}

func marshalConversation(c chatstream.Conversation) conversationDTO {
	dto := conversationDTO{
		ID:          c.ID,
		Name:        c.Name,
		Messages:    make([]messageDTO, len(c.Messages)),
		Prompt:      c.Prompt,
		Temperature: c.Temperature,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Model: modelDTO{
			ID:         c.Model.ID,
			Name:       c.Model.Name,
			MaxLength:  c.Model.MaxLength,
			TokenLimit: c.Model.TokenLimit,
		},
	}
	for i, m := range c.Messages {
		dto.Messages[i] = messageDTO{Role: string(m.Role), Content: m.Content}
	}
	if c.FolderID != "" {
		dto.FolderID = &c.FolderID
	}
	if c.RemoteConversationID != "" {
		dto.RemoteConversationID = &c.RemoteConversationID
	}
	return dto
}

func unmarshalConversation(dto conversationDTO) (chatstream.Conversation, error) {
	if dto.ID == "" {
		return chatstream.Conversation{}, fmt.Errorf("missing id")
	}
	msgs := make([]chatstream.Message, len(dto.Messages))
	for i, m := range dto.Messages {
		msg := chatstream.Message{Role: chatstream.Role(m.Role), Content: m.Content}
		if err := chatstream.ValidateMessage(msg); err != nil {
			return chatstream.Conversation{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	c := chatstream.Conversation{
		ID:          dto.ID,
		Name:        dto.Name,
		Messages:    msgs,
		Prompt:      dto.Prompt,
		Temperature: dto.Temperature,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
		Model: chatstream.Model{
			ID:         dto.Model.ID,
			Name:       dto.Model.Name,
			MaxLength:  dto.Model.MaxLength,
			TokenLimit: dto.Model.TokenLimit,
		},
	}
	if dto.FolderID != nil {
		c.FolderID = *dto.FolderID
	}
	if dto.RemoteConversationID != nil {
		c.RemoteConversationID = *dto.RemoteConversationID
	}
	return c, nil
}
