package chatstream

import (
	"fmt"
	"strings"
)

// Validate checks universal constraints on Request.
// Backend implementations may apply additional backend-specific validation.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("request has no messages: %w", ErrValidation)
	}
	for i, msg := range r.Messages {
		if err := ValidateMessage(msg); err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != RoleUser {
		return fmt.Errorf("last message must have role %q, got %q: %w", RoleUser, last.Role, ErrValidation)
	}
	if strings.TrimSpace(last.Content) == "" {
		return fmt.Errorf("last message is empty: %w", ErrValidation)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g: %w", r.Temperature, ErrValidation)
	}
	return nil
}

// ValidateMessage checks that a message carries a known role.
func ValidateMessage(msg Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("unknown role %q: %w", msg.Role, ErrValidation)
	}
	return nil
}
