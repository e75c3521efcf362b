package domain

import (
	"context"
	"time"
)

// Message represents a chat message. DisplayName is empty when the sender
// never provided one; normalization substitutes the username on the way out.
type Message struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// MessageDTO is the wire shape returned to HTTP clients and pushed to
// WebSocket observers.
type MessageDTO struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`
}

// DTO normalizes a stored message into its external shape, falling back to
// the username when no display name was stored.
func (m *Message) DTO() MessageDTO {
	displayName := m.DisplayName
	if displayName == "" {
		displayName = m.Username
	}
	return MessageDTO{
		ID:          m.ID,
		Text:        m.Text,
		Username:    m.Username,
		DisplayName: displayName,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	GetRecent(ctx context.Context, limit int) ([]*Message, error)
}
