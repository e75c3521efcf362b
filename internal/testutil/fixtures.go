package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"lounge-chat/internal/domain"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// nextID generates a unique ID for test fixtures
func nextID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, idCounter.Add(1))
}

// MessageOptions allows customizing message fixture creation
type MessageOptions struct {
	ID          string
	Text        string
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// NewTestMessage creates a test message with sensible defaults
// Pass options to override specific fields
func NewTestMessage(opts ...func(*MessageOptions)) *domain.Message {
	o := &MessageOptions{
		ID:       nextID("msg"),
		Text:     "hello there",
		Username: fmt.Sprintf("user%d", idCounter.Load()),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	return &domain.Message{
		ID:          o.ID,
		Text:        o.Text,
		Username:    o.Username,
		DisplayName: o.DisplayName,
		CreatedAt:   o.CreatedAt,
	}
}

// WithText overrides the message text
func WithText(text string) func(*MessageOptions) {
	return func(o *MessageOptions) { o.Text = text }
}

// WithUsername overrides the sender username
func WithUsername(username string) func(*MessageOptions) {
	return func(o *MessageOptions) { o.Username = username }
}

// WithDisplayName overrides the sender display name
func WithDisplayName(displayName string) func(*MessageOptions) {
	return func(o *MessageOptions) { o.DisplayName = displayName }
}

// WithCreatedAt overrides the persistence timestamp
func WithCreatedAt(t time.Time) func(*MessageOptions) {
	return func(o *MessageOptions) { o.CreatedAt = t }
}
