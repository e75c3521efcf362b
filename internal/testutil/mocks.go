// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the lounge-chat application.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"lounge-chat/internal/domain"
)

// ErrMockFailure is a generic error for simulating collaborator failures.
var ErrMockFailure = errors.New("mock: simulated failure")

// MockMessageRepository implements domain.MessageRepository for testing
type MockMessageRepository struct {
	mu sync.Mutex

	// Function overrides - set these to customize behavior
	CreateFunc    func(ctx context.Context, message *domain.Message) error
	GetRecentFunc func(ctx context.Context, limit int) ([]*domain.Message, error)

	// In-memory storage for simple tests, newest last.
	Messages []*domain.Message

	clock time.Time
}

// NewMockMessageRepository creates a MockMessageRepository with an empty store
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Messages {
		if existing.ID == message.ID {
			return domain.ErrDuplicateID
		}
	}

	// Monotonic timestamps in persistence-call order.
	m.clock = m.clock.Add(time.Millisecond)
	message.CreatedAt = m.clock

	stored := *message
	m.Messages = append(m.Messages, &stored)
	return nil
}

func (m *MockMessageRepository) GetRecent(ctx context.Context, limit int) ([]*domain.Message, error) {
	if m.GetRecentFunc != nil {
		return m.GetRecentFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	start := 0
	if len(m.Messages) > limit {
		start = len(m.Messages) - limit
	}

	result := make([]*domain.Message, 0, limit)
	for _, msg := range m.Messages[start:] {
		copied := *msg
		result = append(result, &copied)
	}
	return result, nil
}

// Len returns the number of stored messages.
func (m *MockMessageRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages)
}

// MockBroadcaster records every payload handed to it.
type MockBroadcaster struct {
	mu       sync.Mutex
	Payloads [][]byte
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (b *MockBroadcaster) Broadcast(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Payloads = append(b.Payloads, payload)
}

// Emitted returns a copy of all broadcast payloads.
func (b *MockBroadcaster) Emitted() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.Payloads))
	copy(out, b.Payloads)
	return out
}
