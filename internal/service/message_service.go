package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"lounge-chat/internal/domain"
	"lounge-chat/internal/observability"
	"lounge-chat/internal/ratelimit"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps how many messages a single history fetch returns.
const DefaultHistoryLimit = 200

// NewMessageEvent is the event name pushed to WebSocket observers when a
// message has been persisted.
const NewMessageEvent = "messages:new"

// Broadcaster fans a payload out to every connected observer. Delivery is
// fire-and-forget from the pipeline's point of view.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// PostMessageInput carries the raw, undecoded field values of a post
// request. Fields are `any` so type errors surface as validation failures
// rather than decode failures.
type PostMessageInput struct {
	Text        any
	Username    any
	DisplayName any
}

// MessageEvent is the envelope broadcast to observers.
type MessageEvent struct {
	Event   string            `json:"event"`
	Message domain.MessageDTO `json:"message"`
}

// MessageService runs the ingestion pipeline: validate, rate-check,
// persist, then broadcast.
type MessageService struct {
	repo        domain.MessageRepository
	limiter     *ratelimit.Limiter
	broadcaster Broadcaster
	historyMax  int
}

func NewMessageService(repo domain.MessageRepository, limiter *ratelimit.Limiter, broadcaster Broadcaster) *MessageService {
	return &MessageService{
		repo:        repo,
		limiter:     limiter,
		broadcaster: broadcaster,
		historyMax:  DefaultHistoryLimit,
	}
}

// PostMessage validates and persists one inbound message, then broadcasts
// it. clientIP scopes the rate-limit identity together with the username.
//
// Failures before persistence (*domain.ValidationError, ErrRateLimited)
// leave no trace; a persistence failure is returned wrapped and nothing is
// broadcast. A broadcast problem never fails the request.
func (s *MessageService) PostMessage(ctx context.Context, clientIP string, in PostMessageInput) (*domain.Message, error) {
	text, err := ValidateText(in.Text)
	if err != nil {
		return nil, err
	}

	username, err := ValidateUsername(in.Username)
	if err != nil {
		return nil, err
	}

	displayName, err := ValidateDisplayName(in.DisplayName, username)
	if err != nil {
		return nil, err
	}

	if !s.limiter.Check(clientKey(clientIP, username)) {
		observability.RateLimitRejections.Inc()
		return nil, domain.ErrRateLimited
	}

	msg := &domain.Message{
		ID:          uuid.NewString(),
		Text:        text,
		Username:    username,
		DisplayName: displayName,
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}
	observability.MessagesIngested.Inc()

	s.emit(msg)

	return msg, nil
}

// RecentMessages returns up to limit recent messages ordered oldest first.
// Non-positive limits fall back to the default cap; over-large limits are
// clamped. The read path is neither validated further nor rate-limited.
func (s *MessageService) RecentMessages(ctx context.Context, limit int) ([]*domain.Message, error) {
	if limit <= 0 || limit > s.historyMax {
		limit = s.historyMax
	}
	return s.repo.GetRecent(ctx, limit)
}

// emit hands the persisted message to the broadcaster. Runs strictly after
// a successful Create; errors are logged, never propagated.
func (s *MessageService) emit(msg *domain.Message) {
	payload, err := json.Marshal(MessageEvent{
		Event:   NewMessageEvent,
		Message: msg.DTO(),
	})
	if err != nil {
		slog.Error("failed to marshal broadcast event",
			slog.String("error", err.Error()),
			slog.String("message_id", msg.ID))
		return
	}
	s.broadcaster.Broadcast(payload)
}

// clientKey derives the rate-limit identity from the sender's network
// origin and validated username. Changing either starts a fresh bucket.
func clientKey(clientIP, username string) string {
	return clientIP + ":" + username
}
