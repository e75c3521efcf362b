package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"lounge-chat/internal/domain"
)

// MessageRepository implements domain.MessageRepository for PostgreSQL
type MessageRepository struct {
	db *sql.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message. The id must already be assigned by the
// caller; created_at is assigned by the database and scanned back.
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, text, username, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		message.ID,
		message.Text,
		message.Username,
		nullableString(message.DisplayName),
	).Scan(&message.CreatedAt)

	if err != nil {
		if isUniqueViolation(err, "messages_pkey") {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent messages, returned oldest first.
func (r *MessageRepository) GetRecent(ctx context.Context, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, text, username, display_name, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0, limit)
	for rows.Next() {
		msg := &domain.Message{}
		var displayName sql.NullString
		err := rows.Scan(
			&msg.ID,
			&msg.Text,
			&msg.Username,
			&displayName,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.DisplayName = displayName.String
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	// Reverse the slice to get oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// nullableString stores empty strings as NULL so legacy rows and omitted
// display names look the same on the way back out.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
