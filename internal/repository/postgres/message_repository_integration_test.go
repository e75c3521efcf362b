//go:build integration
// +build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"lounge-chat/internal/domain"
	"lounge-chat/internal/repository/postgres"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const messagesSchema = `
CREATE TABLE IF NOT EXISTS messages (
	id           UUID PRIMARY KEY,
	text         TEXT NOT NULL,
	username     VARCHAR(64) NOT NULL,
	display_name VARCHAR(64),
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at DESC);
`

// setupPostgres starts a PostgreSQL container and returns a database connection
func setupPostgres(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	_, err = db.Exec(messagesSchema)
	require.NoError(t, err, "failed to apply schema")

	cleanup := func() {
		db.Close()
		_ = container.Terminate(ctx)
	}
	return db, cleanup
}

func TestMessageRepository_Integration_CreateAndGetRecent(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	repo := postgres.NewMessageRepository(db)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		msg := &domain.Message{
			ID:          uuid.NewString(),
			Text:        fmt.Sprintf("message %d", i),
			Username:    "alice",
			DisplayName: "Alice",
		}
		require.NoError(t, repo.Create(ctx, msg))
		assert.False(t, msg.CreatedAt.IsZero(), "created_at assigned at persistence time")
		ids = append(ids, msg.ID)
	}

	messages, err := repo.GetRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Oldest first, and strictly the three most recent rows.
	assert.Equal(t, ids[2], messages[0].ID)
	assert.Equal(t, ids[4], messages[2].ID)
	for i := 1; i < len(messages); i++ {
		assert.False(t, messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestMessageRepository_Integration_DuplicateID(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	repo := postgres.NewMessageRepository(db)
	ctx := context.Background()

	msg := &domain.Message{ID: uuid.NewString(), Text: "hi", Username: "bob"}
	require.NoError(t, repo.Create(ctx, msg))

	dup := &domain.Message{ID: msg.ID, Text: "again", Username: "bob"}
	err := repo.Create(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestMessageRepository_Integration_NullDisplayName(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	repo := postgres.NewMessageRepository(db)
	ctx := context.Background()

	msg := &domain.Message{ID: uuid.NewString(), Text: "hi", Username: "carol"}
	require.NoError(t, repo.Create(ctx, msg))

	messages, err := repo.GetRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Empty(t, messages[0].DisplayName)
	assert.Equal(t, "carol", messages[0].DTO().DisplayName)
}
