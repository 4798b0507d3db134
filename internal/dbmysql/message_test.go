package dbmysql_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legado/internal/common"
	"legado/internal/dbmysql"
	"legado/internal/testutil"
)

func createMessage(t *testing.T, repo *dbmysql.MessageRepository, profileID, status string) *dbmysql.Message {
	t.Helper()

	msg := &dbmysql.Message{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Type:      string(common.MessageTypeText),
		Status:    status,
		Body:      "hello",
	}
	require.NoError(t, repo.Create(context.Background(), msg))
	return msg
}

func TestMessageRepositoryByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewMessageRepository(db)
	ctx := context.Background()

	msg := createMessage(t, repo, "profile-1", string(common.StatusDraft))

	got, err := repo.ByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ID, got.ID)
	assert.Equal(t, "hello", got.Body)

	_, err = repo.ByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMessageRepositoryMarkScheduled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewMessageRepository(db)
	ctx := context.Background()

	msg := createMessage(t, repo, "profile-1", string(common.StatusDraft))

	require.NoError(t, repo.MarkScheduled(ctx, msg.ID, "profile-1"))

	got, err := repo.ByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusScheduled), got.Status)

	// Scheduling a non-draft, or someone else's draft, hits the guard.
	assert.ErrorIs(t, repo.MarkScheduled(ctx, msg.ID, "profile-1"), common.ErrValidation)

	other := createMessage(t, repo, "profile-1", string(common.StatusDraft))
	assert.ErrorIs(t, repo.MarkScheduled(ctx, other.ID, "profile-2"), common.ErrValidation)
}

func TestMessageRepositoryMarkDeliveredWinsOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewMessageRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	msg := createMessage(t, repo, "profile-1", string(common.StatusScheduled))

	won, err := repo.MarkDelivered(ctx, msg.ID, now)
	require.NoError(t, err)
	assert.True(t, won)

	// The conditional update only ever fires once per message.
	won, err = repo.MarkDelivered(ctx, msg.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.ByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusDelivered), got.Status)
	require.NotNil(t, got.DeliveredAt)
	assert.True(t, got.DeliveredAt.Equal(now))
}

func TestMessageRepositoryMarkDeliveredSkipsDrafts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewMessageRepository(db)
	ctx := context.Background()

	msg := createMessage(t, repo, "profile-1", string(common.StatusDraft))

	won, err := repo.MarkDelivered(ctx, msg.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMessageRepositoryScheduledByProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewMessageRepository(db)
	ctx := context.Background()

	createMessage(t, repo, "profile-1", string(common.StatusScheduled))
	createMessage(t, repo, "profile-1", string(common.StatusScheduled))
	createMessage(t, repo, "profile-1", string(common.StatusDraft))
	createMessage(t, repo, "profile-2", string(common.StatusScheduled))

	msgs, err := repo.ScheduledByProfile(ctx, "profile-1")
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestMessageRepositoryByProfilePagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewMessageRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createMessage(t, repo, "profile-1", string(common.StatusDraft))
	}

	page, err := repo.ByProfile(ctx, "profile-1", 3, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = repo.ByProfile(ctx, "profile-1", 3, 3)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
