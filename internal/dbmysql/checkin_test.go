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

func createCheckin(t *testing.T, repo *dbmysql.CheckinRepository, profileID, status string, nextDueAt time.Time) *dbmysql.Checkin {
	t.Helper()

	checkin := &dbmysql.Checkin{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Status:    status,
		NextDueAt: nextDueAt,
	}
	require.NoError(t, repo.Create(context.Background(), checkin))
	return checkin
}

func TestCheckinRepositoryDue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewCheckinRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	createCheckin(t, repo, "overdue", string(common.CheckinActive), now.Add(-time.Hour))
	createCheckin(t, repo, "pending_overdue", string(common.CheckinPending), now.Add(-time.Minute))
	createCheckin(t, repo, "not_yet", string(common.CheckinActive), now.Add(time.Hour))
	createCheckin(t, repo, "terminal", string(common.CheckinConfirmedAbsent), now.Add(-time.Hour))

	due, err := repo.Due(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "overdue", due[0].ProfileID)
	assert.Equal(t, "pending_overdue", due[1].ProfileID)
}

func TestCheckinRepositoryAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewCheckinRepository(db)
	ctx := context.Background()
	now := time.Now()

	createCheckin(t, repo, "alive", string(common.CheckinActive), now)
	createCheckin(t, repo, "gone", string(common.CheckinConfirmedAbsent), now)

	absent, err := repo.Absent(ctx)
	require.NoError(t, err)
	require.Len(t, absent, 1)
	assert.Equal(t, "gone", absent[0].ProfileID)
}

func TestCheckinRepositoryByTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewCheckinRepository(db)
	ctx := context.Background()

	hash := common.HashToken("secret")
	checkin := createCheckin(t, repo, "profile-1", string(common.CheckinPending), time.Now())
	checkin.ConfirmTokenHash = &hash
	require.NoError(t, repo.Update(ctx, checkin))

	got, err := repo.ByTokenHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, checkin.ID, got.ID)

	_, err = repo.ByTokenHash(ctx, common.HashToken("wrong"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}
