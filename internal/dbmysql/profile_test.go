package dbmysql_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legado/internal/common"
	"legado/internal/dbmysql"
	"legado/internal/testutil"
)

func createProfile(t *testing.T, repo *dbmysql.ProfileRepository, handle string) *dbmysql.Profile {
	t.Helper()

	profile := &dbmysql.Profile{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        handle + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(context.Background(), profile))
	return profile
}

func TestProfileRepositoryByHandle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewProfileRepository(db)
	ctx := context.Background()

	created := createProfile(t, repo, "maria")

	got, err := repo.ByHandle(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.ByHandle(ctx, "nadie")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestProfileRepositoryCheckHandleExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewProfileRepository(db)
	ctx := context.Background()

	createProfile(t, repo, "maria")

	exists, err := repo.CheckHandleExists(ctx, "maria")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.CheckHandleExists(ctx, "nadie")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProfileRepositoryUpdatePlanByCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewProfileRepository(db)
	ctx := context.Background()

	profile := createProfile(t, repo, "maria")
	profile.BillingCustomer = "cus_123"
	require.NoError(t, repo.Update(ctx, profile))

	require.NoError(t, repo.UpdatePlanByCustomer(ctx, "cus_123", common.PlanPro))

	got, err := repo.ByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, string(common.PlanPro), got.Plan)

	assert.ErrorIs(t, repo.UpdatePlanByCustomer(ctx, "cus_unknown", common.PlanPro), common.ErrNotFound)
}
