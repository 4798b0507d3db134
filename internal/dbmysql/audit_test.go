package dbmysql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legado/internal/dbmysql"
	"legado/internal/testutil"
)

func TestAuditRepositoryCreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewAuditRepository(db)
	ctx := context.Background()

	actor := "profile-1"
	require.NoError(t, repo.Create(ctx, &actor, "message.created", map[string]interface{}{"message_id": "m1"}))
	require.NoError(t, repo.Create(ctx, nil, "checkin.lapsed", nil))

	entries, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var byAction = map[string]*dbmysql.AuditEntry{}
	for _, e := range entries {
		byAction[e.Action] = e
	}

	created := byAction["message.created"]
	require.NotNil(t, created)
	require.NotNil(t, created.ActorID)
	assert.Equal(t, "profile-1", *created.ActorID)
	assert.JSONEq(t, `{"message_id":"m1"}`, created.Metadata)

	lapsed := byAction["checkin.lapsed"]
	require.NotNil(t, lapsed)
	assert.Nil(t, lapsed.ActorID)
	assert.Equal(t, "{}", lapsed.Metadata)
}

func TestAuditRepositoryListLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := dbmysql.NewAuditRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, nil, "delivery.sent", nil))
	}

	entries, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = repo.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
