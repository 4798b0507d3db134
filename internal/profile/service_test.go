package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legado/internal/audit"
	"legado/internal/common"
	"legado/internal/dbmysql"
	"legado/internal/testutil"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.SetupTestDB(t)
	return NewService(
		dbmysql.NewProfileRepository(db),
		dbmysql.NewTrustedContactRepository(db),
		audit.Noop{},
	)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	profile, token, err := svc.Register(ctx, "maria", "maria@example.com", "secret1", common.LocaleSpanish)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "maria", profile.Handle)
	assert.Equal(t, string(common.LocaleSpanish), profile.Locale)
	assert.Equal(t, string(common.PlanFree), profile.Plan)
	assert.NotEqual(t, "secret1", profile.PasswordHash, "password is stored hashed")

	logged, token, err := svc.Login(ctx, "maria", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, profile.ID, logged.ID)

	claims, err := common.ValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, claims.ProfileID)
}

func TestRegisterRejectsDuplicateHandle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "maria", "maria@example.com", "secret1", common.LocaleEnglish)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "maria", "other@example.com", "secret2", common.LocaleEnglish)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "ab", "maria@example.com", "secret1", common.LocaleEnglish)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, _, err = svc.Register(ctx, "maria", "bad-email", "secret1", common.LocaleEnglish)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, _, err = svc.Register(ctx, "maria", "maria@example.com", "123", common.LocaleEnglish)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, _, err = svc.Register(ctx, "maria", "maria@example.com", "secret1", "fr")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "maria", "maria@example.com", "secret1", common.LocaleEnglish)
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "maria", "wrong")
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nadie", "secret1")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	profile, _, err := svc.Register(ctx, "maria", "maria@example.com", "secret1", common.LocaleEnglish)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, profile.ID, "nueva@example.com", common.LocaleSpanish)
	require.NoError(t, err)
	assert.Equal(t, "nueva@example.com", updated.Email)
	assert.Equal(t, string(common.LocaleSpanish), updated.Locale)

	_, err = svc.Update(ctx, profile.ID, "", "de")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestApplyPlanChange(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	profile, _, err := svc.Register(ctx, "maria", "maria@example.com", "secret1", common.LocaleEnglish)
	require.NoError(t, err)

	profile.BillingCustomer = "cus_123"
	require.NoError(t, svc.profiles.Update(ctx, profile))

	require.NoError(t, svc.ApplyPlanChange(ctx, "cus_123", common.PlanPro))

	got, err := svc.Get(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, string(common.PlanPro), got.Plan)

	assert.ErrorIs(t, svc.ApplyPlanChange(ctx, "cus_123", "enterprise"), common.ErrValidation)
	assert.ErrorIs(t, svc.ApplyPlanChange(ctx, "cus_unknown", common.PlanPro), common.ErrNotFound)
}

func TestTrustedContacts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	profile, _, err := svc.Register(ctx, "maria", "maria@example.com", "secret1", common.LocaleEnglish)
	require.NoError(t, err)

	contact, err := svc.AddContact(ctx, profile.ID, "Carmen", "carmen@example.com", "sister")
	require.NoError(t, err)

	_, err = svc.AddContact(ctx, profile.ID, "", "carmen@example.com", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.AddContact(ctx, profile.ID, "Carmen", "not-an-email", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	contacts, err := svc.ListContacts(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, contact.ID, contacts[0].ID)

	require.NoError(t, svc.RemoveContact(ctx, profile.ID, contact.ID))

	contacts, err = svc.ListContacts(ctx, profile.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
