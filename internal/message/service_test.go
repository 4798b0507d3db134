package message

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legado/internal/audit"
	"legado/internal/common"
	"legado/internal/dbmysql"
	"legado/internal/testutil"
)

// fakeEnsurer records which profiles had their liveness record ensured.
type fakeEnsurer struct {
	ensured []string
}

func (f *fakeEnsurer) EnsureCheckin(ctx context.Context, profileID string) (*dbmysql.Checkin, error) {
	f.ensured = append(f.ensured, profileID)
	return &dbmysql.Checkin{ProfileID: profileID}, nil
}

func newTestService(t *testing.T) (*Service, *fakeEnsurer) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	ensurer := &fakeEnsurer{}
	svc := NewService(
		dbmysql.NewMessageRepository(db),
		dbmysql.NewDeliveryRuleRepository(db),
		dbmysql.NewRecipientRepository(db),
		ensurer,
		audit.Noop{},
	)
	return svc, ensurer
}

func TestValidateRule(t *testing.T) {
	deliverAt := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	interval := 30

	cases := []struct {
		name    string
		in      RuleInput
		wantErr bool
	}{
		{"date ok", RuleInput{Mode: common.ModeDate, DeliverAt: &deliverAt}, false},
		{"checkin ok", RuleInput{Mode: common.ModeCheckin, IntervalDays: &interval}, false},
		{"date missing deliver_at", RuleInput{Mode: common.ModeDate}, true},
		{"date with interval", RuleInput{Mode: common.ModeDate, DeliverAt: &deliverAt, IntervalDays: &interval}, true},
		{"checkin missing interval", RuleInput{Mode: common.ModeCheckin}, true},
		{"checkin with deliver_at", RuleInput{Mode: common.ModeCheckin, IntervalDays: &interval, DeliverAt: &deliverAt}, true},
		{"unknown mode", RuleInput{Mode: "weekly"}, true},
		{"negative attempts", RuleInput{Mode: common.ModeDate, DeliverAt: &deliverAt, AttemptsLimit: -1}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRule(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRuleRejectsNonPositiveInterval(t *testing.T) {
	zero := 0
	assert.ErrorIs(t, ValidateRule(RuleInput{Mode: common.ModeCheckin, IntervalDays: &zero}), common.ErrValidation)
}

func TestCreateValidatesByType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusDraft), msg.Status)

	_, err = svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "", nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Create(ctx, "profile-1", common.MessageTypeAudio, "hi", "", nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	mediaID := "media-1"
	_, err = svc.Create(ctx, "profile-1", common.MessageTypeAudio, "hi", "", &mediaID)
	assert.NoError(t, err)

	_, err = svc.Create(ctx, "profile-1", "carrier_pigeon", "hi", "body", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, "profile-2", msg.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Get(ctx, "profile-1", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateDraftOnlyTouchesDrafts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)

	updated, err := svc.UpdateDraft(ctx, "profile-1", msg.ID, "new subject", "new body")
	require.NoError(t, err)
	assert.Equal(t, "new subject", updated.Subject)
	assert.Equal(t, "new body", updated.Body)

	scheduleMessage(t, svc, "profile-1", msg.ID)

	_, err = svc.UpdateDraft(ctx, "profile-1", msg.ID, "too", "late")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestScheduleRequiresRuleAndRecipients(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)

	// No rule yet.
	_, err = svc.Schedule(ctx, "profile-1", msg.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	deliverAt := time.Now().Add(24 * time.Hour)
	_, err = svc.SetRule(ctx, "profile-1", msg.ID, RuleInput{Mode: common.ModeDate, DeliverAt: &deliverAt})
	require.NoError(t, err)

	// Rule but no recipients.
	_, err = svc.Schedule(ctx, "profile-1", msg.ID)
	assert.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, svc.SetRecipients(ctx, "profile-1", msg.ID, []*dbmysql.Recipient{
		{Name: "Ana", Email: "ana@example.com"},
	}))

	scheduled, err := svc.Schedule(ctx, "profile-1", msg.ID)
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusScheduled), scheduled.Status)

	// Scheduling twice trips the draft guard.
	_, err = svc.Schedule(ctx, "profile-1", msg.ID)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestScheduleCheckinModeEnsuresLivenessRecord(t *testing.T) {
	svc, ensurer := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)

	interval := 30
	_, err = svc.SetRule(ctx, "profile-1", msg.ID, RuleInput{Mode: common.ModeCheckin, IntervalDays: &interval})
	require.NoError(t, err)

	require.NoError(t, svc.SetRecipients(ctx, "profile-1", msg.ID, []*dbmysql.Recipient{
		{Name: "Ana", Email: "ana@example.com"},
	}))

	_, err = svc.Schedule(ctx, "profile-1", msg.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"profile-1"}, ensurer.ensured)
}

func TestSetRecipientsValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)

	err = svc.SetRecipients(ctx, "profile-1", msg.ID, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	err = svc.SetRecipients(ctx, "profile-1", msg.ID, []*dbmysql.Recipient{
		{Name: "Ana", Email: "not-an-email"},
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSetRuleDefaultsAttemptsLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	msg, err := svc.Create(ctx, "profile-1", common.MessageTypeText, "hi", "body", nil)
	require.NoError(t, err)

	interval := 14
	rule, err := svc.SetRule(ctx, "profile-1", msg.ID, RuleInput{Mode: common.ModeCheckin, IntervalDays: &interval})
	require.NoError(t, err)
	assert.Equal(t, 3, rule.AttemptsLimit)
}

func scheduleMessage(t *testing.T, svc *Service, profileID, messageID string) {
	t.Helper()

	ctx := context.Background()
	deliverAt := time.Now().Add(24 * time.Hour)
	_, err := svc.SetRule(ctx, profileID, messageID, RuleInput{Mode: common.ModeDate, DeliverAt: &deliverAt})
	require.NoError(t, err)
	require.NoError(t, svc.SetRecipients(ctx, profileID, messageID, []*dbmysql.Recipient{
		{Name: "Ana", Email: "ana@example.com"},
	}))
	_, err = svc.Schedule(ctx, profileID, messageID)
	require.NoError(t, err)
}
