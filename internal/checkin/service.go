package checkin

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"legado/internal/common"
	"legado/internal/config"
	"legado/internal/dbmysql"
)

// CheckinStore is the persistence surface the service needs for the
// liveness records themselves.
type CheckinStore interface {
	Create(ctx context.Context, checkin *dbmysql.Checkin) error
	ByProfile(ctx context.Context, profileID string) (*dbmysql.Checkin, error)
	ByTokenHash(ctx context.Context, hash string) (*dbmysql.Checkin, error)
	Update(ctx context.Context, checkin *dbmysql.Checkin) error
	Due(ctx context.Context, now time.Time) ([]*dbmysql.Checkin, error)
}

type RuleStore interface {
	CheckinRulesByProfile(ctx context.Context, profileID string) ([]*dbmysql.DeliveryRule, error)
}

type ProfileStore interface {
	ByID(ctx context.Context, id string) (*dbmysql.Profile, error)
}

type Service struct {
	checkins   CheckinStore
	rules      RuleStore
	profiles   ProfileStore
	dispatcher common.Dispatcher
	audit      common.AuditSink
	cfg        *config.Config

	// Clock is swapped for a fixed clock in tests.
	Clock common.Clock
}

func NewService(
	checkins CheckinStore,
	rules RuleStore,
	profiles ProfileStore,
	dispatcher common.Dispatcher,
	audit common.AuditSink,
	cfg *config.Config,
) *Service {
	return &Service{
		checkins:   checkins,
		rules:      rules,
		profiles:   profiles,
		dispatcher: dispatcher,
		audit:      audit,
		cfg:        cfg,
		Clock:      common.NewClock(),
	}
}

// PolicyFor derives the cadence from the profile's checkin-mode rules.
// The most restrictive rule wins on both axes. With no checkin-mode
// rules the machine is inert and ok is false.
func (s *Service) PolicyFor(ctx context.Context, profileID string) (Policy, bool, error) {
	rules, err := s.rules.CheckinRulesByProfile(ctx, profileID)
	if err != nil {
		return Policy{}, false, err
	}
	if len(rules) == 0 {
		return Policy{}, false, nil
	}

	intervalDays := s.cfg.Checkin.DefaultIntervalDays
	attemptsLimit := s.cfg.Checkin.DefaultAttemptsLimit

	for _, rule := range rules {
		if rule.IntervalDays != nil && *rule.IntervalDays < intervalDays {
			intervalDays = *rule.IntervalDays
		}
		if rule.AttemptsLimit > 0 && rule.AttemptsLimit < attemptsLimit {
			attemptsLimit = rule.AttemptsLimit
		}
	}

	return Policy{
		Interval:      time.Duration(intervalDays) * 24 * time.Hour,
		AttemptsLimit: attemptsLimit,
	}, true, nil
}

// EnsureCheckin creates the singleton liveness record the first time a
// profile schedules a checkin-mode message. Idempotent.
func (s *Service) EnsureCheckin(ctx context.Context, profileID string) (*dbmysql.Checkin, error) {
	existing, err := s.checkins.ByProfile(ctx, profileID)
	if err == nil {
		return existing, nil
	}

	now := s.Clock.Now()
	interval := time.Duration(s.cfg.Checkin.DefaultIntervalDays) * 24 * time.Hour
	if policy, ok, perr := s.PolicyFor(ctx, profileID); perr == nil && ok {
		interval = policy.Interval
	}

	checkin := &dbmysql.Checkin{
		ID:              uuid.NewString(),
		ProfileID:       profileID,
		Status:          string(common.CheckinActive),
		LastConfirmedAt: now,
		NextDueAt:       now.Add(interval),
	}
	if err := s.checkins.Create(ctx, checkin); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, common.AuditRecord{
		ActorID: &profileID,
		Action:  "checkin.created",
		At:      now,
	})

	return checkin, nil
}

func (s *Service) Get(ctx context.Context, profileID string) (*dbmysql.Checkin, error) {
	return s.checkins.ByProfile(ctx, profileID)
}

// Confirm resets the liveness cycle for the profile. Confirming while
// already active is the same reset, so repeated confirmations converge.
// A confirmation that lands after the terminal state reactivates the
// checkin but does not claw back anything already delivered.
func (s *Service) Confirm(ctx context.Context, profileID string) (*dbmysql.Checkin, error) {
	checkin, err := s.checkins.ByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	policy, ok, err := s.PolicyFor(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !ok {
		policy = s.defaultPolicy()
	}

	return s.applyEvent(ctx, checkin, policy, EventConfirm, &profileID)
}

// ConfirmByToken handles the one-time confirmation link. The raw token
// is hashed for lookup and verified in constant time against the stored
// digest; a used token is cleared so the link only works once.
func (s *Service) ConfirmByToken(ctx context.Context, rawToken string) (*dbmysql.Checkin, error) {
	if rawToken == "" {
		return nil, fmt.Errorf("%w: missing token", common.ErrValidation)
	}

	checkin, err := s.checkins.ByTokenHash(ctx, common.HashToken(rawToken))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", common.ErrUnauthorized)
	}

	if checkin.ConfirmTokenHash == nil || !common.VerifyToken(rawToken, *checkin.ConfirmTokenHash) {
		return nil, fmt.Errorf("%w: invalid or expired token", common.ErrUnauthorized)
	}

	return s.Confirm(ctx, checkin.ProfileID)
}

// Reset is the explicit way out of confirmed_absent, driven by an admin
// or the owner. Never fired automatically.
func (s *Service) Reset(ctx context.Context, profileID string, actorID *string) (*dbmysql.Checkin, error) {
	checkin, err := s.checkins.ByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	policy, ok, err := s.PolicyFor(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if !ok {
		policy = s.defaultPolicy()
	}

	return s.applyEvent(ctx, checkin, policy, EventReset, actorID)
}

// RunDueChecks advances every overdue checkin one step. Profiles whose
// rules are all date-mode are skipped entirely; the machine has no
// effect on them. Returns the profile ids that went terminal this pass.
func (s *Service) RunDueChecks(ctx context.Context) ([]string, error) {
	now := s.Clock.Now()

	due, err := s.checkins.Due(ctx, now)
	if err != nil {
		return nil, err
	}

	var lapsed []string
	for _, checkin := range due {
		policy, ok, err := s.PolicyFor(ctx, checkin.ProfileID)
		if err != nil {
			log.Printf("checkin: failed to derive policy for %s: %v", checkin.ProfileID, err)
			continue
		}
		if !ok {
			continue
		}

		updated, err := s.applyEvent(ctx, checkin, policy, EventDue, nil)
		if err != nil {
			log.Printf("checkin: due check failed for %s: %v", checkin.ProfileID, err)
			continue
		}
		if updated.Status == string(common.CheckinConfirmedAbsent) {
			lapsed = append(lapsed, checkin.ProfileID)
		}
	}

	return lapsed, nil
}

func (s *Service) applyEvent(ctx context.Context, checkin *dbmysql.Checkin, policy Policy, ev Event, actorID *string) (*dbmysql.Checkin, error) {
	now := s.Clock.Now()

	snap := Snapshot{
		Status:          common.CheckinStatus(checkin.Status),
		LastConfirmedAt: checkin.LastConfirmedAt,
		NextDueAt:       checkin.NextDueAt,
		Attempts:        checkin.Attempts,
	}

	next, outcome := Advance(snap, policy, ev, now)

	checkin.Status = string(next.Status)
	checkin.LastConfirmedAt = next.LastConfirmedAt
	checkin.NextDueAt = next.NextDueAt
	checkin.Attempts = next.Attempts

	switch outcome {
	case OutcomeNone:
		return checkin, nil

	case OutcomePrompted:
		if err := s.sendPrompt(ctx, checkin, now); err != nil {
			log.Printf("checkin: failed to issue prompt for %s: %v", checkin.ProfileID, err)
		}

	case OutcomeConfirmed, OutcomeReactivated:
		checkin.ConfirmTokenHash = nil
	}

	if err := s.checkins.Update(ctx, checkin); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, common.AuditRecord{
		ActorID:  actorID,
		Action:   auditAction(outcome),
		Metadata: map[string]interface{}{"profile_id": checkin.ProfileID, "attempts": checkin.Attempts},
		At:       now,
	})

	return checkin, nil
}

// sendPrompt stores a fresh one-time token hash on the checkin and
// queues the bilingual re-confirmation email.
func (s *Service) sendPrompt(ctx context.Context, checkin *dbmysql.Checkin, now time.Time) error {
	raw, hash, err := common.IssueToken()
	if err != nil {
		return err
	}

	checkin.ConfirmTokenHash = &hash
	checkin.PromptSentAt = &now

	profile, err := s.profiles.ByID(ctx, checkin.ProfileID)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/checkin/confirm?token=%s", s.cfg.Server.BaseURL, raw)
	subject, body := promptEmail(common.Locale(profile.Locale), profile.Handle, link, checkin.Attempts)

	s.dispatcher.Enqueue(common.DeliveryEvent{
		ProfileID: checkin.ProfileID,
		To:        profile.Email,
		Subject:   subject,
		Body:      body,
		QueuedAt:  now,
	})

	return nil
}

func (s *Service) defaultPolicy() Policy {
	return Policy{
		Interval:      time.Duration(s.cfg.Checkin.DefaultIntervalDays) * 24 * time.Hour,
		AttemptsLimit: s.cfg.Checkin.DefaultAttemptsLimit,
	}
}

func auditAction(outcome Outcome) string {
	switch outcome {
	case OutcomePrompted:
		return "checkin.prompted"
	case OutcomeLapsed:
		return "checkin.lapsed"
	case OutcomeConfirmed:
		return "checkin.confirmed"
	case OutcomeReactivated:
		return "checkin.reactivated"
	}
	return "checkin.noop"
}
