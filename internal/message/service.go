package message

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"legado/internal/common"
	"legado/internal/dbmysql"
)

type MessageStore interface {
	Create(ctx context.Context, msg *dbmysql.Message) error
	ByID(ctx context.Context, id string) (*dbmysql.Message, error)
	ByProfile(ctx context.Context, profileID string, limit, offset int) ([]*dbmysql.Message, error)
	Update(ctx context.Context, msg *dbmysql.Message) error
	MarkScheduled(ctx context.Context, id, profileID string) error
}

type RuleStore interface {
	Upsert(ctx context.Context, rule *dbmysql.DeliveryRule) error
	ByMessageID(ctx context.Context, messageID string) (*dbmysql.DeliveryRule, error)
}

type RecipientStore interface {
	Replace(ctx context.Context, messageID string, recipients []*dbmysql.Recipient) error
	ByMessageID(ctx context.Context, messageID string) ([]*dbmysql.Recipient, error)
	CountByMessageID(ctx context.Context, messageID string) (int64, error)
}

// CheckinEnsurer creates the profile's liveness record the first time a
// checkin-mode message gets scheduled.
type CheckinEnsurer interface {
	EnsureCheckin(ctx context.Context, profileID string) (*dbmysql.Checkin, error)
}

type Service struct {
	messages   MessageStore
	rules      RuleStore
	recipients RecipientStore
	checkins   CheckinEnsurer
	audit      common.AuditSink

	now func() time.Time
}

func NewService(
	messages MessageStore,
	rules RuleStore,
	recipients RecipientStore,
	checkins CheckinEnsurer,
	audit common.AuditSink,
) *Service {
	return &Service{
		messages:   messages,
		rules:      rules,
		recipients: recipients,
		checkins:   checkins,
		audit:      audit,
		now:        time.Now,
	}
}

// RuleInput is the caller-facing delivery rule shape before validation.
type RuleInput struct {
	Mode          common.DeliveryMode
	DeliverAt     *time.Time
	IntervalDays  *int
	AttemptsLimit int
}

// ValidateRule enforces the mode/field exclusivity invariant: date mode
// carries a deliver-at and no interval, checkin mode carries an interval
// and no deliver-at. Everything else is rejected before persistence.
func ValidateRule(in RuleInput) error {
	switch in.Mode {
	case common.ModeDate:
		if in.DeliverAt == nil {
			return fmt.Errorf("%w: date mode requires deliver_at", common.ErrValidation)
		}
		if in.IntervalDays != nil {
			return fmt.Errorf("%w: date mode must not set interval_days", common.ErrValidation)
		}
	case common.ModeCheckin:
		if in.IntervalDays == nil {
			return fmt.Errorf("%w: checkin mode requires interval_days", common.ErrValidation)
		}
		if in.DeliverAt != nil {
			return fmt.Errorf("%w: checkin mode must not set deliver_at", common.ErrValidation)
		}
		if *in.IntervalDays <= 0 {
			return fmt.Errorf("%w: interval_days must be positive", common.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown delivery mode %q", common.ErrValidation, in.Mode)
	}

	if in.AttemptsLimit < 0 {
		return fmt.Errorf("%w: attempts_limit must not be negative", common.ErrValidation)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, profileID string, msgType common.MessageType, subject, body string, mediaID *string) (*dbmysql.Message, error) {
	if !msgType.IsValid() {
		return nil, fmt.Errorf("%w: unknown message type %q", common.ErrValidation, msgType)
	}
	switch msgType {
	case common.MessageTypeText:
		if body == "" {
			return nil, fmt.Errorf("%w: text message requires a body", common.ErrValidation)
		}
	default:
		if mediaID == nil || *mediaID == "" {
			return nil, fmt.Errorf("%w: %s message requires uploaded media", common.ErrValidation, msgType)
		}
	}

	msg := &dbmysql.Message{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		Type:      string(msgType),
		Status:    string(common.StatusDraft),
		Subject:   subject,
		Body:      body,
		MediaID:   mediaID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, common.AuditRecord{
		ActorID:  &profileID,
		Action:   "message.created",
		Metadata: map[string]interface{}{"message_id": msg.ID, "type": msg.Type},
		At:       s.now(),
	})

	return msg, nil
}

func (s *Service) Get(ctx context.Context, profileID, messageID string) (*dbmysql.Message, error) {
	msg, err := s.messages.ByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ProfileID != profileID {
		return nil, fmt.Errorf("%w: message %s", common.ErrForbidden, messageID)
	}
	return msg, nil
}

func (s *Service) List(ctx context.Context, profileID string, limit, offset int) ([]*dbmysql.Message, error) {
	return s.messages.ByProfile(ctx, profileID, limit, offset)
}

// UpdateDraft edits content. Only drafts are editable; scheduled and
// delivered messages are frozen.
func (s *Service) UpdateDraft(ctx context.Context, profileID, messageID, subject, body string) (*dbmysql.Message, error) {
	msg, err := s.Get(ctx, profileID, messageID)
	if err != nil {
		return nil, err
	}
	if common.MessageStatus(msg.Status) != common.StatusDraft {
		return nil, fmt.Errorf("%w: only drafts can be edited", common.ErrValidation)
	}

	msg.Subject = subject
	if common.MessageType(msg.Type) == common.MessageTypeText {
		if body == "" {
			return nil, fmt.Errorf("%w: text message requires a body", common.ErrValidation)
		}
		msg.Body = body
	}

	if err := s.messages.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SetRule attaches or replaces the message's delivery rule.
func (s *Service) SetRule(ctx context.Context, profileID, messageID string, in RuleInput) (*dbmysql.DeliveryRule, error) {
	if _, err := s.Get(ctx, profileID, messageID); err != nil {
		return nil, err
	}
	if err := ValidateRule(in); err != nil {
		return nil, err
	}

	attempts := in.AttemptsLimit
	if attempts == 0 {
		attempts = 3
	}

	rule := &dbmysql.DeliveryRule{
		ID:            uuid.NewString(),
		MessageID:     messageID,
		ProfileID:     profileID,
		Mode:          string(in.Mode),
		DeliverAt:     in.DeliverAt,
		IntervalDays:  in.IntervalDays,
		AttemptsLimit: attempts,
	}
	if err := s.rules.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// SetRecipients replaces the message's addressees.
func (s *Service) SetRecipients(ctx context.Context, profileID, messageID string, recipients []*dbmysql.Recipient) error {
	if _, err := s.Get(ctx, profileID, messageID); err != nil {
		return err
	}
	if len(recipients) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", common.ErrValidation)
	}

	for _, rec := range recipients {
		if err := common.ValidateEmail(rec.Email); err != nil {
			return err
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
	}

	return s.recipients.Replace(ctx, messageID, recipients)
}

// Schedule moves a draft into the scheduled state. A message cannot be
// scheduled without a delivery rule and at least one recipient; a
// checkin-mode rule also makes sure the profile's liveness record exists
// so the sweeper starts tracking it.
func (s *Service) Schedule(ctx context.Context, profileID, messageID string) (*dbmysql.Message, error) {
	if _, err := s.Get(ctx, profileID, messageID); err != nil {
		return nil, err
	}

	rule, err := s.rules.ByMessageID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: a delivery rule is required before scheduling", common.ErrValidation)
	}

	count, err := s.recipients.CountByMessageID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required before scheduling", common.ErrValidation)
	}

	if err := s.messages.MarkScheduled(ctx, messageID, profileID); err != nil {
		return nil, err
	}

	if common.DeliveryMode(rule.Mode) == common.ModeCheckin {
		if _, err := s.checkins.EnsureCheckin(ctx, profileID); err != nil {
			return nil, err
		}
	}

	s.audit.Record(ctx, common.AuditRecord{
		ActorID:  &profileID,
		Action:   "message.scheduled",
		Metadata: map[string]interface{}{"message_id": messageID, "mode": rule.Mode},
		At:       s.now(),
	})

	return s.messages.ByID(ctx, messageID)
}

func (s *Service) Rule(ctx context.Context, profileID, messageID string) (*dbmysql.DeliveryRule, error) {
	if _, err := s.Get(ctx, profileID, messageID); err != nil {
		return nil, err
	}
	return s.rules.ByMessageID(ctx, messageID)
}

func (s *Service) Recipients(ctx context.Context, profileID, messageID string) ([]*dbmysql.Recipient, error) {
	if _, err := s.Get(ctx, profileID, messageID); err != nil {
		return nil, err
	}
	return s.recipients.ByMessageID(ctx, messageID)
}
