package delivery

import (
	"context"
	"log"
	"time"

	"legado/internal/common"
	"legado/internal/dbmysql"
)

type MessageStore interface {
	ByID(ctx context.Context, id string) (*dbmysql.Message, error)
	ScheduledByProfile(ctx context.Context, profileID string) ([]*dbmysql.Message, error)
	MarkDelivered(ctx context.Context, id string, now time.Time) (bool, error)
}

type RuleStore interface {
	DateRulesDue(ctx context.Context, now time.Time) ([]*dbmysql.DeliveryRule, error)
	ByMessageID(ctx context.Context, messageID string) (*dbmysql.DeliveryRule, error)
}

type RecipientStore interface {
	ByMessageID(ctx context.Context, messageID string) ([]*dbmysql.Recipient, error)
}

type ContactStore interface {
	ByProfile(ctx context.Context, profileID string) ([]*dbmysql.TrustedContact, error)
}

type CheckinStore interface {
	Absent(ctx context.Context) ([]*dbmysql.Checkin, error)
}

type ProfileStore interface {
	ByID(ctx context.Context, id string) (*dbmysql.Profile, error)
}

// Stats summarizes one engine pass.
type Stats struct {
	DateDelivered    int
	CheckinDelivered int
	Notified         int
}

// Engine decides which scheduled messages become eligible and releases
// them exactly once. Marking happens before the notification handoff:
// the conditional status update is the gate, so a second pass (or an
// overlapping one) that loses the update enqueues nothing. A crash
// between marking and handoff can cost a notification; that trade-off
// is accepted and the audit log records every release.
type Engine struct {
	messages   MessageStore
	rules      RuleStore
	recipients RecipientStore
	contacts   ContactStore
	checkins   CheckinStore
	profiles   ProfileStore
	dispatcher common.Dispatcher
	audit      common.AuditSink

	// Clock is swapped for a fixed clock in tests.
	Clock common.Clock
}

func NewEngine(
	messages MessageStore,
	rules RuleStore,
	recipients RecipientStore,
	contacts ContactStore,
	checkins CheckinStore,
	profiles ProfileStore,
	dispatcher common.Dispatcher,
	audit common.AuditSink,
) *Engine {
	return &Engine{
		messages:   messages,
		rules:      rules,
		recipients: recipients,
		contacts:   contacts,
		checkins:   checkins,
		profiles:   profiles,
		dispatcher: dispatcher,
		audit:      audit,
		Clock:      common.NewClock(),
	}
}

// Run evaluates both trigger modes. Users are independent; an error on
// one message is logged and does not stop the pass.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	now := e.Clock.Now()

	// Date mode: every rule whose deliver-at has passed.
	dueRules, err := e.rules.DateRulesDue(ctx, now)
	if err != nil {
		return stats, err
	}
	for _, rule := range dueRules {
		released, notified, err := e.release(ctx, rule.MessageID, rule.ProfileID, false, now)
		if err != nil {
			log.Printf("delivery: date release failed for message %s: %v", rule.MessageID, err)
			continue
		}
		if released {
			stats.DateDelivered++
			stats.Notified += notified
		}
	}

	// Checkin mode: every scheduled checkin-mode message of a profile
	// presumed absent. Date-mode messages of the same profile keep
	// waiting for their own date.
	absent, err := e.checkins.Absent(ctx)
	if err != nil {
		return stats, err
	}
	for _, checkin := range absent {
		msgs, err := e.messages.ScheduledByProfile(ctx, checkin.ProfileID)
		if err != nil {
			log.Printf("delivery: failed to list messages for %s: %v", checkin.ProfileID, err)
			continue
		}
		for _, msg := range msgs {
			rule, err := e.rules.ByMessageID(ctx, msg.ID)
			if err != nil {
				log.Printf("delivery: no rule for message %s: %v", msg.ID, err)
				continue
			}
			if common.DeliveryMode(rule.Mode) != common.ModeCheckin {
				continue
			}

			released, notified, err := e.release(ctx, msg.ID, checkin.ProfileID, true, now)
			if err != nil {
				log.Printf("delivery: checkin release failed for message %s: %v", msg.ID, err)
				continue
			}
			if released {
				stats.CheckinDelivered++
				stats.Notified += notified
			}
		}
	}

	return stats, nil
}

// release performs the one-way transition for a single message and, if
// this invocation won the conditional update, hands the notifications to
// the dispatcher. Returns whether the message was released here and how
// many notifications were queued.
func (e *Engine) release(ctx context.Context, messageID, profileID string, viaCheckin bool, now time.Time) (bool, int, error) {
	won, err := e.messages.MarkDelivered(ctx, messageID, now)
	if err != nil {
		return false, 0, err
	}
	if !won {
		// Already delivered, or still a draft. Idempotent no-op.
		return false, 0, nil
	}

	msg, err := e.messages.ByID(ctx, messageID)
	if err != nil {
		return true, 0, err
	}

	profile, err := e.profiles.ByID(ctx, profileID)
	if err != nil {
		return true, 0, err
	}
	locale := common.Locale(profile.Locale)

	notified := 0

	recipients, err := e.recipients.ByMessageID(ctx, messageID)
	if err != nil {
		return true, notified, err
	}
	for _, rec := range recipients {
		subject, body := recipientEmail(locale, rec.Name, profile.Handle, msg)
		e.dispatcher.Enqueue(common.DeliveryEvent{
			MessageID: messageID,
			ProfileID: profileID,
			To:        rec.Email,
			Subject:   subject,
			Body:      body,
			QueuedAt:  now,
		})
		notified++
	}

	if viaCheckin {
		contacts, err := e.contacts.ByProfile(ctx, profileID)
		if err != nil {
			return true, notified, err
		}
		for _, contact := range contacts {
			subject, body := trustedContactEmail(locale, contact.Name, profile.Handle)
			e.dispatcher.Enqueue(common.DeliveryEvent{
				MessageID:      messageID,
				ProfileID:      profileID,
				To:             contact.Email,
				Subject:        subject,
				Body:           body,
				TrustedContact: true,
				QueuedAt:       now,
			})
			notified++
		}
	}

	e.audit.Record(ctx, common.AuditRecord{
		Action: "message.delivered",
		Metadata: map[string]interface{}{
			"message_id":  messageID,
			"profile_id":  profileID,
			"via_checkin": viaCheckin,
			"notified":    notified,
		},
		At: now,
	})

	return true, notified, nil
}
