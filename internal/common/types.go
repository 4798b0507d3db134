package common

import (
	"time"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeAudio MessageType = "audio"
	MessageTypeVideo MessageType = "video"
)

func (mt MessageType) String() string {
	return string(mt)
}

// IsValid checks if the message type is one of the supported kinds
func (mt MessageType) IsValid() bool {
	return mt == MessageTypeText || mt == MessageTypeAudio || mt == MessageTypeVideo
}

type MessageStatus string

const (
	StatusDraft     MessageStatus = "draft"
	StatusScheduled MessageStatus = "scheduled"
	StatusDelivered MessageStatus = "delivered"
)

type DeliveryMode string

const (
	ModeDate    DeliveryMode = "date"
	ModeCheckin DeliveryMode = "checkin"
)

type CheckinStatus string

const (
	CheckinActive          CheckinStatus = "active"
	CheckinPending         CheckinStatus = "pending"
	CheckinConfirmedAbsent CheckinStatus = "confirmed_absent"
)

type PlanTier string

const (
	PlanFree PlanTier = "free"
	PlanPro  PlanTier = "pro"
)

type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleSpanish Locale = "es"
)

func (l Locale) IsValid() bool {
	return l == LocaleEnglish || l == LocaleSpanish
}

// DeliveryEvent is one outgoing notification handed to the dispatcher.
// TrustedContact marks the extra notifications sent when a check-in
// lapse (rather than a fixed date) triggered the delivery.
type DeliveryEvent struct {
	MessageID      string
	ProfileID      string
	To             string
	Subject        string
	Body           string
	TrustedContact bool
	QueuedAt       time.Time
}

type AuditRecord struct {
	ActorID  *string
	Action   string
	Metadata map[string]interface{}
	At       time.Time
}
