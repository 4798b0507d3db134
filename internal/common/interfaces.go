package common

import (
	"context"
)

// Sender is the delivery collaborator. Sends are best effort; retry
// policy belongs to the implementation, not to the callers.
type Sender interface {
	SendEmail(to, subject, body string) error
}

// AuditSink persists audit records. Implementations must never let a
// failed write surface to the caller.
type AuditSink interface {
	Record(ctx context.Context, rec AuditRecord)
}

// Dispatcher fans delivery events out to the Sender. Enqueue never
// blocks the caller; Shutdown drains whatever was accepted.
type Dispatcher interface {
	Enqueue(event DeliveryEvent)
	Shutdown()
}
