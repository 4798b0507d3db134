package delivery

import (
	"context"
	"log"
	"sync"

	"legado/internal/common"
)

// Dispatcher fans outgoing notifications across a worker pool. Sends are
// best effort: a failed send is logged and audited, never retried here,
// and never reverts the message's delivered status.
type Dispatcher struct {
	sender common.Sender
	audit  common.AuditSink
	events chan common.DeliveryEvent
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewDispatcher(workers, bufferSize int, sender common.Sender, audit common.AuditSink) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		sender: sender,
		audit:  audit,
		events: make(chan common.DeliveryEvent, bufferSize),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.processEvents()
	}

	return d
}

// Enqueue hands an event to the pool without blocking the caller. When
// the buffer is full the event is dropped with a log line; the audit
// trail still records the release that produced it.
func (d *Dispatcher) Enqueue(event common.DeliveryEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		log.Printf("dispatcher closed, dropping event for %s", event.To)
		return
	}

	select {
	case d.events <- event:
	default:
		log.Printf("dispatcher channel full, dropping event for %s", event.To)
	}
}

func (d *Dispatcher) processEvents() {
	defer d.wg.Done()

	for event := range d.events {
		err := d.sender.SendEmail(event.To, event.Subject, event.Body)
		if err != nil {
			log.Printf("dispatcher: send to %s failed: %v", event.To, err)
		}

		action := "delivery.sent"
		if err != nil {
			action = "delivery.send_failed"
		}
		d.audit.Record(context.Background(), common.AuditRecord{
			Action: action,
			Metadata: map[string]interface{}{
				"message_id":      event.MessageID,
				"to":              event.To,
				"trusted_contact": event.TrustedContact,
			},
			At: event.QueuedAt,
		})
	}
}

// Shutdown stops accepting events and waits for the queue to drain.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()

	d.wg.Wait()
	log.Println("delivery dispatcher shutdown complete")
}
