package audit

import (
	"context"
	"log"
	"sync"

	"legado/internal/common"
)

// Store is the persistence surface for audit entries.
type Store interface {
	Create(ctx context.Context, actorID *string, action string, metadata map[string]interface{}) error
}

// Logger persists audit records off the critical path. Writes happen on
// a single background worker; failures are logged and discarded so
// observability can never abort a primary operation.
type Logger struct {
	store   Store
	records chan common.AuditRecord
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewLogger(store Store) *Logger {
	l := &Logger{
		store:   store,
		records: make(chan common.AuditRecord, 256),
	}

	l.wg.Add(1)
	go l.processRecords()

	return l
}

// Record queues an audit write. Never blocks and never returns an error.
func (l *Logger) Record(ctx context.Context, rec common.AuditRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	select {
	case l.records <- rec:
	default:
		log.Printf("audit channel full, dropping record: %s", rec.Action)
	}
}

func (l *Logger) processRecords() {
	defer l.wg.Done()

	for rec := range l.records {
		if err := l.store.Create(context.Background(), rec.ActorID, rec.Action, rec.Metadata); err != nil {
			log.Printf("audit write failed (ignored): %v", err)
		}
	}
}

// Shutdown drains pending records.
func (l *Logger) Shutdown() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.records)
	l.mu.Unlock()

	l.wg.Wait()
}

// Noop discards everything; used where no database is wired up.
type Noop struct{}

func (Noop) Record(ctx context.Context, rec common.AuditRecord) {}
