package checkin

import (
	"time"

	"legado/internal/common"
)

// Event is an input to the liveness state machine.
type Event int

const (
	// EventDue fires when the sweeper finds the checkin past its due date.
	EventDue Event = iota
	// EventConfirm is a successful confirmation by the owner.
	EventConfirm
	// EventReset is an explicit administrative or owner reset out of the
	// terminal state.
	EventReset
)

// Outcome tells the caller which side effect the transition demands.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomePrompted means a re-confirmation prompt must be issued.
	OutcomePrompted
	// OutcomeLapsed means attempts ran out and the profile is presumed absent.
	OutcomeLapsed
	// OutcomeConfirmed means the cycle reset after a confirmation.
	OutcomeConfirmed
	// OutcomeReactivated means the checkin left the terminal state. Any
	// delivery already sent stays sent; release is a one-way gate.
	OutcomeReactivated
)

// Snapshot is the pure in-memory view of a Checkin row.
type Snapshot struct {
	Status          common.CheckinStatus
	LastConfirmedAt time.Time
	NextDueAt       time.Time
	Attempts        int
}

// Policy carries the cadence derived from the profile's checkin-mode
// delivery rules: the smallest interval and the smallest attempts limit.
type Policy struct {
	Interval      time.Duration
	AttemptsLimit int
}

// Advance applies one event to a snapshot and returns the next snapshot.
// It touches no I/O so the machine is testable without a database.
//
// On a due check the attempts counter is incremented first; when it
// reaches the limit the state goes terminal, otherwise the cycle enters
// (or stays in) pending and a fresh prompt goes out with the next due
// date a full interval away.
func Advance(s Snapshot, p Policy, ev Event, now time.Time) (Snapshot, Outcome) {
	switch ev {
	case EventDue:
		if s.Status == common.CheckinConfirmedAbsent {
			return s, OutcomeNone
		}
		if now.Before(s.NextDueAt) {
			return s, OutcomeNone
		}

		s.Attempts++
		if s.Attempts >= p.AttemptsLimit {
			s.Status = common.CheckinConfirmedAbsent
			return s, OutcomeLapsed
		}

		s.Status = common.CheckinPending
		s.NextDueAt = now.Add(p.Interval)
		return s, OutcomePrompted

	case EventConfirm:
		reactivated := s.Status == common.CheckinConfirmedAbsent

		s.Status = common.CheckinActive
		s.Attempts = 0
		s.LastConfirmedAt = now
		s.NextDueAt = now.Add(p.Interval)

		if reactivated {
			return s, OutcomeReactivated
		}
		return s, OutcomeConfirmed

	case EventReset:
		s.Status = common.CheckinActive
		s.Attempts = 0
		s.LastConfirmedAt = now
		s.NextDueAt = now.Add(p.Interval)
		return s, OutcomeReactivated
	}

	return s, OutcomeNone
}
