package common

import "time"

// Clock abstracts wall time so the temporal logic (due checks, delivery
// eligibility) is testable with a simulated clock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewClock() Clock {
	return realClock{}
}
