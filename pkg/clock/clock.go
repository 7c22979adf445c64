// Package clock abstracts time.Now so services can be tested with a
// fixed instant and backfill flows can run against a historical clock.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Real delegates to the system clock. The zero value is ready to use.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant.
type Fixed struct {
	Instant time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{Instant: t}
}

func (f *Fixed) Now() time.Time {
	return f.Instant
}
