// Package clock abstracts wall-clock access so the lifecycle engine can be
// driven by a pinned time in tests and demo mode.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// FromDemoOverride returns a pinned clock when the RFC3339 override is set,
// otherwise the real clock. An unparseable override falls back to real time.
func FromDemoOverride(override string) Clock {
	if override == "" {
		return Real{}
	}
	t, err := time.Parse(time.RFC3339, override)
	if err != nil {
		return Real{}
	}
	return Fixed{T: t}
}
