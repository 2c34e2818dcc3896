package session

import (
	"errors"
	"fmt"
	"time"
)

// Slot identifies a minute-of-day within the trading session, independent of
// calendar date. Internally it is seconds since midnight.
type Slot int

// NewSlot builds a Slot from wall-clock components.
func NewSlot(hour, minute, second int) Slot {
	return Slot(hour*3600 + minute*60 + second)
}

// ParseSlot parses a "HH:MM:SS" time-of-day string. The whole string must be
// a valid time of day; trailing text is rejected.
func ParseSlot(s string) (Slot, error) {
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return 0, fmt.Errorf("parse slot %q: %w", s, err)
	}
	return NewSlot(t.Hour(), t.Minute(), t.Second()), nil
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(s)/3600, int(s)%3600/60, int(s)%60)
}

// Range is one contiguous sub-session, inclusive on both ends.
type Range struct {
	Start Slot
	End   Slot
}

// Session defines the canonical minute slots of a trading day: an ordered set
// of non-overlapping sub-sessions sampled at a fixed step.
type Session struct {
	Ranges      []Range
	StepSeconds int
}

// Default returns the A-share session: 09:30-11:30 and 13:00-15:00 at
// 1-minute cadence.
func Default() Session {
	return Session{
		Ranges: []Range{
			{Start: NewSlot(9, 30, 0), End: NewSlot(11, 30, 0)},
			{Start: NewSlot(13, 0, 0), End: NewSlot(15, 0, 0)},
		},
		StepSeconds: 60,
	}
}

// Validate checks that the session is well-formed: at least one range, a
// positive step, ranges ordered and non-overlapping.
func (s Session) Validate() error {
	if len(s.Ranges) == 0 {
		return errors.New("session has no sub-sessions")
	}
	if s.StepSeconds <= 0 {
		return errors.New("session step must be positive")
	}
	for i, r := range s.Ranges {
		if r.End < r.Start {
			return fmt.Errorf("sub-session %d ends before it starts", i)
		}
		if i > 0 && r.Start <= s.Ranges[i-1].End {
			return fmt.Errorf("sub-session %d overlaps the previous one", i)
		}
	}
	return nil
}

// Slots returns the full ordered slot sequence for the session, both
// sub-sessions, gap excluded.
func (s Session) Slots() []Slot {
	var out []Slot
	for _, r := range s.Ranges {
		for t := r.Start; t <= r.End; t += Slot(s.StepSeconds) {
			out = append(out, t)
		}
	}
	return out
}

// Contains reports whether the time-of-day falls inside any sub-session.
// It does not require the slot to be on the step grid.
func (s Session) Contains(t Slot) bool {
	for _, r := range s.Ranges {
		if t >= r.Start && t <= r.End {
			return true
		}
	}
	return false
}
