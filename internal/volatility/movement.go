package volatility

import (
	"math"
	"time"

	"PriceBand/internal/model"
	"PriceBand/internal/session"
)

// DayMovement is one historical day's contribution: a sparse mapping from
// slot to absolute fractional movement against that day's reference price.
// Slots the day never traded are absent, not zero.
type DayMovement struct {
	Date  time.Time
	Moves map[session.Slot]float64
}

// ComputeDay derives the movement samples for one day. The reference price is
// the close at the earliest in-session slot present. Returns ok=false when the
// day has no usable reference (no in-session bar, or a zero reference price);
// such a day contributes nothing and is excluded by the caller.
func ComputeDay(day *model.DaySeries, sess session.Session) (DayMovement, bool) {
	ref, found := day.FirstInSession(sess)
	if !found || ref.Close <= 0 {
		return DayMovement{}, false
	}

	moves := make(map[session.Slot]float64, len(day.Bars))
	for slot, bar := range day.Bars {
		if !sess.Contains(slot) {
			continue
		}
		moves[slot] = math.Abs(bar.Close/ref.Close - 1)
	}
	return DayMovement{Date: day.Date, Moves: moves}, true
}
