package volatility

import (
	"PriceBand/internal/model"
	"PriceBand/internal/session"
)

// DivisorPolicy selects the denominator used when averaging per-slot
// movements across the window.
type DivisorPolicy string

const (
	// DivideByAvailable averages over the days that actually have a sample
	// for the slot. This avoids diluting volatility when data is sparse.
	DivideByAvailable DivisorPolicy = "available"
	// DivideByFixed always divides by the full window size, treating missing
	// samples as diluting the average.
	DivideByFixed DivisorPolicy = "fixed"
)

// Valid reports whether the policy is one of the known values.
func (p DivisorPolicy) Valid() bool {
	return p == DivideByAvailable || p == DivideByFixed
}

// Aggregate folds per-day movements into one volatility value per slot.
// windowSize is the configured window N, used only by DivideByFixed. A slot
// sampled by zero days is left out of the profile entirely.
func Aggregate(days []DayMovement, windowSize int, policy DivisorPolicy) *model.VolatilityProfile {
	sums := make(map[session.Slot]float64)
	counts := make(map[session.Slot]int)
	for _, d := range days {
		for slot, move := range d.Moves {
			sums[slot] += move
			counts[slot]++
		}
	}

	profile := model.NewVolatilityProfile()
	for slot, sum := range sums {
		switch policy {
		case DivideByFixed:
			profile.Sigma[slot] = sum / float64(windowSize)
		default:
			profile.Sigma[slot] = sum / float64(counts[slot])
		}
	}
	return profile
}
