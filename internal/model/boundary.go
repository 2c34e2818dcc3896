package model

import "PriceBand/internal/session"

// VolatilityProfile maps each slot to its average absolute movement across
// the historical window. Slots with no evidence are simply absent from the
// map; absence means "no data", never zero volatility.
type VolatilityProfile struct {
	Sigma map[session.Slot]float64
}

// NewVolatilityProfile creates an empty profile.
func NewVolatilityProfile() *VolatilityProfile {
	return &VolatilityProfile{Sigma: make(map[session.Slot]float64)}
}

// Lookup returns the volatility for a slot and whether any evidence exists.
func (p *VolatilityProfile) Lookup(slot session.Slot) (float64, bool) {
	v, ok := p.Sigma[slot]
	return v, ok
}

// Boundary is the price envelope for one slot. Defined is false for slots
// that had no volatility evidence and were not carried from a neighbor.
type Boundary struct {
	Slot    session.Slot
	Lower   float64
	Upper   float64
	Defined bool
}
