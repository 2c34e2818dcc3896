package bounds

import (
	"math"

	"PriceBand/internal/model"
	"PriceBand/internal/session"
)

// NoDataPolicy decides what happens to slots without volatility evidence.
type NoDataPolicy string

const (
	// NoDataOmit emits the slot as undefined; the serialization layer drops it.
	NoDataOmit NoDataPolicy = "omit"
	// NoDataCarry copies the bounds of the nearest preceding defined slot.
	// Leading slots with no preceding evidence stay undefined.
	NoDataCarry NoDataPolicy = "carry"
)

// Valid reports whether the policy is one of the known values.
func (p NoDataPolicy) Valid() bool {
	return p == NoDataOmit || p == NoDataCarry
}

// Generate produces one Boundary per session slot, in session order.
// openPrice is today's open, prevClose the prior trading day's close:
//
//	lower = min(open, prevClose) * (1 - sigma)
//	upper = max(open, prevClose) * (1 + sigma)
func Generate(profile *model.VolatilityProfile, sess session.Session, openPrice, prevClose float64, policy NoDataPolicy) []model.Boundary {
	lo := math.Min(openPrice, prevClose)
	hi := math.Max(openPrice, prevClose)

	slots := sess.Slots()
	out := make([]model.Boundary, 0, len(slots))
	var carry *model.Boundary
	for _, slot := range slots {
		b := model.Boundary{Slot: slot}
		if sigma, ok := profile.Lookup(slot); ok {
			b.Lower = lo * (1 - sigma)
			b.Upper = hi * (1 + sigma)
			b.Defined = true
			carry = &model.Boundary{Slot: slot, Lower: b.Lower, Upper: b.Upper, Defined: true}
		} else if policy == NoDataCarry && carry != nil {
			b.Lower = carry.Lower
			b.Upper = carry.Upper
			b.Defined = true
		}
		out = append(out, b)
	}
	return out
}
