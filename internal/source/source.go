package source

import (
	"errors"

	"PriceBand/internal/model"
)

// ErrUnknownSecurity is returned when a requested security code is absent
// from the data source or the opening-price table.
var ErrUnknownSecurity = errors.New("unknown security")

// ErrNoTradingData is returned when a source yields no usable bars at all.
var ErrNoTradingData = errors.New("no trading data")

// Loader supplies the historical minute-bar series, grouped per security and
// per calendar date, days in chronological order.
type Loader interface {
	Load() (map[string][]*model.DaySeries, error)
	Name() string
}

// OpenPrices resolves today's opening price for a security.
type OpenPrices interface {
	Resolve(securityID string) (float64, error)
}

// LiteralOpen resolves every security to the same fixed opening price,
// the single-stock command-line case.
type LiteralOpen float64

func (p LiteralOpen) Resolve(string) (float64, error) { return float64(p), nil }

// TableOpen resolves opening prices from a per-security lookup table.
type TableOpen map[string]float64

func (t TableOpen) Resolve(securityID string) (float64, error) {
	p, ok := t[securityID]
	if !ok {
		return 0, ErrUnknownSecurity
	}
	return p, nil
}
