package model

import (
	"time"

	"PriceBand/internal/session"
)

// MinuteBar represents a single one-minute observation for one security.
type MinuteBar struct {
	SecurityID string
	Date       time.Time // calendar date, truncated to midnight
	Slot       session.Slot
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	Turnover   float64
}

// DaySeries holds the bars of one security on one calendar date, keyed by
// slot. At most one bar per slot.
type DaySeries struct {
	SecurityID string
	Date       time.Time
	Bars       map[session.Slot]MinuteBar
}

// NewDaySeries creates an empty DaySeries for a security and date.
func NewDaySeries(securityID string, date time.Time) *DaySeries {
	return &DaySeries{
		SecurityID: securityID,
		Date:       date,
		Bars:       make(map[session.Slot]MinuteBar),
	}
}

// FirstInSession returns the bar at the earliest in-session slot present,
// or false if the day holds no in-session bar.
func (d *DaySeries) FirstInSession(sess session.Session) (MinuteBar, bool) {
	var best MinuteBar
	found := false
	for slot, bar := range d.Bars {
		if !sess.Contains(slot) {
			continue
		}
		if !found || slot < best.Slot {
			best = bar
			found = true
		}
	}
	return best, found
}

// LastInSession returns the bar at the latest in-session slot present,
// or false if the day holds no in-session bar.
func (d *DaySeries) LastInSession(sess session.Session) (MinuteBar, bool) {
	var best MinuteBar
	found := false
	for slot, bar := range d.Bars {
		if !sess.Contains(slot) {
			continue
		}
		if !found || slot > best.Slot {
			best = bar
			found = true
		}
	}
	return best, found
}
