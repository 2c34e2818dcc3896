package history

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"PriceBand/internal/model"
)

// ErrInsufficientHistory is returned when fewer qualifying days exist than
// the requested window size and short windows are not allowed.
var ErrInsufficientHistory = errors.New("insufficient trading history")

// ErrDuplicateDate is returned when two day series share a calendar date for
// the same security. Duplicate input is a data error, not something to
// silently deduplicate.
var ErrDuplicateDate = errors.New("duplicate trading date")

// Select picks the window most recent trading days strictly before target,
// in descending date order. Days without any bars do not qualify.
//
// With allowShort, a window shorter than requested is returned with a
// warning; otherwise ErrInsufficientHistory is returned.
func Select(days []*model.DaySeries, target time.Time, window int, allowShort bool) ([]*model.DaySeries, error) {
	if window <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", window)
	}

	target = truncateDate(target)
	seen := make(map[time.Time]bool, len(days))
	qualifying := make([]*model.DaySeries, 0, len(days))
	for _, d := range days {
		date := truncateDate(d.Date)
		if seen[date] {
			return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateDate, d.SecurityID, date.Format("2006-01-02"))
		}
		seen[date] = true
		if !date.Before(target) {
			continue
		}
		if len(d.Bars) == 0 {
			continue
		}
		qualifying = append(qualifying, d)
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].Date.After(qualifying[j].Date)
	})

	if len(qualifying) < window {
		if !allowShort {
			return nil, fmt.Errorf("%w: %d of %d days before %s",
				ErrInsufficientHistory, len(qualifying), window, target.Format("2006-01-02"))
		}
		if len(qualifying) == 0 {
			return nil, fmt.Errorf("%w: no days before %s",
				ErrInsufficientHistory, target.Format("2006-01-02"))
		}
		log.Printf("[WARN] only %d days available, less than %d requested", len(qualifying), window)
		return qualifying, nil
	}
	return qualifying[:window], nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
