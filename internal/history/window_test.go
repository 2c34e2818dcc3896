package history

import (
	"errors"
	"testing"
	"time"

	"PriceBand/internal/model"
	"PriceBand/internal/session"
)

func day(code string, y, m, d int, withBar bool) *model.DaySeries {
	ds := model.NewDaySeries(code, time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC))
	if withBar {
		slot := session.NewSlot(9, 31, 0)
		ds.Bars[slot] = model.MinuteBar{SecurityID: code, Date: ds.Date, Slot: slot, Close: 10}
	}
	return ds
}

func TestSelectExactWindow(t *testing.T) {
	days := []*model.DaySeries{
		day("600000", 2024, 3, 1, true),
		day("600000", 2024, 3, 4, true),
		day("600000", 2024, 3, 5, true),
	}
	target := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	got, err := Select(days, target, 3, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 days, got %d", len(got))
	}
	// Descending date order, no duplicates.
	for i := 1; i < len(got); i++ {
		if !got[i].Date.Before(got[i-1].Date) {
			t.Errorf("days not in descending order: %v before %v", got[i-1].Date, got[i].Date)
		}
	}
	if !got[0].Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("most recent day: got %v", got[0].Date)
	}
}

func TestSelectStrictlyBeforeTarget(t *testing.T) {
	days := []*model.DaySeries{
		day("600000", 2024, 3, 4, true),
		day("600000", 2024, 3, 5, true),
	}
	// Target equals the latest date: that day must not qualify.
	target := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	got, err := Select(days, target, 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected only 2024-03-04, got %v", got)
	}
}

func TestSelectInsufficientHistory(t *testing.T) {
	days := []*model.DaySeries{
		day("600000", 2024, 3, 4, true),
		day("600000", 2024, 3, 5, true),
	}
	target := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	if _, err := Select(days, target, 14, false); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}

	// allowShort proceeds with the short window.
	got, err := Select(days, target, 14, true)
	if err != nil {
		t.Fatalf("unexpected error with allowShort: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %d", len(got))
	}
}

func TestSelectNoQualifyingDays(t *testing.T) {
	days := []*model.DaySeries{day("600000", 2024, 3, 4, true)}
	target := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// Even allowShort cannot produce a window from nothing.
	if _, err := Select(days, target, 14, true); !errors.Is(err, ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestSelectDuplicateDate(t *testing.T) {
	days := []*model.DaySeries{
		day("600000", 2024, 3, 4, true),
		day("600000", 2024, 3, 4, true),
	}
	target := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	if _, err := Select(days, target, 1, false); !errors.Is(err, ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got %v", err)
	}
}

func TestSelectSkipsEmptyDays(t *testing.T) {
	days := []*model.DaySeries{
		day("600000", 2024, 3, 4, true),
		day("600000", 2024, 3, 5, false), // no bars: not a valid trading day
	}
	target := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)

	got, err := Select(days, target, 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Date.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the non-empty day only, got %v", got)
	}
}
