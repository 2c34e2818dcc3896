package session

import "testing"

func TestDefaultSlots(t *testing.T) {
	s := Default()
	slots := s.Slots()

	// 09:30-11:30 and 13:00-15:00 inclusive at 1-minute step.
	if len(slots) != 242 {
		t.Fatalf("expected 242 slots, got %d", len(slots))
	}
	if slots[0].String() != "09:30:00" {
		t.Errorf("first slot: expected 09:30:00, got %s", slots[0])
	}
	if slots[len(slots)-1].String() != "15:00:00" {
		t.Errorf("last slot: expected 15:00:00, got %s", slots[len(slots)-1])
	}
	// Morning session ends at 11:30, afternoon resumes at 13:00.
	if slots[120].String() != "11:30:00" {
		t.Errorf("slot 120: expected 11:30:00, got %s", slots[120])
	}
	if slots[121].String() != "13:00:00" {
		t.Errorf("slot 121: expected 13:00:00, got %s", slots[121])
	}
}

func TestContains(t *testing.T) {
	s := Default()
	tests := []struct {
		time string
		want bool
	}{
		{"09:30:00", true},
		{"09:29:59", false},
		{"10:45:00", true},
		{"11:30:00", true},
		{"11:31:00", false}, // lunch break
		{"12:00:00", false},
		{"13:00:00", true},
		{"15:00:00", true},
		{"15:00:01", false},
	}
	for _, tt := range tests {
		slot, err := ParseSlot(tt.time)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.time, err)
		}
		if got := s.Contains(slot); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.time, got, tt.want)
		}
	}
}

func TestParseSlot(t *testing.T) {
	slot, err := ParseSlot("09:31:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != NewSlot(9, 31, 0) {
		t.Errorf("expected 09:31:00, got %s", slot)
	}
	if slot.String() != "09:31:00" {
		t.Errorf("round trip: got %s", slot.String())
	}

	for _, bad := range []string{
		"", "noon", "25:00:00", "09:61:00",
		"09:31:00xyz", // trailing text must not be silently truncated
		"09:31",
		"09:31:00 ",
	} {
		if _, err := ParseSlot(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestCustomSession(t *testing.T) {
	// A market with a single continuous session at 5-minute cadence.
	s := Session{
		Ranges:      []Range{{Start: NewSlot(9, 0, 0), End: NewSlot(10, 0, 0)}},
		StepSeconds: 300,
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	slots := s.Slots()
	if len(slots) != 13 {
		t.Fatalf("expected 13 slots, got %d", len(slots))
	}
	if slots[1].String() != "09:05:00" {
		t.Errorf("expected 09:05:00, got %s", slots[1])
	}
}

func TestValidateRejectsBadSessions(t *testing.T) {
	tests := []struct {
		name string
		s    Session
	}{
		{"empty", Session{StepSeconds: 60}},
		{"zero step", Session{Ranges: []Range{{Start: 0, End: 60}}}},
		{"inverted range", Session{
			Ranges:      []Range{{Start: NewSlot(10, 0, 0), End: NewSlot(9, 0, 0)}},
			StepSeconds: 60,
		}},
		{"overlap", Session{
			Ranges: []Range{
				{Start: NewSlot(9, 0, 0), End: NewSlot(11, 0, 0)},
				{Start: NewSlot(10, 0, 0), End: NewSlot(12, 0, 0)},
			},
			StepSeconds: 60,
		}},
	}
	for _, tt := range tests {
		if err := tt.s.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}
