package services

import (
	"strings"
	"testing"
	"time"
)

func mustTime(t *testing.T, hour, min, sec int) time.Time {
	t.Helper()
	return time.Date(2025, time.June, 10, hour, min, sec, 0, time.UTC)
}

func TestGenerateTimeSlots_Midday(t *testing.T) {
	now := mustTime(t, 10, 0, 0)
	slots := GenerateTimeSlots(now)

	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	if slots[0].Value != "10:30" || slots[0].Display != "10:30 AM" {
		t.Errorf("first slot = %+v, want 10:30 / 10:30 AM", slots[0])
	}
	// 15-minute grid, strictly increasing
	for i := 1; i < len(slots); i++ {
		prev, _ := time.Parse("15:04", slots[i-1].Value)
		cur, _ := time.Parse("15:04", slots[i].Value)
		if cur.Sub(prev) != 15*time.Minute {
			t.Errorf("slot %d: %s -> %s, want 15m apart", i, slots[i-1].Value, slots[i].Value)
		}
	}
	for _, s := range slots {
		if strings.HasPrefix(s.Display, "Tomorrow") {
			t.Errorf("unexpected Tomorrow slot at midday: %+v", s)
		}
	}
}

func TestGenerateTimeSlots_RoundsUpToGrid(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantFirst string
	}{
		{"on the grid", mustTime(t, 10, 0, 0), "10:30"},
		{"rounds up", mustTime(t, 10, 3, 20), "10:45"},
		{"seconds dropped before rounding", mustTime(t, 10, 0, 45), "10:30"},
		{"just past a boundary", mustTime(t, 10, 16, 0), "11:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := GenerateTimeSlots(tt.now)
			if len(slots) == 0 {
				t.Fatal("no slots")
			}
			if slots[0].Value != tt.wantFirst {
				t.Errorf("first slot = %s, want %s", slots[0].Value, tt.wantFirst)
			}
		})
	}
}

func TestGenerateTimeSlots_ClampsToOpening(t *testing.T) {
	slots := GenerateTimeSlots(mustTime(t, 5, 0, 0))
	if len(slots) == 0 {
		t.Fatal("no slots")
	}
	if slots[0].Value != "08:00" || slots[0].Display != "8:00 AM" {
		t.Errorf("first slot = %+v, want 08:00 / 8:00 AM", slots[0])
	}
}

func TestGenerateTimeSlots_SpillsIntoTomorrow(t *testing.T) {
	// 23:00 + 30m prep leaves only 23:30, 23:45 and midnight today.
	slots := GenerateTimeSlots(mustTime(t, 23, 0, 0))
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	today := []string{"23:30", "23:45", "00:00"}
	for i, want := range today {
		if slots[i].Value != want {
			t.Errorf("slot %d = %s, want %s", i, slots[i].Value, want)
		}
		if strings.HasPrefix(slots[i].Display, "Tomorrow") {
			t.Errorf("slot %d labeled Tomorrow, want same-day", i)
		}
	}
	if got := slots[3].Display; got != "Tomorrow 8:00 AM" {
		t.Errorf("slot 3 display = %q, want \"Tomorrow 8:00 AM\"", got)
	}
	for _, s := range slots[3:] {
		if !strings.HasPrefix(s.Display, "Tomorrow") {
			t.Errorf("next-day slot missing Tomorrow prefix: %+v", s)
		}
	}
}

func TestGenerateTimeSlots_PastClosing(t *testing.T) {
	// 23:45 + 30m rounds past midnight; everything comes from tomorrow.
	slots := GenerateTimeSlots(mustTime(t, 23, 45, 0))
	if len(slots) != 16 {
		t.Fatalf("len(slots) = %d, want 16", len(slots))
	}
	for i, s := range slots {
		if !strings.HasPrefix(s.Display, "Tomorrow") {
			t.Errorf("slot %d = %+v, want Tomorrow label", i, s)
		}
	}
	if slots[0].Value != "08:00" {
		t.Errorf("first slot = %s, want 08:00", slots[0].Value)
	}
}

func TestGenerateTimeSlots_Idempotent(t *testing.T) {
	now := mustTime(t, 14, 7, 33)
	a := GenerateTimeSlots(now)
	b := GenerateTimeSlots(now)
	if len(a) != len(b) {
		t.Fatalf("len mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("slot %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateTimeSlots_AfternoonDisplay(t *testing.T) {
	slots := GenerateTimeSlots(mustTime(t, 13, 40, 0))
	if len(slots) == 0 {
		t.Fatal("no slots")
	}
	if slots[0].Value != "14:15" || slots[0].Display != "2:15 PM" {
		t.Errorf("first slot = %+v, want 14:15 / 2:15 PM", slots[0])
	}
}

func TestFormatSlotValue(t *testing.T) {
	slots := []TimeSlot{
		{Value: "14:15", Display: "2:15 PM"},
		{Value: "08:00", Display: "Tomorrow 8:00 AM"},
	}
	tests := []struct {
		value string
		want  string
	}{
		{"14:15", "2:15 PM"},
		{"08:00", "Tomorrow 8:00 AM"},
		{"09:30", "09:30"}, // unknown token falls back to itself
	}
	for _, tt := range tests {
		if got := FormatSlotValue(slots, tt.value); got != tt.want {
			t.Errorf("FormatSlotValue(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
