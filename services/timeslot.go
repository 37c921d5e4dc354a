package services

import (
	"fmt"
	"time"
)

// Pickup scheduling rules. Fixed for the café, not user-configurable.
const (
	PrepMinutes  = 30 // minimum preparation buffer
	SlotInterval = 15 // minutes between offered slots
	OpeningHour  = 8
	ClosingHour  = 24 // midnight, same day
)

const (
	maxSlots      = 16 // final list is truncated to this
	maxAccumulate = 20 // hard stop while spilling into tomorrow
	minTodaySlots = 4  // fewer than this -> offer tomorrow too
)

// TimeSlot is one selectable pickup time. Value is the 24-hour "HH:MM"
// token used in callback data; Display is what the customer sees.
type TimeSlot struct {
	Value   string
	Display string
}

// GenerateTimeSlots returns the pickup times a customer may choose at the
// given moment, earliest first. The earliest slot is now + PrepMinutes
// rounded up to the interval grid and never before opening. Slots run
// through closing time; if the rest of today yields fewer than 4, slots
// continue from tomorrow's opening with a "Tomorrow" label. Idempotent for
// a fixed now.
func GenerateTimeSlots(now time.Time) []TimeSlot {
	var slots []TimeSlot

	start := roundUpToInterval(now.Add(PrepMinutes * time.Minute))
	if start.Hour() < OpeningHour {
		start = time.Date(start.Year(), start.Month(), start.Day(), OpeningHour, 0, 0, 0, start.Location())
	}

	endToday := startOfDay(now).Add(ClosingHour * time.Hour)
	for t := start; !t.After(endToday); t = t.Add(SlotInterval * time.Minute) {
		slots = append(slots, TimeSlot{Value: slotValue(t), Display: slotDisplay(t)})
	}

	if len(slots) < minTodaySlots {
		tomorrow := startOfDay(now).AddDate(0, 0, 1)
		endTomorrow := tomorrow.Add(ClosingHour * time.Hour)
		open := tomorrow.Add(OpeningHour * time.Hour)
		for t := open; !t.After(endTomorrow) && len(slots) < maxAccumulate; t = t.Add(SlotInterval * time.Minute) {
			slots = append(slots, TimeSlot{Value: slotValue(t), Display: "Tomorrow " + slotDisplay(t)})
		}
	}

	if len(slots) > maxSlots {
		slots = slots[:maxSlots]
	}
	return slots
}

// FormatSlotValue resolves a selected "HH:MM" token to its display label
// against the given slot list. Falls back to the raw token when the list
// has since been regenerated past it.
func FormatSlotValue(slots []TimeSlot, value string) string {
	for _, s := range slots {
		if s.Value == value {
			return s.Display
		}
	}
	return value
}

// roundUpToInterval drops seconds, then rounds the minute up to the next
// slot boundary. A minute already on the grid is kept.
func roundUpToInterval(t time.Time) time.Time {
	m := (t.Minute() + SlotInterval - 1) / SlotInterval * SlotInterval
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).
		Add(time.Duration(m) * time.Minute)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func slotValue(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func slotDisplay(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	ampm := "AM"
	if t.Hour() >= 12 {
		ampm = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, t.Minute(), ampm)
}
