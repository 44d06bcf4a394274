package domain

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func TestWithinWorkingHoursSameDay(t *testing.T) {
	tests := []struct {
		clock time.Time
		want  bool
	}{
		{at(9, 0), true},   // inclusive lower bound
		{at(17, 0), true},  // inclusive upper bound
		{at(12, 30), true},
		{at(8, 59), false},
		{at(17, 1), false},
		{at(23, 0), false},
	}

	for _, tc := range tests {
		if got := WithinWorkingHours(tc.clock, "09:00", "17:00"); got != tc.want {
			t.Errorf("WithinWorkingHours(%s, 09:00, 17:00) = %v, want %v",
				tc.clock.Format("15:04"), got, tc.want)
		}
	}
}

func TestWithinWorkingHoursOvernightWrap(t *testing.T) {
	tests := []struct {
		clock time.Time
		want  bool
	}{
		{at(23, 0), true},
		{at(5, 0), true},
		{at(22, 0), true}, // inclusive at open
		{at(6, 0), true},  // inclusive at close
		{at(12, 0), false},
		{at(21, 59), false},
	}

	for _, tc := range tests {
		if got := WithinWorkingHours(tc.clock, "22:00", "06:00"); got != tc.want {
			t.Errorf("WithinWorkingHours(%s, 22:00, 06:00) = %v, want %v",
				tc.clock.Format("15:04"), got, tc.want)
		}
	}
}

func TestWithinWorkingHoursUnparseableNeverBlocks(t *testing.T) {
	if !WithinWorkingHours(at(3, 0), "", "17:00") {
		t.Error("empty bound should not block")
	}
	if !WithinWorkingHours(at(3, 0), "9am", "5pm") {
		t.Error("unparseable bounds should not block")
	}
}

func TestCanAssignNowDisabled(t *testing.T) {
	settings := DefaultSettings()
	settings.AllowAssignRotation = false

	d := CanAssignNow(settings, at(12, 0))
	if d.OK {
		t.Fatal("expected refusal when rotation is disabled")
	}
	if d.Reason != ReasonRotationDisabled {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonRotationDisabled)
	}
}

func TestCanAssignNowDelayedOutsideWindow(t *testing.T) {
	settings := Settings{
		AllowAssignRotation: true,
		DelayAssignRotation: true,
		WorkFrom:            "09:00",
		WorkTo:              "17:00",
	}

	d := CanAssignNow(settings, at(20, 0))
	if d.OK {
		t.Fatal("expected refusal outside the window with delay enabled")
	}
	if d.Reason != ReasonDelayed {
		t.Errorf("reason = %q, want %q", d.Reason, ReasonDelayed)
	}
}

func TestCanAssignNowOutsideWindowWithoutDelayStillOK(t *testing.T) {
	settings := Settings{
		AllowAssignRotation: true,
		DelayAssignRotation: false,
		WorkFrom:            "09:00",
		WorkTo:              "17:00",
	}

	if d := CanAssignNow(settings, at(20, 0)); !d.OK {
		t.Errorf("expected OK outside the window without delay flag, got refusal: %s", d.Reason)
	}
}

func TestCanAssignNowInsideWindow(t *testing.T) {
	settings := Settings{
		AllowAssignRotation: true,
		DelayAssignRotation: true,
		WorkFrom:            "09:00",
		WorkTo:              "17:00",
	}

	if d := CanAssignNow(settings, at(10, 15)); !d.OK {
		t.Errorf("expected OK inside the window, got refusal: %s", d.Reason)
	}
}

func TestNextWindowOpen(t *testing.T) {
	settings := Settings{WorkFrom: "09:00", WorkTo: "17:00"}

	// Before opening: same day.
	next := NextWindowOpen(settings, at(6, 0))
	if next.Hour() != 9 || next.Minute() != 0 || next.Day() != 10 {
		t.Errorf("expected 09:00 same day, got %s", next)
	}

	// After opening: next day.
	next = NextWindowOpen(settings, at(20, 0))
	if next.Hour() != 9 || next.Day() != 11 {
		t.Errorf("expected 09:00 next day, got %s", next)
	}

	// Exactly at opening: strictly after, so next day.
	next = NextWindowOpen(settings, at(9, 0))
	if next.Day() != 11 {
		t.Errorf("expected strictly-future opening, got %s", next)
	}
}
