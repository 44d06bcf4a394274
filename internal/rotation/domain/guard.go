// Package domain provides core business rules for the rotation bounded context.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// Refusal reasons surfaced verbatim to callers.
const (
	ReasonRotationDisabled = "Rotation is disabled"
	ReasonDelayed          = "Assignments delayed until working hours"
)

// Settings is the process-wide rotation policy snapshot. A fresh snapshot
// must be read on every assignment attempt; the guard never caches one.
type Settings struct {
	AllowAssignRotation      bool
	DelayAssignRotation      bool
	WorkFrom                 string // HH:MM, may wrap past midnight relative to WorkTo
	WorkTo                   string // HH:MM
	ReshuffleColdLeads       bool
	ReshuffleColdLeadsNumber int
}

// DefaultSettings are applied when the singleton row is first created.
func DefaultSettings() Settings {
	return Settings{
		AllowAssignRotation:      true,
		DelayAssignRotation:      false,
		WorkFrom:                 "09:00",
		WorkTo:                   "17:00",
		ReshuffleColdLeads:       false,
		ReshuffleColdLeadsNumber: 0,
	}
}

// Decision is the guard's verdict. A refusal is a normal negative result,
// not an error.
type Decision struct {
	OK     bool
	Reason string
}

// CanAssignNow decides whether a new assignment may proceed at the given
// instant. The window alone never blocks: only the delay flag combined with
// an out-of-window time does.
func CanAssignNow(settings Settings, at time.Time) Decision {
	if !settings.AllowAssignRotation {
		return Decision{OK: false, Reason: ReasonRotationDisabled}
	}

	if !WithinWorkingHours(at, settings.WorkFrom, settings.WorkTo) && settings.DelayAssignRotation {
		return Decision{OK: false, Reason: ReasonDelayed}
	}

	return Decision{OK: true}
}

// WithinWorkingHours reports whether the local time of day of at falls
// inside [from, to]. When from <= to the window is a same-day range,
// inclusive on both ends. When from > to the window wraps past midnight:
// the time qualifies when it is at or after from OR at or before to.
// An unparseable bound never blocks.
func WithinWorkingHours(at time.Time, from, to string) bool {
	fromMin, okFrom := parseClock(from)
	toMin, okTo := parseClock(to)
	if !okFrom || !okTo {
		return true
	}

	current := at.Hour()*60 + at.Minute()

	if fromMin <= toMin {
		return current >= fromMin && current <= toMin
	}
	return current >= fromMin || current <= toMin
}

// NextWindowOpen returns the next instant strictly after at whose time of
// day equals WorkFrom. Used to schedule delayed assignments. If WorkFrom is
// unparseable, at itself is returned.
func NextWindowOpen(settings Settings, at time.Time) time.Time {
	fromMin, ok := parseClock(settings.WorkFrom)
	if !ok {
		return at
	}

	next := time.Date(at.Year(), at.Month(), at.Day(), fromMin/60, fromMin%60, 0, 0, at.Location())
	if !next.After(at) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

// parseClock converts an HH:MM string to minutes since midnight.
func parseClock(value string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}

	return hours*60 + minutes, true
}
