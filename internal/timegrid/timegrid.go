// Package timegrid holds the pure time arithmetic shared by the schedule
// resolver and the availability engine. All times are barbershop-local
// minute-of-day integers; no timezone conversion happens anywhere.
package timegrid

import (
	"fmt"
	"time"
)

const (
	MinutesPerDay = 24 * 60

	ClockLayout = "15:04"
	DateLayout  = "2006-01-02"
)

// ToMinute converts "hh:mm" into a minute-of-day integer.
func ToMinute(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ToClock converts a minute-of-day integer back into "hh:mm".
func ToClock(minute int) string {
	minute %= MinutesPerDay
	if minute < 0 {
		minute += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// GenerateSlots returns the ordered candidate start minutes inside
// [openMinute, closeMinute). A start is emitted only when the full duration
// still fits before closing. Returns nil on non-positive duration or step.
func GenerateSlots(openMinute, closeMinute, durationMinutes, stepMinutes int) []int {
	if durationMinutes <= 0 || stepMinutes <= 0 {
		return nil
	}

	var starts []int
	for s := openMinute; s+durationMinutes <= closeMinute; s += stepMinutes {
		starts = append(starts, s)
	}
	return starts
}

// ParseDate parses a shop-local "YYYY-MM-DD" calendar date.
func ParseDate(date string) (time.Time, error) {
	return time.Parse(DateLayout, date)
}

// Weekday returns 0 (Sunday) .. 6 (Saturday) for a calendar date string.
func Weekday(date string) (int, error) {
	d, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(d.Weekday()), nil
}

// MinuteOf returns the minute-of-day of a wall-clock instant.
func MinuteOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SameDate reports whether t falls on the given calendar date.
func SameDate(t time.Time, date string) bool {
	return t.Format(DateLayout) == date
}
