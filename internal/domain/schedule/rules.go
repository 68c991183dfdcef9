// Package schedule resolves the effective day profile for one staff member on
// one calendar date from the layered rule sources: weekly working-hours rules
// at shop and staff level, plus one-off date exceptions at both levels.
package schedule

import (
	"github.com/barbergrid/api/internal/apperr"
)

type ExceptionKind string

const (
	ExceptionClosed        ExceptionKind = "closed"
	ExceptionExtendedHours ExceptionKind = "extended_hours"
	ExceptionSpecialHours  ExceptionKind = "special_hours"
)

func ValidExceptionKind(kind string) bool {
	switch ExceptionKind(kind) {
	case ExceptionClosed, ExceptionExtendedHours, ExceptionSpecialHours:
		return true
	}
	return false
}

// Window is a half-open [Start, End) minute-of-day interval.
type Window struct {
	Start int `json:"start_minute"`
	End   int `json:"end_minute"`
}

// WeeklySource is a weekly rule projected onto a single weekday.
type WeeklySource struct {
	Open        bool
	OpenMinute  int
	CloseMinute int
	Break       *Window
}

// ExceptionSource is a date exception matched to the requested date. For
// kind "closed" the minutes are meaningless; for the other kinds they fully
// replace the weekly hours. Exceptions never carry a break.
type ExceptionSource struct {
	Kind        ExceptionKind
	OpenMinute  int
	CloseMinute int
	Description string
}

// ValidateHours checks the invariants shared by weekly rules and hour-bearing
// exceptions: close after open, break (when present) inside the open window.
func ValidateHours(openMinute, closeMinute int, brk *Window) error {
	if openMinute < 0 || closeMinute <= openMinute {
		return apperr.Validation("invalid_hours")
	}
	if brk != nil {
		if brk.Start < openMinute || brk.End <= brk.Start || brk.End > closeMinute {
			return apperr.Validation("invalid_break")
		}
	}
	return nil
}
