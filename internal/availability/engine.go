// Package availability turns a resolved day profile plus the existing
// occupying appointments into the caller-facing slot list.
package availability

import (
	"github.com/barbergrid/api/internal/domain/schedule"
	"github.com/barbergrid/api/internal/timegrid"
)

// Interval is a half-open [Start, End) minute-of-day range.
type Interval struct {
	Start int
	End   int
}

// Overlaps is the shared interval overlap test.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}

type Slot struct {
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Available   bool   `json:"available"`
}

// Compute generates every candidate slot over the profile's open window and
// marks each one available or not. Generate-then-mark is deliberate: the
// calendar renders taken slots too, while the booking guard only consults
// the Available flag. nowMinute, when non-nil, is the current shop-local
// minute of the requested date; candidates starting at or before it are
// unavailable. The returned slice is chronological and never mutated.
func Compute(
	profile schedule.DayProfile,
	durationMinutes int,
	occupying []Interval,
	stepMinutes int,
	nowMinute *int,
) []Slot {

	if !profile.Open {
		return nil
	}

	starts := timegrid.GenerateSlots(
		profile.OpenMinute,
		profile.CloseMinute,
		durationMinutes,
		stepMinutes,
	)

	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		iv := Interval{Start: start, End: start + durationMinutes}

		available := true
		if profile.Break != nil &&
			Overlaps(iv, Interval{Start: profile.Break.Start, End: profile.Break.End}) {
			available = false
		}

		if available {
			for _, busy := range occupying {
				if Overlaps(iv, busy) {
					available = false
					break
				}
			}
		}

		if available && nowMinute != nil && start <= *nowMinute {
			available = false
		}

		slots = append(slots, Slot{
			StartMinute: iv.Start,
			EndMinute:   iv.End,
			Start:       timegrid.ToClock(iv.Start),
			End:         timegrid.ToClock(iv.End),
			Available:   available,
		})
	}

	return slots
}

// AvailableOnly is the derived bookable view; it never re-runs Compute.
func AvailableOnly(slots []Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether startMinute is an available candidate start.
func Contains(slots []Slot, startMinute int) bool {
	for _, s := range slots {
		if s.StartMinute == startMinute {
			return s.Available
		}
	}
	return false
}
