package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barbergrid/api/internal/domain/schedule"
)

func openProfile(openMin, closeMin int, brk *schedule.Window) schedule.DayProfile {
	return schedule.DayProfile{
		Open:        true,
		OpenMinute:  openMin,
		CloseMinute: closeMin,
		Break:       brk,
	}
}

func TestComputeClosedDay(t *testing.T) {
	slots := Compute(schedule.Closed("holiday"), 30, nil, 30, nil)
	assert.Empty(t, slots)
}

// Monday 09:00-18:00 with lunch 12:00-13:00, 30-minute service: the first
// candidate is 09:00 and nothing bookable overlaps the lunch window.
func TestComputeLunchBreakBlocksSlots(t *testing.T) {
	profile := openProfile(540, 1080, &schedule.Window{Start: 720, End: 780})

	slots := Compute(profile, 30, nil, 30, nil)
	require.NotEmpty(t, slots)

	assert.Equal(t, 540, slots[0].StartMinute)
	assert.Equal(t, "09:00", slots[0].Start)
	assert.True(t, slots[0].Available)

	lunch := Interval{Start: 720, End: 780}
	for _, s := range slots {
		iv := Interval{Start: s.StartMinute, End: s.EndMinute}
		if Overlaps(iv, lunch) {
			assert.False(t, s.Available, "slot %s overlaps lunch", s.Start)
		} else {
			assert.True(t, s.Available, "slot %s clear of lunch", s.Start)
		}
	}

	// 11:30 fits exactly before the break, 12:30 is inside it.
	assert.True(t, Contains(slots, 690))
	assert.False(t, Contains(slots, 750))
}

func TestComputeMarksOccupiedSlots(t *testing.T) {
	profile := openProfile(540, 720, nil)
	busy := []Interval{{Start: 600, End: 630}}

	slots := Compute(profile, 30, busy, 30, nil)
	require.Len(t, slots, 6)

	for _, s := range slots {
		if s.StartMinute == 600 {
			assert.False(t, s.Available)
		} else {
			assert.True(t, s.Available, "slot %s", s.Start)
		}
	}
}

func TestComputePartialOverlapBlocks(t *testing.T) {
	profile := openProfile(540, 720, nil)
	// 45-minute appointment straddling two 30-minute candidates.
	busy := []Interval{{Start: 585, End: 630}}

	slots := Compute(profile, 30, busy, 30, nil)

	assert.True(t, Contains(slots, 540))
	assert.False(t, Contains(slots, 570))
	assert.False(t, Contains(slots, 600))
	assert.True(t, Contains(slots, 630))
}

func TestComputeNowCutoff(t *testing.T) {
	profile := openProfile(540, 720, nil)

	now := 600
	slots := Compute(profile, 30, nil, 30, &now)

	// Starts at or before now are not bookable.
	assert.False(t, Contains(slots, 540))
	assert.False(t, Contains(slots, 570))
	assert.False(t, Contains(slots, 600))
	assert.True(t, Contains(slots, 630))
}

func TestComputeChronologicalAndContained(t *testing.T) {
	profile := openProfile(480, 1110, nil)

	slots := Compute(profile, 40, []Interval{{Start: 500, End: 560}}, 15, nil)
	require.NotEmpty(t, slots)

	prev := -1
	for _, s := range slots {
		assert.Greater(t, s.StartMinute, prev)
		assert.GreaterOrEqual(t, s.StartMinute, 480)
		assert.LessOrEqual(t, s.EndMinute, 1110)
		assert.Equal(t, s.StartMinute+40, s.EndMinute)
		prev = s.StartMinute
	}
}

func TestAvailableOnly(t *testing.T) {
	profile := openProfile(540, 720, nil)
	busy := []Interval{{Start: 540, End: 570}}

	slots := Compute(profile, 30, busy, 30, nil)
	free := AvailableOnly(slots)

	assert.Len(t, slots, 6)
	assert.Len(t, free, 5)
	for _, s := range free {
		assert.True(t, s.Available)
	}

	// Derived view, original untouched.
	assert.False(t, slots[0].Available)
}

func TestContainsUnknownStart(t *testing.T) {
	profile := openProfile(540, 720, nil)
	slots := Compute(profile, 30, nil, 30, nil)

	// 09:10 is not on the grid at all.
	assert.False(t, Contains(slots, 550))
}

func TestOverlaps(t *testing.T) {
	a := Interval{Start: 540, End: 570}

	assert.True(t, Overlaps(a, Interval{Start: 560, End: 590}))
	assert.True(t, Overlaps(a, Interval{Start: 530, End: 545}))
	assert.True(t, Overlaps(a, Interval{Start: 550, End: 560}))

	// Touching endpoints do not overlap, intervals are half-open.
	assert.False(t, Overlaps(a, Interval{Start: 570, End: 600}))
	assert.False(t, Overlaps(a, Interval{Start: 510, End: 540}))
}
