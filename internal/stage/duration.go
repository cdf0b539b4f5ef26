package stage

import (
	"math"
	"time"
)

// CalendarDaysSince returns the whole calendar days between start and now,
// clamped at zero. Weekends and holidays are counted; stage age on the
// dashboard is plain calendar arithmetic.
//
// Source timestamps are wall-clock values even when they arrive carrying a
// UTC marker, so both ends are rebuilt at midnight in the reference
// location from their stored wall clock before differencing.
func CalendarDaysSince(start, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	diff := atMidnight(now, loc).Sub(atMidnight(start, loc))
	days := int(math.Round(diff.Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func atMidnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
