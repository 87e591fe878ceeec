package appointment

import (
	"time"

	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// GenerateSlots returns start, start+interval, ... for every slot whose end
// still fits in [start, end]. Leftover time is dropped.
func GenerateSlots(start, end time.Time, interval time.Duration) []time.Time {
	if interval <= 0 {
		return nil
	}

	var slots []time.Time
	for cur := start; !cur.Add(interval).After(end); cur = cur.Add(interval) {
		slots = append(slots, cur)
	}
	return slots
}

// ParseClock reads an HH:MM value as a time on the zero date.
func ParseClock(hm string) (time.Time, error) {
	return time.Parse(timezone.ClockLayout, hm)
}

func FormatClock(t time.Time) string {
	return t.Format(timezone.ClockLayout)
}

// EndOf returns the HH:MM end of a slot starting at hm.
func EndOf(start time.Time, duration time.Duration) string {
	return FormatClock(start.Add(duration))
}
