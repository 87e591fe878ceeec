package appointment

import (
	"time"

	"github.com/SaltaGet/Back-SIJAC/internal/httperr"
)

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ===============================
// Windows
// ===============================

type Window struct {
	Start time.Time
	End   time.Time
}

// Contains is inclusive on both bounds.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) Slots(interval time.Duration) []time.Time {
	return GenerateSlots(w.Start, w.End, interval)
}

// Schedule is the validated pair of windows of one availability.
type Schedule struct {
	Primary   Window
	Secondary *Window
}

// NewSchedule validates the raw HH:MM bounds. Both optional bounds must be
// given together, and the optional window must start after the primary one
// ends.
func NewSchedule(start, end string, startOpt, endOpt *string) (Schedule, error) {
	primary, err := parseWindow(start, end)
	if err != nil {
		return Schedule{}, err
	}

	s := Schedule{Primary: primary}

	hasStart := startOpt != nil && *startOpt != ""
	hasEnd := endOpt != nil && *endOpt != ""
	if hasStart != hasEnd {
		return Schedule{}, httperr.ErrInvalidOperation(
			"incomplete_optional_window",
			"start_time_optional and end_time_optional must be sent together",
		)
	}
	if !hasStart {
		return s, nil
	}

	secondary, err := parseWindow(*startOpt, *endOpt)
	if err != nil {
		return Schedule{}, err
	}
	if !secondary.Start.After(primary.End) {
		return Schedule{}, httperr.ErrInvalidOperation(
			"optional_window_overlaps",
			"start_time_optional must be after end_time",
		)
	}

	s.Secondary = &secondary
	return s, nil
}

func parseWindow(start, end string) (Window, error) {
	st, err := ParseClock(start)
	if err != nil {
		return Window{}, httperr.ErrInvalidOperation("invalid_time_format", start)
	}
	en, err := ParseClock(end)
	if err != nil {
		return Window{}, httperr.ErrInvalidOperation("invalid_time_format", end)
	}
	if !en.After(st) {
		return Window{}, httperr.ErrInvalidOperation(
			"invalid_time_range",
			"end time must be after start time",
		)
	}
	return Window{Start: st, End: en}, nil
}

func (s Schedule) Windows() []Window {
	if s.Secondary == nil {
		return []Window{s.Primary}
	}
	return []Window{s.Primary, *s.Secondary}
}

// SlotStarts concatenates the slots of every window.
func (s Schedule) SlotStarts(interval time.Duration) []time.Time {
	var out []time.Time
	for _, w := range s.Windows() {
		out = append(out, w.Slots(interval)...)
	}
	return out
}

func (s Schedule) Contains(t time.Time) bool {
	for _, w := range s.Windows() {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

// Fields returns the storable HH:MM representation.
func (s Schedule) Fields() (start, end string, startOpt, endOpt *string) {
	start = FormatClock(s.Primary.Start)
	end = FormatClock(s.Primary.End)
	if s.Secondary != nil {
		so := FormatClock(s.Secondary.Start)
		eo := FormatClock(s.Secondary.End)
		startOpt, endOpt = &so, &eo
	}
	return
}
