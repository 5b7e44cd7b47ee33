package freeze

import (
	"fmt"
	"time"

	"github.com/mohitkumar/shipyard/model"
)

func location(w model.FreezeWindow) (*time.Location, error) {
	if w.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(w.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", w.TimeZone, err)
	}
	return loc, nil
}

func effectiveEnd(w model.FreezeWindow) int64 {
	if w.EndTime > 0 {
		return w.EndTime
	}
	return w.StartTime + w.DurationMinutes*60_000
}

func ValidateWindow(w model.FreezeWindow) error {
	if _, err := location(w); err != nil {
		return err
	}
	if w.StartTime <= 0 {
		return fmt.Errorf("freeze window start time is required")
	}
	if w.EndTime > 0 && w.DurationMinutes > 0 {
		return fmt.Errorf("freeze window must set either endTime or durationMinutes, not both")
	}
	if w.EndTime <= 0 && w.DurationMinutes <= 0 {
		return fmt.Errorf("freeze window must set endTime or durationMinutes")
	}
	if w.EndTime > 0 && w.EndTime <= w.StartTime {
		return fmt.Errorf("freeze window endTime must be after startTime")
	}
	if w.Recurrence != nil {
		switch w.Recurrence.Type {
		case model.RECURRENCE_DAILY, model.RECURRENCE_WEEKLY, model.RECURRENCE_MONTHLY, model.RECURRENCE_YEARLY:
		default:
			return fmt.Errorf("unknown recurrence type %s", w.Recurrence.Type)
		}
	}
	return nil
}

func advance(start time.Time, end time.Time, recurrence model.RecurrenceType) (time.Time, time.Time) {
	switch recurrence {
	case model.RECURRENCE_DAILY:
		return start.AddDate(0, 0, 1), end.AddDate(0, 0, 1)
	case model.RECURRENCE_WEEKLY:
		return start.AddDate(0, 0, 7), end.AddDate(0, 0, 7)
	case model.RECURRENCE_MONTHLY:
		return start.AddDate(0, 1, 0), end.AddDate(0, 1, 0)
	default:
		return start.AddDate(1, 0, 0), end.AddDate(1, 0, 0)
	}
}

// UpcomingTimeWindows returns a lazy sequence over the window's occurrences
// that have not ended by now: each call yields the next one. Evaluating in
// the window's own timezone keeps AddDate arithmetic correct across DST.
func UpcomingTimeWindows(w model.FreezeWindow, now time.Time) func() (time.Time, time.Time, bool) {
	loc, err := location(w)
	if err != nil {
		return func() (time.Time, time.Time, bool) { return time.Time{}, time.Time{}, false }
	}
	start := time.UnixMilli(w.StartTime).In(loc)
	end := time.UnixMilli(effectiveEnd(w)).In(loc)
	exhausted := false
	return func() (time.Time, time.Time, bool) {
		for !exhausted {
			if w.Recurrence == nil {
				exhausted = true
				if end.After(now) {
					return start, end, true
				}
				return time.Time{}, time.Time{}, false
			}
			if w.Recurrence.Until != nil && start.After(time.UnixMilli(*w.Recurrence.Until).In(loc)) {
				exhausted = true
				return time.Time{}, time.Time{}, false
			}
			if end.After(now) {
				s, e := start, end
				start, end = advance(start, end, w.Recurrence.Type)
				return s, e, true
			}
			start, end = advance(start, end, w.Recurrence.Type)
		}
		return time.Time{}, time.Time{}, false
	}
}

// IsWindowActive reports whether now falls inside [start, end) of the next
// unconsumed occurrence.
func IsWindowActive(w model.FreezeWindow, now time.Time) (bool, error) {
	if err := ValidateWindow(w); err != nil {
		return false, err
	}
	next := UpcomingTimeWindows(w, now)
	start, _, ok := next()
	if !ok {
		return false, nil
	}
	return !now.Before(start), nil
}

func anyWindowActive(windows []model.FreezeWindow, now time.Time) (bool, error) {
	for _, w := range windows {
		active, err := IsWindowActive(w, now)
		if err != nil {
			return false, err
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}

// NextIteration is the start of the first occurrence strictly in the future,
// in epoch millis, or nil when the sequence is exhausted.
func NextIteration(w model.FreezeWindow, now time.Time) *int64 {
	next := UpcomingTimeWindows(w, now)
	for {
		start, _, ok := next()
		if !ok {
			return nil
		}
		if start.After(now) {
			millis := start.UnixMilli()
			return &millis
		}
	}
}

func nextIterationForWindows(windows []model.FreezeWindow, now time.Time) *int64 {
	var earliest *int64
	for _, w := range windows {
		next := NextIteration(w, now)
		if next == nil {
			continue
		}
		if earliest == nil || *next < *earliest {
			earliest = next
		}
	}
	return earliest
}
