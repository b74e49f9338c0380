package scheduling

import (
	"time"

	"tablebook/pkg/model"
)

// EstimateNextAvailable returns the earliest time any candidate table frees
// up, never before start and never after start+maxWait.
//
// Only the first booking still running at or after start is considered per
// table, so back-to-back reservations make this a lower bound.
func EstimateNextAvailable(start time.Time, candidates []Candidate, maxWait time.Duration, defaultMinutes int) time.Time {
	next := start.Add(maxWait)

	for _, c := range candidates {
		first := firstUpcoming(c.Bookings, start, defaultMinutes)
		if first == nil {
			return start
		}

		if end := EffectiveEnd(first, defaultMinutes); end.Before(next) {
			next = end
		}
	}

	if next.Before(start) {
		return start
	}
	return next
}

// firstUpcoming picks the earliest-starting active booking whose effective
// end lies after start.
func firstUpcoming(bookings []*model.Booking, start time.Time, defaultMinutes int) *model.Booking {
	var first *model.Booking
	for _, b := range bookings {
		if !b.Status.IsActive() || !EffectiveEnd(b, defaultMinutes).After(start) {
			continue
		}
		if first == nil || b.StartTime.Before(first.StartTime) {
			first = b
		}
	}
	return first
}

func waitMinutes(start, next time.Time) int {
	return int(next.Sub(start).Round(time.Minute) / time.Minute)
}
