package scheduling

import (
	"time"

	"tablebook/pkg/model"
)

// Conflicts reports whether the closed-open intervals [candStart, candEnd) and
// [exStart, exEnd) overlap. Empty or inverted intervals occupy no time.
func Conflicts(candStart, candEnd, exStart, exEnd time.Time) bool {
	if !candStart.Before(candEnd) || !exStart.Before(exEnd) {
		return false
	}
	return candStart.Before(exEnd) && exStart.Before(candEnd)
}

// EffectiveInterval is the time a booking occupies its table. The end is the
// actual end when known, otherwise the estimate counted from the actual start
// (seated) or from the requested start.
func EffectiveInterval(b *model.Booking, defaultMinutes int) (time.Time, time.Time) {
	return b.StartTime, EffectiveEnd(b, defaultMinutes)
}

func EffectiveEnd(b *model.Booking, defaultMinutes int) time.Time {
	if b.ActualEndTime != nil {
		return *b.ActualEndTime
	}

	minutes := b.EstimatedDuration
	if minutes <= 0 {
		minutes = defaultMinutes
	}
	estimate := time.Duration(minutes) * time.Minute

	if b.ActualStartTime != nil {
		return b.ActualStartTime.Add(estimate)
	}
	return b.StartTime.Add(estimate)
}

// HasConflict reports whether any active booking overlaps [start, end).
func HasConflict(bookings []*model.Booking, start, end time.Time, defaultMinutes int) bool {
	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		exStart, exEnd := EffectiveInterval(b, defaultMinutes)
		if Conflicts(start, end, exStart, exEnd) {
			return true
		}
	}
	return false
}
