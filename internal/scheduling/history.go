package scheduling

import (
	"math"
	"time"

	"tablebook/pkg/model"
)

// BuildHistory derives the training record of a completed booking. Day of
// week (0 = Sunday), hour and date are taken from the actual start in loc.
func BuildHistory(b *model.Booking, tableCapacity int, loc *time.Location, now time.Time) *model.BookingHistory {
	start := b.ActualStartTime.In(loc)
	minutes := b.ActualEndTime.Sub(*b.ActualStartTime).Minutes()

	return &model.BookingHistory{
		BookingID:      b.ID,
		PartySize:      b.PartySize,
		ActualDuration: int(math.Round(minutes)),
		TableCapacity:  tableCapacity,
		DayOfWeek:      int(start.Weekday()),
		HourOfDay:      start.Hour(),
		Date:           *b.ActualStartTime,
		BookingType:    b.Type,
		CreatedAt:      now,
	}
}
