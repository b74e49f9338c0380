package model

import "time"

// BookingHistory is written once, when a booking completes, and feeds
// duration model training.
type BookingHistory struct {
	ID             string      `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID      string      `json:"booking_id" bson:"booking_id"`
	PartySize      int         `json:"party_size" bson:"party_size"`
	ActualDuration int         `json:"actual_duration" bson:"actual_duration"`
	TableCapacity  int         `json:"table_capacity" bson:"table_capacity"`
	DayOfWeek      int         `json:"day_of_week" bson:"day_of_week"`
	HourOfDay      int         `json:"hour_of_day" bson:"hour_of_day"`
	Date           time.Time   `json:"date" bson:"date"`
	BookingType    BookingType `json:"booking_type" bson:"booking_type"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
}
