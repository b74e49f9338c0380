package model

import "time"

type AvailabilityRequest struct {
	PartySize   int       `json:"party_size" validate:"required,min=1,max=20"`
	BookingTime time.Time `json:"booking_time" validate:"required"`
}

type CreateBookingRequest struct {
	PartySize   int       `json:"party_size" validate:"required,min=1,max=20"`
	BookingTime time.Time `json:"booking_time" validate:"required"`
	TableID     string    `json:"table_id,omitempty" validate:"omitempty,mongodb"`
}

type WalkInCheckRequest struct {
	PartySize int `json:"party_size" validate:"required,min=1,max=20"`
}

type SeatWalkInRequest struct {
	PartySize int    `json:"party_size" validate:"required,min=1,max=20"`
	TableID   string `json:"table_id,omitempty" validate:"omitempty,mongodb"`
}

type PredictDurationRequest struct {
	PartySize int  `json:"party_size" validate:"required,min=1,max=20"`
	DayOfWeek *int `json:"day_of_week" validate:"required,min=0,max=6"`
	TimeOfDay *int `json:"time_of_day" validate:"required,min=0,max=23"`
}
