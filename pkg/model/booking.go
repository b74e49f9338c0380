package model

import "time"

type BookingType string

const (
	BookingReservation BookingType = "RESERVATION"
	BookingWalkIn      BookingType = "WALKIN"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusSeated    BookingStatus = "SEATED"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

// ActiveStatuses are the statuses that occupy a table.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusSeated}

func (s BookingStatus) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSeated:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// rank orders the forward path. Cancelled sits outside it.
func (s BookingStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusConfirmed:
		return 1
	case StatusSeated:
		return 2
	case StatusCompleted:
		return 3
	}
	return -1
}

// CanTransitionTo reports whether a booking may move from s to next.
// Re-submitting an active status is allowed so actual times can be amended.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	if next.rank() < 0 {
		return false
	}
	return next.rank() >= s.rank()
}

type Booking struct {
	ID                string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID            string        `json:"user_id" bson:"user_id" validate:"required,max=100"`
	TableID           string        `json:"table_id" bson:"table_id" validate:"required,mongodb"`
	PartySize         int           `json:"party_size" bson:"party_size" validate:"required,min=1,max=20"`
	Type              BookingType   `json:"booking_type" bson:"booking_type" validate:"required,oneof=RESERVATION WALKIN"`
	Status            BookingStatus `json:"status" bson:"status" validate:"required,oneof=PENDING CONFIRMED SEATED COMPLETED CANCELLED"`
	StartTime         time.Time     `json:"booking_time" bson:"booking_time" validate:"required"`
	EstimatedDuration int           `json:"estimated_duration" bson:"estimated_duration" validate:"min=0"`
	ActualStartTime   *time.Time    `json:"actual_start_time,omitempty" bson:"actual_start_time,omitempty"`
	ActualEndTime     *time.Time    `json:"actual_end_time,omitempty" bson:"actual_end_time,omitempty"`
	CreatedAt         time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" bson:"updated_at"`
}

type BookingStatusUpdate struct {
	Status          BookingStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING CONFIRMED SEATED COMPLETED CANCELLED"`
	ActualStartTime *time.Time    `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time    `json:"actual_end_time,omitempty"`
}
