package model

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
)

// Table status is advisory. Availability is always derived from bookings.
type Table struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TableNumber int         `json:"table_number" bson:"table_number" validate:"required,min=1"`
	Capacity    int         `json:"capacity" bson:"capacity" validate:"required,min=1,max=20"`
	Location    string      `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=50"`
	Status      TableStatus `json:"status" bson:"status" validate:"required,oneof=AVAILABLE OCCUPIED RESERVED"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

type TableUpdate struct {
	TableNumber *int        `json:"table_number,omitempty" validate:"omitempty,min=1"`
	Capacity    *int        `json:"capacity,omitempty" validate:"omitempty,min=1,max=20"`
	Location    *string     `json:"location,omitempty" validate:"omitempty,max=50"`
	Status      TableStatus `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE OCCUPIED RESERVED"`
}
