package model

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
)

func TestBookingStatus_IsActive(t *testing.T) {
	tests := []struct {
		status BookingStatus
		want   bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusSeated, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.want {
				t.Errorf("expected IsActive=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusSeated, true},
		{StatusConfirmed, StatusSeated, true},
		{StatusSeated, StatusCompleted, true},
		{StatusConfirmed, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusSeated, StatusCancelled, true},
		{StatusSeated, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCompleted, StatusCompleted, false},
		{StatusPending, BookingStatus("ARCHIVED"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestTable_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name        string
		table       Table
		expectValid bool
	}{
		{"valid", Table{TableNumber: 1, Capacity: 4, Location: "Window", Status: TableAvailable}, true},
		{"no location", Table{TableNumber: 2, Capacity: 2, Status: TableOccupied}, true},
		{"zero number", Table{TableNumber: 0, Capacity: 4, Status: TableAvailable}, false},
		{"capacity too large", Table{TableNumber: 3, Capacity: 21, Status: TableAvailable}, false},
		{"unknown status", Table{TableNumber: 4, Capacity: 4, Status: "BROKEN"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.table)
			if tt.expectValid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.expectValid && err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestBooking_Validation(t *testing.T) {
	v := validator.New()
	valid := Booking{
		UserID:            "user-1",
		TableID:           "507f1f77bcf86cd799439011",
		PartySize:         4,
		Type:              BookingReservation,
		Status:            StatusConfirmed,
		StartTime:         time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC),
		EstimatedDuration: 120,
	}

	if err := v.Struct(valid); err != nil {
		t.Fatalf("expected valid booking, got %v", err)
	}

	tooLarge := valid
	tooLarge.PartySize = 21
	if err := v.Struct(tooLarge); err == nil {
		t.Error("expected party size 21 to be rejected")
	}

	badTable := valid
	badTable.TableID = "not-an-id"
	if err := v.Struct(badTable); err == nil {
		t.Error("expected malformed table id to be rejected")
	}
}
