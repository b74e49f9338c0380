package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
)

func TestUpdateBookingStatus_CompleteWritesHistory(t *testing.T) {
	store := newMemStore(table("t4", 1, 4))
	b := store.addBooking(&model.Booking{
		TableID:           "t4",
		PartySize:         3,
		Type:              model.BookingReservation,
		Status:            model.StatusSeated,
		StartTime:         at(19, 0),
		EstimatedDuration: 120,
		ActualStartTime:   ptr(at(19, 5)),
	})
	s := newTestScheduler(store, nil)

	updated, err := s.UpdateBookingStatus(context.Background(), b.ID, model.BookingStatusUpdate{
		Status:        model.StatusCompleted,
		ActualEndTime: ptr(at(20, 50)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Errorf("expected completed, got %s", updated.Status)
	}

	if len(store.history) != 1 {
		t.Fatalf("expected one history row, got %d", len(store.history))
	}
	h := store.history[0]
	if h.ActualDuration != 105 {
		t.Errorf("expected duration 105, got %d", h.ActualDuration)
	}
	if h.BookingID != b.ID || h.PartySize != 3 || h.TableCapacity != 4 {
		t.Errorf("unexpected history fields: %+v", h)
	}
	if h.DayOfWeek != int(time.Friday) || h.HourOfDay != 19 {
		t.Errorf("expected Friday 19h, got day %d hour %d", h.DayOfWeek, h.HourOfDay)
	}
	if store.tables["t4"].Status != model.TableAvailable {
		t.Errorf("expected table released, got %s", store.tables["t4"].Status)
	}
}

func TestUpdateBookingStatus_CompleteDefaultsEndToNow(t *testing.T) {
	store := newMemStore(table("t2", 1, 2))
	b := store.addBooking(&model.Booking{TableID: "t2", PartySize: 2, Status: model.StatusSeated, StartTime: at(10, 30), ActualStartTime: ptr(at(10, 30))})
	s := newTestScheduler(store, nil)

	updated, err := s.UpdateBookingStatus(context.Background(), b.ID, model.BookingStatusUpdate{Status: model.StatusCompleted})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ActualEndTime == nil || !updated.ActualEndTime.Equal(at(12, 0)) {
		t.Errorf("expected end at clock time 12:00, got %v", updated.ActualEndTime)
	}
	if store.history[0].ActualDuration != 90 {
		t.Errorf("expected 90 minutes, got %d", store.history[0].ActualDuration)
	}
}

func TestUpdateBookingStatus_Errors(t *testing.T) {
	tests := []struct {
		name     string
		booking  *model.Booking
		update   model.BookingStatusUpdate
		wantCode string
	}{
		{
			name:     "complete without actual start",
			booking:  &model.Booking{TableID: "t4", Status: model.StatusConfirmed, StartTime: at(19, 0)},
			update:   model.BookingStatusUpdate{Status: model.StatusCompleted},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:    "end before start",
			booking: &model.Booking{TableID: "t4", Status: model.StatusSeated, StartTime: at(19, 0), ActualStartTime: ptr(at(19, 0))},
			update: model.BookingStatusUpdate{
				Status:        model.StatusCompleted,
				ActualEndTime: ptr(at(18, 0)),
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "backwards transition",
			booking:  &model.Booking{TableID: "t4", Status: model.StatusSeated, StartTime: at(19, 0)},
			update:   model.BookingStatusUpdate{Status: model.StatusPending},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "terminal booking",
			booking:  &model.Booking{TableID: "t4", Status: model.StatusCancelled, StartTime: at(19, 0)},
			update:   model.BookingStatusUpdate{Status: model.StatusConfirmed},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(table("t4", 1, 4))
			b := store.addBooking(tt.booking)
			s := newTestScheduler(store, nil)

			_, err := s.UpdateBookingStatus(context.Background(), b.ID, tt.update)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
			if len(store.history) != 0 {
				t.Error("expected no history on failed transition")
			}
		})
	}
}

func TestUpdateBookingStatus_NotFound(t *testing.T) {
	s := newTestScheduler(newMemStore(), nil)
	_, err := s.UpdateBookingStatus(context.Background(), "nope", model.BookingStatusUpdate{Status: model.StatusCancelled})
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateBookingStatus_SeatDefaultsActualStart(t *testing.T) {
	store := newMemStore(table("t4", 1, 4))
	b := store.addBooking(&model.Booking{TableID: "t4", Status: model.StatusConfirmed, StartTime: at(11, 45), EstimatedDuration: 90})
	s := newTestScheduler(store, nil)

	updated, err := s.UpdateBookingStatus(context.Background(), b.ID, model.BookingStatusUpdate{Status: model.StatusSeated})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ActualStartTime == nil || !updated.ActualStartTime.Equal(at(12, 0)) {
		t.Errorf("expected actual start 12:00, got %v", updated.ActualStartTime)
	}
	if store.tables["t4"].Status != model.TableOccupied {
		t.Errorf("expected table occupied, got %s", store.tables["t4"].Status)
	}
}

func TestUpdateBookingStatus_CancelReservationLeavesTable(t *testing.T) {
	store := newMemStore(table("t4", 1, 4))
	b := store.addBooking(&model.Booking{TableID: "t4", Status: model.StatusConfirmed, StartTime: at(19, 0)})
	s := newTestScheduler(store, nil)

	if _, err := s.UpdateBookingStatus(context.Background(), b.ID, model.BookingStatusUpdate{Status: model.StatusCancelled}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.statusCalls) != 0 {
		t.Errorf("expected no table status change, got %v", store.statusCalls)
	}

	active, _ := store.ListActiveBookings(context.Background(), "t4", nil)
	if len(active) != 0 {
		t.Error("expected cancelled booking to leave the active set")
	}
}

func TestUpdateBookingStatus_AmendTimesOnly(t *testing.T) {
	store := newMemStore(table("t4", 1, 4))
	b := store.addBooking(&model.Booking{TableID: "t4", Status: model.StatusSeated, StartTime: at(19, 0), ActualStartTime: ptr(at(19, 0))})
	s := newTestScheduler(store, nil)

	updated, err := s.UpdateBookingStatus(context.Background(), b.ID, model.BookingStatusUpdate{ActualStartTime: ptr(at(19, 10))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != model.StatusSeated {
		t.Errorf("expected status unchanged, got %s", updated.Status)
	}
	if !updated.ActualStartTime.Equal(at(19, 10)) {
		t.Errorf("expected amended start, got %v", updated.ActualStartTime)
	}
	if len(store.statusCalls) != 0 {
		t.Errorf("expected no table status change, got %v", store.statusCalls)
	}
}

func TestUpdateBookingStatus_HistoryFailureSurfaces(t *testing.T) {
	store := newMemStore(table("t4", 1, 4))
	store.historyErr = errors.New("write conflict")
	b := store.addBooking(&model.Booking{TableID: "t4", Status: model.StatusSeated, StartTime: at(19, 0), ActualStartTime: ptr(at(19, 0))})
	s := newTestScheduler(store, nil)

	_, err := s.UpdateBookingStatus(context.Background(), b.ID, model.BookingStatusUpdate{Status: model.StatusCompleted})
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestBuildHistory_RestaurantZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	b := &model.Booking{
		ID:              "b1",
		PartySize:       2,
		Type:            model.BookingWalkIn,
		ActualStartTime: ptr(at(2, 0)),
		ActualEndTime:   ptr(at(3, 29).Add(40 * time.Second)),
	}

	h := BuildHistory(b, 2, loc, at(4, 0))
	if h.DayOfWeek != int(time.Thursday) || h.HourOfDay != 21 {
		t.Errorf("expected Thursday 21h, got day %d hour %d", h.DayOfWeek, h.HourOfDay)
	}
	if h.ActualDuration != 90 {
		t.Errorf("expected rounded 90, got %d", h.ActualDuration)
	}
	if h.BookingType != model.BookingWalkIn {
		t.Errorf("expected walk-in type, got %s", h.BookingType)
	}
}

func TestPolicy_FallbackDuration(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		partySize int
		want      int
	}{
		{1, 90}, {2, 90}, {3, 120}, {5, 120}, {6, 150}, {20, 150},
	}
	for _, tt := range tests {
		if got := p.FallbackDuration(tt.partySize); got != tt.want {
			t.Errorf("party %d: expected %d, got %d", tt.partySize, tt.want, got)
		}
	}
}
