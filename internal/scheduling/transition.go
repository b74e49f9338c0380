package scheduling

import (
	"context"
	"errors"
	"time"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
)

// UpdateBookingStatus moves a booking along its lifecycle and records actual
// times. Completing a booking writes its history in the same transaction.
// An empty status keeps the current one and only amends the times.
func (s *Scheduler) UpdateBookingStatus(ctx context.Context, id string, update model.BookingStatusUpdate) (*model.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to get booking", err)
	}

	prev := booking.Status
	next := update.Status
	if next == "" {
		next = prev
	}
	if !prev.CanTransitionTo(next) {
		return nil, apperrors.Validation("Invalid status transition", map[string]any{
			"from": prev,
			"to":   next,
		})
	}

	now := s.now()
	if update.ActualStartTime != nil {
		t := *update.ActualStartTime
		booking.ActualStartTime = &t
	}
	if update.ActualEndTime != nil {
		t := *update.ActualEndTime
		booking.ActualEndTime = &t
	}

	switch next {
	case model.StatusSeated:
		if booking.ActualStartTime == nil {
			booking.ActualStartTime = &now
		}
	case model.StatusCompleted:
		if booking.ActualStartTime == nil {
			return nil, apperrors.Validation("Actual start time is required to complete a booking", map[string]any{
				"field": "actual_start_time",
			})
		}
		if booking.ActualEndTime == nil {
			booking.ActualEndTime = &now
		}
	}

	if booking.ActualStartTime != nil && booking.ActualEndTime != nil && booking.ActualEndTime.Before(*booking.ActualStartTime) {
		return nil, apperrors.Validation("Actual end time cannot be before actual start time", map[string]any{
			"field": "actual_end_time",
		})
	}

	booking.Status = next
	booking.UpdatedAt = now

	if next == model.StatusCompleted && prev != model.StatusCompleted {
		err = s.complete(ctx, booking, now)
	} else {
		err = s.store.UpdateBooking(ctx, booking)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to update booking", err)
	}

	s.syncTableStatus(ctx, booking, prev)

	s.log.Info("Booking status updated",
		"id", booking.ID,
		"from", prev,
		"to", next,
	)
	return booking, nil
}

func (s *Scheduler) complete(ctx context.Context, booking *model.Booking, now time.Time) error {
	capacity := 0
	table, err := s.store.GetTable(ctx, booking.TableID)
	switch {
	case err == nil:
		capacity = table.Capacity
	case errors.Is(err, ErrNotFound):
		s.log.Warn("Completed booking references a missing table", "booking_id", booking.ID, "table_id", booking.TableID)
	default:
		return err
	}

	history := BuildHistory(booking, capacity, s.loc, now)
	return s.store.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		if err := s.store.UpdateBooking(txCtx, booking); err != nil {
			return err
		}
		return s.store.CreateHistory(txCtx, history)
	})
}

// syncTableStatus keeps the advisory table status in step with seating.
// Failures are logged only; bookings stay the source of truth.
func (s *Scheduler) syncTableStatus(ctx context.Context, booking *model.Booking, prev model.BookingStatus) {
	var status model.TableStatus
	switch {
	case booking.Status == model.StatusSeated && prev != model.StatusSeated:
		status = model.TableOccupied
	case prev == model.StatusSeated && booking.Status.IsTerminal():
		status = model.TableAvailable
	default:
		return
	}

	if err := s.store.SetTableStatus(ctx, booking.TableID, status); err != nil {
		s.log.Warn("Failed to update table status", "table_id", booking.TableID, "status", status, "error", err)
	}
}
