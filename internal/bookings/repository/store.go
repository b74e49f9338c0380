package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/internal/scheduling"
	tableserrors "tablebook/internal/tables/errors"
	tablesrepo "tablebook/internal/tables/repository"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

// store backs the scheduling engine with the Mongo repositories.
type store struct {
	bookings BookingRepository
	history  HistoryRepository
	tables   tablesrepo.TableRepository
	locker   TableLocker
	log      *logger.Logger
}

func NewSchedulingStore(
	bookings BookingRepository,
	history HistoryRepository,
	tables tablesrepo.TableRepository,
	locker TableLocker,
	log *logger.Logger,
) scheduling.Store {
	return &store{
		bookings: bookings,
		history:  history,
		tables:   tables,
		locker:   locker,
		log:      log,
	}
}

func notFound(err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) ||
		errors.Is(err, tableserrors.ErrNotFound) || errors.Is(err, tableserrors.ErrInvalidID) {
		return fmt.Errorf("%w: %v", scheduling.ErrNotFound, err)
	}
	return err
}

func (s *store) ListTablesByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error) {
	return s.tables.FindByMinCapacity(ctx, minCapacity)
}

func (s *store) GetTable(ctx context.Context, id string) (*model.Table, error) {
	table, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return table, nil
}

func (s *store) SetTableStatus(ctx context.Context, tableID string, status model.TableStatus) error {
	return notFound(s.tables.UpdateStatus(ctx, tableID, status))
}

func (s *store) ListActiveBookings(ctx context.Context, tableID string, from *time.Time) ([]*model.Booking, error) {
	return s.bookings.FindActiveByTable(ctx, tableID, from)
}

func (s *store) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return booking, nil
}

func (s *store) CreateBooking(ctx context.Context, booking *model.Booking) error {
	return s.bookings.Create(ctx, booking)
}

func (s *store) UpdateBooking(ctx context.Context, booking *model.Booking) error {
	return notFound(s.bookings.Update(ctx, booking))
}

func (s *store) CreateHistory(ctx context.Context, history *model.BookingHistory) error {
	return s.history.Create(ctx, history)
}

func (s *store) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}

func (s *store) WithTableLock(ctx context.Context, tableID string, fn func(ctx context.Context) error) error {
	release, err := s.locker.Acquire(ctx, tableID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrLockHeld) {
			return scheduling.ErrTableLocked
		}
		return err
	}
	defer func() {
		if releaseErr := release(context.WithoutCancel(ctx)); releaseErr != nil {
			s.log.Warn("Failed to release table lock", "table_id", tableID, "error", releaseErr)
		}
	}()

	return s.ExecuteTransaction(ctx, fn)
}
