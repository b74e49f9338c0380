package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/internal/scheduling"
	tablesrepo "tablebook/internal/tables/repository"
	tableserrors "tablebook/internal/tables/errors"
	mongotx "tablebook/pkg/db/mongo"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

type mockBookingRepo struct {
	BookingRepository
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	updateFunc   func(ctx context.Context, booking *model.Booking) error
	txCalls      int
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockBookingRepo) Update(ctx context.Context, booking *model.Booking) error {
	return m.updateFunc(ctx, booking)
}

func (m *mockBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txCalls++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockTableRepo struct {
	tablesrepo.TableRepository
	findByIDFunc     func(ctx context.Context, id string) (*model.Table, error)
	updateStatusFunc func(ctx context.Context, id string, status model.TableStatus) error
}

func (m *mockTableRepo) FindByID(ctx context.Context, id string) (*model.Table, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockTableRepo) UpdateStatus(ctx context.Context, id string, status model.TableStatus) error {
	return m.updateStatusFunc(ctx, id, status)
}

type mockLocker struct {
	acquireFunc func(ctx context.Context, tableID string) (ReleaseFunc, error)
}

func (m *mockLocker) Acquire(ctx context.Context, tableID string) (ReleaseFunc, error) {
	return m.acquireFunc(ctx, tableID)
}

func newTestStore(bookings *mockBookingRepo, tables *mockTableRepo, locker *mockLocker) scheduling.Store {
	return NewSchedulingStore(bookings, nil, tables, locker, logger.Nop())
}

func TestStore_MapsNotFound(t *testing.T) {
	bookings := &mockBookingRepo{
		findByIDFunc: func(context.Context, string) (*model.Booking, error) {
			return nil, bookingserrors.ErrNotFound
		},
		updateFunc: func(context.Context, *model.Booking) error {
			return bookingserrors.ErrInvalidID
		},
	}
	tables := &mockTableRepo{
		findByIDFunc: func(context.Context, string) (*model.Table, error) {
			return nil, tableserrors.ErrInvalidID
		},
		updateStatusFunc: func(context.Context, string, model.TableStatus) error {
			return tableserrors.ErrNotFound
		},
	}
	s := newTestStore(bookings, tables, nil)
	ctx := context.Background()

	if _, err := s.GetBooking(ctx, "b1"); !errors.Is(err, scheduling.ErrNotFound) {
		t.Errorf("GetBooking: expected scheduling.ErrNotFound, got %v", err)
	}
	if err := s.UpdateBooking(ctx, &model.Booking{ID: "bad"}); !errors.Is(err, scheduling.ErrNotFound) {
		t.Errorf("UpdateBooking: expected scheduling.ErrNotFound, got %v", err)
	}
	if _, err := s.GetTable(ctx, "bad"); !errors.Is(err, scheduling.ErrNotFound) {
		t.Errorf("GetTable: expected scheduling.ErrNotFound, got %v", err)
	}
	if err := s.SetTableStatus(ctx, "t1", model.TableOccupied); !errors.Is(err, scheduling.ErrNotFound) {
		t.Errorf("SetTableStatus: expected scheduling.ErrNotFound, got %v", err)
	}
}

func TestStore_PassesOtherErrorsThrough(t *testing.T) {
	dbErr := errors.New("connection reset")
	bookings := &mockBookingRepo{
		findByIDFunc: func(context.Context, string) (*model.Booking, error) { return nil, dbErr },
	}
	s := newTestStore(bookings, nil, nil)

	_, err := s.GetBooking(context.Background(), "b1")
	if !errors.Is(err, dbErr) || errors.Is(err, scheduling.ErrNotFound) {
		t.Errorf("expected raw store error, got %v", err)
	}
}

func TestStore_WithTableLock(t *testing.T) {
	t.Run("held lock maps to ErrTableLocked", func(t *testing.T) {
		locker := &mockLocker{acquireFunc: func(context.Context, string) (ReleaseFunc, error) {
			return nil, bookingserrors.ErrLockHeld
		}}
		bookings := &mockBookingRepo{}
		s := newTestStore(bookings, nil, locker)

		called := false
		err := s.WithTableLock(context.Background(), "t1", func(context.Context) error {
			called = true
			return nil
		})
		if !errors.Is(err, scheduling.ErrTableLocked) {
			t.Errorf("expected ErrTableLocked, got %v", err)
		}
		if called || bookings.txCalls != 0 {
			t.Error("fn must not run without the lock")
		}
	})

	t.Run("runs fn in a transaction and releases", func(t *testing.T) {
		var released []string
		locker := &mockLocker{acquireFunc: func(_ context.Context, tableID string) (ReleaseFunc, error) {
			return func(context.Context) error {
				released = append(released, tableID)
				return nil
			}, nil
		}}
		bookings := &mockBookingRepo{}
		s := newTestStore(bookings, nil, locker)

		fnErr := errors.New("slot taken")
		err := s.WithTableLock(context.Background(), "t1", func(context.Context) error { return fnErr })
		if !errors.Is(err, fnErr) {
			t.Errorf("expected fn error, got %v", err)
		}
		if bookings.txCalls != 1 {
			t.Errorf("expected 1 transaction, got %d", bookings.txCalls)
		}
		if len(released) != 1 || released[0] != "t1" {
			t.Errorf("expected lock on t1 released once, got %v", released)
		}
	})

	t.Run("releases after the caller context is cancelled", func(t *testing.T) {
		var releaseErr error
		locker := &mockLocker{acquireFunc: func(context.Context, string) (ReleaseFunc, error) {
			return func(ctx context.Context) error {
				releaseErr = ctx.Err()
				return nil
			}, nil
		}}
		s := newTestStore(&mockBookingRepo{}, nil, locker)

		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		_ = s.WithTableLock(ctx, "t1", func(context.Context) error {
			cancel()
			return nil
		})
		if releaseErr != nil {
			t.Errorf("expected release to run with a live context, got %v", releaseErr)
		}
	})
}
