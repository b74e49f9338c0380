package scheduling

import (
	"context"
	"errors"
	"time"

	"tablebook/pkg/model"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrTableLocked = errors.New("table is locked by another booking")
	errSlotTaken   = errors.New("slot taken")
)

// Store is the persistence the engine runs against.
type Store interface {
	// ListTablesByMinCapacity returns tables holding at least minCapacity,
	// ordered by capacity then table number.
	ListTablesByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error)
	GetTable(ctx context.Context, id string) (*model.Table, error)
	SetTableStatus(ctx context.Context, tableID string, status model.TableStatus) error

	// ListActiveBookings returns PENDING, CONFIRMED and SEATED bookings of a
	// table ordered by start time. A non-nil from drops bookings starting
	// before it.
	ListActiveBookings(ctx context.Context, tableID string, from *time.Time) ([]*model.Booking, error)
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	CreateBooking(ctx context.Context, booking *model.Booking) error
	UpdateBooking(ctx context.Context, booking *model.Booking) error

	CreateHistory(ctx context.Context, history *model.BookingHistory) error

	// ExecuteTransaction runs fn atomically.
	ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// WithTableLock runs fn in a transaction while holding an exclusive lock
	// on tableID. It returns ErrTableLocked when the lock cannot be taken.
	WithTableLock(ctx context.Context, tableID string, fn func(ctx context.Context) error) error
}
