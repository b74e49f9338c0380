package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tablebook/pkg/model"
)

// memStore is an in-memory Store. Per-table locks are real mutexes so
// concurrent creates serialize the way the Mongo store does.
type memStore struct {
	mu       sync.Mutex
	tables   map[string]*model.Table
	bookings map[string]*model.Booking
	history  []*model.BookingHistory
	nextID   int

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	statusCalls []model.TableStatus

	lockFunc      func(tableID string) error
	setStatusFunc func(tableID string, status model.TableStatus) error
	listTablesErr error
	historyErr    error
}

func newMemStore(tables ...*model.Table) *memStore {
	s := &memStore{
		tables:   map[string]*model.Table{},
		bookings: map[string]*model.Booking{},
		locks:    map[string]*sync.Mutex{},
	}
	for _, t := range tables {
		if t.Status == "" {
			t.Status = model.TableAvailable
		}
		s.tables[t.ID] = t
	}
	return s
}

func table(id string, number, capacity int) *model.Table {
	return &model.Table{ID: id, TableNumber: number, Capacity: capacity}
}

func (s *memStore) addBooking(b *model.Booking) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		s.nextID++
		b.ID = fmt.Sprintf("seed-%d", s.nextID)
	}
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) ListTablesByMinCapacity(_ context.Context, minCapacity int) ([]*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listTablesErr != nil {
		return nil, s.listTablesErr
	}

	var out []*model.Table
	for _, t := range s.tables {
		if t.Capacity >= minCapacity {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity < out[j].Capacity
		}
		return out[i].TableNumber < out[j].TableNumber
	})
	return out, nil
}

func (s *memStore) GetTable(_ context.Context, id string) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) SetTableStatus(_ context.Context, tableID string, status model.TableStatus) error {
	if s.setStatusFunc != nil {
		if err := s.setStatusFunc(tableID, status); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls = append(s.statusCalls, status)
	t, ok := s.tables[tableID]
	if !ok {
		return ErrNotFound
	}
	t.Status = status
	return nil
}

func (s *memStore) ListActiveBookings(_ context.Context, tableID string, from *time.Time) ([]*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Booking
	for _, b := range s.bookings {
		if b.TableID != tableID || !b.Status.IsActive() {
			continue
		}
		if from != nil && b.StartTime.Before(*from) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *memStore) GetBooking(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *memStore) CreateBooking(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = fmt.Sprintf("booking-%d", s.nextID)
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) UpdateBooking(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memStore) CreateHistory(_ context.Context, h *model.BookingHistory) error {
	if s.historyErr != nil {
		return s.historyErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, h)
	return nil
}

func (s *memStore) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *memStore) WithTableLock(ctx context.Context, tableID string, fn func(ctx context.Context) error) error {
	if s.lockFunc != nil {
		if err := s.lockFunc(tableID); err != nil {
			return err
		}
	}

	s.lockMu.Lock()
	m, ok := s.locks[tableID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[tableID] = m
	}
	s.lockMu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

type mockEstimator struct {
	predictFunc func(ctx context.Context, partySize, dayOfWeek, hourOfDay int) (int, error)
}

func (m *mockEstimator) PredictDuration(ctx context.Context, partySize, dayOfWeek, hourOfDay int) (int, error) {
	return m.predictFunc(ctx, partySize, dayOfWeek, hourOfDay)
}

func fixedEstimator(minutes int) *mockEstimator {
	return &mockEstimator{
		predictFunc: func(context.Context, int, int, int) (int, error) { return minutes, nil },
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, time.June, 5, hour, minute, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
