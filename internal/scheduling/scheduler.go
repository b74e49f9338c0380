package scheduling

import (
	"context"
	"errors"
	"time"

	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

const (
	ReasonNoCapacity  = "No tables can accommodate this party size"
	ReasonFullyBooked = "No tables available at this time"
	ReasonTableBusy   = "Table is being booked by another request, please retry"
)

type Availability struct {
	Available            bool         `json:"available"`
	Table                *model.Table `json:"table,omitempty"`
	EstimatedDuration    int          `json:"estimated_duration"`
	DurationSource       string       `json:"duration_source"`
	EstimatedWaitMinutes *int         `json:"estimated_wait_minutes,omitempty"`
	NextAvailableTime    *time.Time   `json:"next_available_time,omitempty"`
	Reason               string       `json:"reason,omitempty"`
}

// Details renders the availability as an error payload.
func (a *Availability) Details() map[string]any {
	details := map[string]any{
		"available":          a.Available,
		"estimated_duration": a.EstimatedDuration,
		"duration_source":    a.DurationSource,
	}
	if a.EstimatedWaitMinutes != nil {
		details["estimated_wait_minutes"] = *a.EstimatedWaitMinutes
	}
	if a.NextAvailableTime != nil {
		details["next_available_time"] = a.NextAvailableTime.UTC().Format(time.RFC3339)
	}
	return details
}

type BookingRequest struct {
	UserID    string
	PartySize int
	StartTime time.Time
	// TableID pins the booking to a table and skips conflict checks.
	TableID string
	Type    model.BookingType
}

type Scheduler struct {
	store     Store
	estimator DurationEstimator
	policy    Policy
	log       *logger.Logger
	loc       *time.Location
	now       func() time.Time
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocation sets the restaurant time zone used for day and hour features.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(store Store, estimator DurationEstimator, policy Policy, log *logger.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:     store,
		estimator: estimator,
		policy:    policy,
		log:       log,
		loc:       time.UTC,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.SelectionAttempts < 1 {
		s.policy.SelectionAttempts = 1
	}
	return s
}

func (s *Scheduler) Policy() Policy {
	return s.policy
}

func (s *Scheduler) Now() time.Time {
	return s.now()
}

func (s *Scheduler) validateRequest(partySize int, start time.Time) error {
	if partySize < 1 || partySize > s.policy.MaxPartySize {
		return apperrors.Validation("Invalid party size", map[string]any{
			"party_size": partySize,
			"min":        1,
			"max":        s.policy.MaxPartySize,
		})
	}
	if start.IsZero() {
		return apperrors.InvalidInput("booking_time is required")
	}
	return nil
}

// CheckAvailability reports whether some table can seat the party at start.
// An unavailable result is not an error.
func (s *Scheduler) CheckAvailability(ctx context.Context, partySize int, start time.Time) (*Availability, error) {
	if err := s.validateRequest(partySize, start); err != nil {
		return nil, err
	}

	estimate := s.EstimateDuration(ctx, partySize, start)
	end := start.Add(time.Duration(estimate.Minutes) * time.Minute)

	avail := &Availability{
		EstimatedDuration: estimate.Minutes,
		DurationSource:    estimate.Source,
	}

	candidates, err := s.loadCandidates(ctx, partySize, start)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		avail.Reason = ReasonNoCapacity
		return avail, nil
	}

	if table := SelectTable(partySize, start, end, candidates, s.policy.DefaultMinutes); table != nil {
		avail.Available = true
		avail.Table = table
		return avail, nil
	}

	next := EstimateNextAvailable(start, candidates, s.policy.MaxWait, s.policy.DefaultMinutes)
	wait := waitMinutes(start, next)
	avail.Reason = ReasonFullyBooked
	avail.EstimatedWaitMinutes = &wait
	avail.NextAvailableTime = &next
	return avail, nil
}

func (s *Scheduler) loadCandidates(ctx context.Context, partySize int, start time.Time) ([]Candidate, error) {
	tables, err := s.store.ListTablesByMinCapacity(ctx, partySize)
	if err != nil {
		return nil, apperrors.Internal("Failed to list tables", err)
	}

	from := start.Add(-s.policy.LookbackWindow)
	candidates := make([]Candidate, 0, len(tables))
	for _, table := range tables {
		if table.Capacity < partySize {
			continue
		}
		bookings, err := s.store.ListActiveBookings(ctx, table.ID, &from)
		if err != nil {
			return nil, apperrors.Internal("Failed to list table bookings", err)
		}
		candidates = append(candidates, Candidate{Table: table, Bookings: bookings})
	}
	return candidates, nil
}

// CreateBooking books a table for the request. Without an explicit table the
// best free table is chosen and the choice is re-validated under a per-table
// lock before it is committed.
func (s *Scheduler) CreateBooking(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	if err := s.validateRequest(req.PartySize, req.StartTime); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = model.BookingReservation
	}

	var booking *model.Booking
	var err error
	if req.TableID != "" {
		booking, err = s.createOnTable(ctx, req)
	} else {
		booking, err = s.createAutoSelected(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	if booking.Type == model.BookingWalkIn {
		if err := s.store.SetTableStatus(ctx, booking.TableID, model.TableOccupied); err != nil {
			s.log.Warn("Failed to mark table occupied", "table_id", booking.TableID, "booking_id", booking.ID, "error", err)
		}
	}

	s.log.Info("Booking created",
		"id", booking.ID,
		"table_id", booking.TableID,
		"party_size", booking.PartySize,
		"type", booking.Type,
		"start_time", booking.StartTime,
	)
	return booking, nil
}

func (s *Scheduler) createOnTable(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	table, err := s.store.GetTable(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Table", req.TableID)
		}
		return nil, apperrors.Internal("Failed to get table", err)
	}
	if table.Capacity < req.PartySize {
		return nil, apperrors.Validation("Table cannot accommodate this party size", map[string]any{
			"table_id":   table.ID,
			"capacity":   table.Capacity,
			"party_size": req.PartySize,
		})
	}

	estimate := s.EstimateDuration(ctx, req.PartySize, req.StartTime)
	booking := s.newBooking(req, table.ID, estimate.Minutes)
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, apperrors.Internal("Failed to create booking", err)
	}
	return booking, nil
}

func (s *Scheduler) createAutoSelected(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	backoff := s.policy.LockRetryBackoff
	for attempt := 1; attempt <= s.policy.SelectionAttempts; attempt++ {
		avail, err := s.CheckAvailability(ctx, req.PartySize, req.StartTime)
		if err != nil {
			return nil, err
		}
		if !avail.Available {
			return nil, unavailableError(avail)
		}

		booking := s.newBooking(req, avail.Table.ID, avail.EstimatedDuration)
		end := req.StartTime.Add(time.Duration(booking.EstimatedDuration) * time.Minute)
		from := req.StartTime.Add(-s.policy.LookbackWindow)

		err = s.store.WithTableLock(ctx, avail.Table.ID, func(txCtx context.Context) error {
			existing, err := s.store.ListActiveBookings(txCtx, avail.Table.ID, &from)
			if err != nil {
				return err
			}
			if HasConflict(existing, req.StartTime, end, s.policy.DefaultMinutes) {
				return errSlotTaken
			}
			return s.store.CreateBooking(txCtx, booking)
		})
		if err == nil {
			return booking, nil
		}
		if !errors.Is(err, errSlotTaken) && !errors.Is(err, ErrTableLocked) {
			return nil, apperrors.Internal("Failed to create booking", err)
		}

		s.log.Warn("Selected table was taken concurrently, retrying",
			"table_id", avail.Table.ID,
			"attempt", attempt,
			"reason", err,
		)

		if errors.Is(err, ErrTableLocked) && attempt < s.policy.SelectionAttempts {
			if !sleepCtx(ctx, backoff) {
				return nil, apperrors.Busy(ReasonTableBusy)
			}
			backoff *= 2
		}
	}

	avail, err := s.CheckAvailability(ctx, req.PartySize, req.StartTime)
	if err != nil {
		return nil, err
	}
	if avail.Available {
		// Only lock contention stood in the way; the slot itself is free.
		return nil, apperrors.Busy(ReasonTableBusy)
	}
	return nil, unavailableError(avail)
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func unavailableError(avail *Availability) error {
	if avail.Reason == ReasonNoCapacity {
		return apperrors.NoCapacity(ReasonNoCapacity).WithDetails(avail.Details())
	}
	return apperrors.Conflict(ReasonFullyBooked).WithDetails(avail.Details())
}

func (s *Scheduler) newBooking(req BookingRequest, tableID string, minutes int) *model.Booking {
	now := s.now()
	booking := &model.Booking{
		UserID:            req.UserID,
		TableID:           tableID,
		PartySize:         req.PartySize,
		Type:              req.Type,
		Status:            model.StatusConfirmed,
		StartTime:         req.StartTime,
		EstimatedDuration: minutes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.Type == model.BookingWalkIn {
		seatedAt := req.StartTime
		booking.Status = model.StatusSeated
		booking.ActualStartTime = &seatedAt
	}
	return booking
}
