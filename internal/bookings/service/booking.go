package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/internal/bookings/events"
	"tablebook/internal/bookings/repository"
	"tablebook/internal/bookings/validator"
	"tablebook/internal/scheduling"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleStaff    = "STAFF"
	RoleManager  = "MANAGER"
)

// Actor is the authenticated caller, resolved upstream.
type Actor struct {
	UserID string
	Role   string
}

type BookingService interface {
	CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*scheduling.Availability, error)
	Create(ctx context.Context, actor Actor, req *model.CreateBookingRequest) (*model.Booking, error)
	CheckWalkIn(ctx context.Context, req *model.WalkInCheckRequest) (*scheduling.Availability, error)
	SeatWalkIn(ctx context.Context, actor Actor, req *model.SeatWalkInRequest) (*model.Booking, error)
	PredictDuration(ctx context.Context, req *model.PredictDurationRequest) (*scheduling.DurationEstimate, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error)
	GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	GetDay(ctx context.Context, date string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	scheduler *scheduling.Scheduler
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	scheduler *scheduling.Scheduler,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		scheduler: scheduler,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) validate(req any) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Invalid booking request", verrs.Details())
		}
		return apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*scheduling.Availability, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.scheduler.CheckAvailability(ctx, req.PartySize, req.BookingTime)
}

func (s *bookingService) Create(ctx context.Context, actor Actor, req *model.CreateBookingRequest) (*model.Booking, error) {
	if actor.UserID == "" {
		return nil, apperrors.InvalidInput("User ID is required")
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.BookingTime.Before(s.scheduler.Now()) {
		return nil, apperrors.InvalidInput("Cannot book a table in the past")
	}

	booking, err := s.scheduler.CreateBooking(ctx, scheduling.BookingRequest{
		UserID:    actor.UserID,
		PartySize: req.PartySize,
		StartTime: req.BookingTime,
		TableID:   req.TableID,
		Type:      model.BookingReservation,
	})
	if err != nil {
		s.logFailure("Failed to create booking", err)
		return nil, err
	}

	s.publish(ctx, events.EventBookingCreated, booking, "")
	return booking, nil
}

func (s *bookingService) CheckWalkIn(ctx context.Context, req *model.WalkInCheckRequest) (*scheduling.Availability, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	return s.scheduler.CheckAvailability(ctx, req.PartySize, s.scheduler.Now())
}

// SeatWalkIn books and seats a party right now, on the given table or the
// best free one.
func (s *bookingService) SeatWalkIn(ctx context.Context, actor Actor, req *model.SeatWalkInRequest) (*model.Booking, error) {
	if actor.UserID == "" {
		return nil, apperrors.InvalidInput("User ID is required")
	}
	if err := s.validate(req); err != nil {
		return nil, err
	}

	booking, err := s.scheduler.CreateBooking(ctx, scheduling.BookingRequest{
		UserID:    actor.UserID,
		PartySize: req.PartySize,
		StartTime: s.scheduler.Now(),
		TableID:   req.TableID,
		Type:      model.BookingWalkIn,
	})
	if err != nil {
		s.logFailure("Failed to seat walk-in", err)
		return nil, err
	}

	s.publish(ctx, events.EventBookingCreated, booking, "")
	return booking, nil
}

func (s *bookingService) PredictDuration(ctx context.Context, req *model.PredictDurationRequest) (*scheduling.DurationEstimate, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	estimate := s.scheduler.EstimateDurationFor(ctx, req.PartySize, *req.DayOfWeek, *req.TimeOfDay)
	return &estimate, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, int64, error) {
	if status != "" && !validStatus(status) {
		return nil, 0, apperrors.InvalidInput("Invalid status filter: " + string(status))
	}
	return s.list(ctx, repository.BookingFilter{Status: status}, limit, offset)
}

func (s *bookingService) GetByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("User ID cannot be empty")
	}
	return s.list(ctx, repository.BookingFilter{UserID: userID}, limit, offset)
}

// list fetches one page and the total count concurrently.
func (s *bookingService) list(ctx context.Context, filter repository.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.Find(ctx, filter, limit, offset, true)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// GetDay returns the active bookings of one calendar day (YYYY-MM-DD, empty
// for today) in the restaurant's time zone, earliest first.
func (s *bookingService) GetDay(ctx context.Context, date string) ([]*model.Booking, error) {
	loc := s.cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	var from time.Time
	if date == "" {
		y, m, d := s.scheduler.Now().In(loc).Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		parsed, err := time.ParseInLocation(time.DateOnly, date, loc)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD")
		}
		from = parsed
	}
	until := from.AddDate(0, 0, 1)

	bookings, err := s.repo.Find(ctx, repository.BookingFilter{
		ActiveOnly: true,
		From:       &from,
		Until:      &until,
	}, 0, 0, false)
	if err != nil {
		s.cfg.Log.Error("Failed to list day bookings", "date", from.Format(time.DateOnly), "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validate(update); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve booking")
	}

	if actor.Role == RoleCustomer {
		if existing.UserID != actor.UserID {
			return nil, apperrors.Forbidden("You can only modify your own bookings")
		}
		if update.Status != model.StatusCancelled || update.ActualStartTime != nil || update.ActualEndTime != nil {
			return nil, apperrors.Forbidden("Customers can only cancel bookings")
		}
	}

	booking, err := s.scheduler.UpdateBookingStatus(ctx, id, *update)
	if err != nil {
		s.logFailure("Failed to update booking status", err)
		return nil, err
	}

	eventType := events.EventBookingStatusChanged
	if booking.Status == model.StatusCompleted && existing.Status != model.StatusCompleted {
		eventType = events.EventBookingCompleted
	}
	s.publish(ctx, eventType, booking, existing.Status)
	return booking, nil
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking, previous model.BookingStatus) {
	s.publisher.Publish(context.WithoutCancel(ctx), events.NewBookingEvent(eventType, booking, previous, s.scheduler.Now()))
}

func (s *bookingService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

// logFailure logs server-side failures at error level and expected
// rejections at info.
func (s *bookingService) logFailure(msg string, err error) {
	if apperrors.HasCode(err, apperrors.CodeInternal) {
		s.cfg.Log.Error(msg, "error", err)
		return
	}
	s.cfg.Log.Info(msg, "error", err)
}

func validStatus(status model.BookingStatus) bool {
	switch status {
	case model.StatusPending, model.StatusConfirmed, model.StatusSeated, model.StatusCompleted, model.StatusCancelled:
		return true
	}
	return false
}
