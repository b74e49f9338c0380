package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	tableserrors "tablebook/internal/tables/errors"
	"tablebook/internal/tables/repository"
	"tablebook/internal/tables/validator"
	"tablebook/pkg/config"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/model"
	"tablebook/pkg/sanitizer"
)

// ActiveBookingCounter reports the active bookings that reference a table.
type ActiveBookingCounter interface {
	CountActiveByTable(ctx context.Context, tableID string) (int64, error)
	FindActiveByTable(ctx context.Context, tableID string, from *time.Time) ([]*model.Booking, error)
}

type TableService interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id string) (*model.Table, error)
	GetAll(ctx context.Context) ([]*model.Table, error)
	Update(ctx context.Context, id string, update *model.TableUpdate) (*model.Table, error)
	Delete(ctx context.Context, id string) error
}

type tableService struct {
	repo      repository.TableRepository
	bookings  ActiveBookingCounter
	validator *validator.TableValidator
	cfg       *config.Config
}

func NewTableService(
	repo repository.TableRepository,
	bookings ActiveBookingCounter,
	validator *validator.TableValidator,
	cfg *config.Config,
) TableService {
	return &tableService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid table", verrs.Details())
	}
	return apperrors.Validation("Invalid table", map[string]any{"error": err.Error()})
}

func (s *tableService) Create(ctx context.Context, table *model.Table) error {
	table.ID = ""
	table.Location = sanitizer.NormalizeLocation(table.Location)
	if table.Status == "" {
		table.Status = model.TableAvailable
	}

	if err := s.validator.ValidateTable(table); err != nil {
		s.cfg.Log.Warn("Table validation failed", "table_number", table.TableNumber, "error", err)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, table); err != nil {
		return s.mapRepoError(err, "", table.TableNumber, "Failed to create table")
	}

	s.cfg.Log.Info("Table created successfully",
		"id", table.ID,
		"table_number", table.TableNumber,
		"capacity", table.Capacity,
	)
	return nil
}

func (s *tableService) GetByID(ctx context.Context, id string) (*model.Table, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Table ID cannot be empty")
	}

	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, 0, "Failed to retrieve table")
	}
	return table, nil
}

func (s *tableService) GetAll(ctx context.Context) ([]*model.Table, error) {
	tables, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list tables", "error", err)
		return nil, apperrors.Internal("Failed to retrieve tables", err)
	}
	return tables, nil
}

// Update applies the set fields of update and returns the merged table.
func (s *tableService) Update(ctx context.Context, id string, update *model.TableUpdate) (*model.Table, error) {
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validationError(err)
	}

	table, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.TableNumber != nil {
		table.TableNumber = *update.TableNumber
	}
	if update.Capacity != nil {
		if *update.Capacity < table.Capacity {
			if err := s.checkCapacityCut(ctx, id, *update.Capacity); err != nil {
				return nil, err
			}
		}
		table.Capacity = *update.Capacity
	}
	if update.Location != nil {
		table.Location = sanitizer.NormalizeLocation(*update.Location)
	}
	if update.Status != "" {
		table.Status = update.Status
	}

	if err := s.validator.ValidateTable(table); err != nil {
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, id, table); err != nil {
		return nil, s.mapRepoError(err, id, table.TableNumber, "Failed to update table")
	}

	s.cfg.Log.Info("Table updated successfully", "id", id, "table_number", table.TableNumber)
	return table, nil
}

// Delete removes a table that no active booking references.
func (s *tableService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Table ID cannot be empty")
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.bookings.CountActiveByTable(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to count active bookings", "table_id", id, "error", err)
		return apperrors.Internal("Failed to delete table", err)
	}
	if active > 0 {
		return apperrors.Conflict("Table has active bookings").WithDetails(map[string]any{
			"table_id":        id,
			"active_bookings": active,
		})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, 0, "Failed to delete table")
	}

	s.cfg.Log.Info("Table deleted successfully", "id", id)
	return nil
}

// checkCapacityCut rejects a capacity below the party size of any active
// booking on the table.
func (s *tableService) checkCapacityCut(ctx context.Context, id string, capacity int) error {
	active, err := s.bookings.FindActiveByTable(ctx, id, nil)
	if err != nil {
		s.cfg.Log.Error("Failed to load active bookings", "table_id", id, "error", err)
		return apperrors.Internal("Failed to update table", err)
	}

	largest := 0
	for _, b := range active {
		if b.PartySize > largest {
			largest = b.PartySize
		}
	}
	if largest > capacity {
		return apperrors.Conflict("Capacity is below the party size of an active booking").WithDetails(map[string]any{
			"table_id":           id,
			"capacity":           capacity,
			"largest_party_size": largest,
		})
	}
	return nil
}

func (s *tableService) mapRepoError(err error, id string, number int, message string) error {
	switch {
	case errors.Is(err, tableserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Table", id)
	case errors.Is(err, tableserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid table ID format")
	case errors.Is(err, tableserrors.ErrDuplicateNumber):
		return apperrors.Conflict(fmt.Sprintf("Table number %d already exists", number))
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}
