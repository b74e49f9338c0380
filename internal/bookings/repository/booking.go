package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/pkg/config"
	mongotx "tablebook/pkg/db/mongo"
	"tablebook/pkg/model"
)

const (
	CollectionName = "Bookings"
)

// BookingFilter narrows list queries. Zero values match everything.
type BookingFilter struct {
	Status     model.BookingStatus
	UserID     string
	ActiveOnly bool
	From       *time.Time
	Until      *time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) error
	FindActiveByTable(ctx context.Context, tableID string, from *time.Time) ([]*model.Booking, error)
	CountActiveByTable(ctx context.Context, tableID string) (int64, error)
	Find(ctx context.Context, filter BookingFilter, limit int, offset int64, newestFirst bool) ([]*model.Booking, error)
	Count(ctx context.Context, filter BookingFilter) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless it is a transaction's
// SessionContext, which must be passed through unchanged.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		if remaining := time.Until(deadline); remaining < timeout {
			return context.WithTimeout(ctx, remaining)
		}
	}

	return context.WithTimeout(ctx, timeout)
}

func activeStatusFilter() bson.M {
	return bson.M{"$in": model.ActiveStatuses}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// Update persists the mutable lifecycle fields of a booking.
func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
	}

	set := bson.M{
		"status":     booking.Status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	unset := bson.M{}
	if booking.ActualStartTime != nil {
		set["actual_start_time"] = *booking.ActualStartTime
	} else {
		unset["actual_start_time"] = ""
	}
	if booking.ActualEndTime != nil {
		set["actual_end_time"] = *booking.ActualEndTime
	} else {
		unset["actual_end_time"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) FindActiveByTable(ctx context.Context, tableID string, from *time.Time) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"table_id": tableID,
		"status":   activeStatusFilter(),
	}
	if from != nil {
		filter["booking_time"] = bson.M{"$gte": *from}
	}

	opts := options.Find().SetSort(bson.D{{Key: "booking_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find table bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) CountActiveByTable(ctx context.Context, tableID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"table_id": tableID,
		"status":   activeStatusFilter(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count table bookings: %w", err)
	}
	return count, nil
}

func (r *mongoBookingRepository) Find(ctx context.Context, filter BookingFilter, limit int, offset int64, newestFirst bool) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	direction := 1
	if newestFirst {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "booking_time", Value: direction}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter BookingFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func buildFilter(f BookingFilter) bson.M {
	filter := bson.M{}

	switch {
	case f.Status != "":
		filter["status"] = f.Status
	case f.ActiveOnly:
		filter["status"] = activeStatusFilter()
	}

	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}

	if f.From != nil || f.Until != nil {
		window := bson.M{}
		if f.From != nil {
			window["$gte"] = *f.From
		}
		if f.Until != nil {
			window["$lt"] = *f.Until
		}
		filter["booking_time"] = window
	}

	return filter
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
