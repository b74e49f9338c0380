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

	tableserrors "tablebook/internal/tables/errors"
	"tablebook/pkg/config"
	"tablebook/pkg/model"
)

const (
	CollectionName = "Tables"
)

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	FindByID(ctx context.Context, id string) (*model.Table, error)
	FindByNumber(ctx context.Context, number int) (*model.Table, error)
	FindAll(ctx context.Context) ([]*model.Table, error)
	FindByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error)
	Update(ctx context.Context, id string, table *model.Table) error
	UpdateStatus(ctx context.Context, id string, status model.TableStatus) error
	Delete(ctx context.Context, id string) error
}

type mongoTableRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTableRepository(cfg *config.Config) TableRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTableRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	// a SessionContext cannot be wrapped without leaving the transaction
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTableRepository) Create(ctx context.Context, table *model.Table) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	table.CreatedAt = now
	table.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, table)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tableserrors.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create table: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		table.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTableRepository) FindByID(ctx context.Context, id string) (*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", tableserrors.ErrInvalidID, id)
	}

	var table model.Table
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tableserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find table: %w", err)
	}

	return &table, nil
}

func (r *mongoTableRepository) FindByNumber(ctx context.Context, number int) (*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var table model.Table
	err := r.collection.FindOne(ctx, bson.M{"table_number": number}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, tableserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find table by number: %w", err)
	}

	return &table, nil
}

func (r *mongoTableRepository) FindAll(ctx context.Context) ([]*model.Table, error) {
	return r.find(ctx, bson.M{}, bson.D{{Key: "table_number", Value: 1}})
}

func (r *mongoTableRepository) FindByMinCapacity(ctx context.Context, minCapacity int) ([]*model.Table, error) {
	return r.find(ctx,
		bson.M{"capacity": bson.M{"$gte": minCapacity}},
		bson.D{{Key: "capacity", Value: 1}, {Key: "table_number", Value: 1}},
	)
}

func (r *mongoTableRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*model.Table, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find tables: %w", err)
	}
	defer cursor.Close(ctx)

	tables := []*model.Table{}
	if err = cursor.All(ctx, &tables); err != nil {
		return nil, fmt.Errorf("failed to decode tables: %w", err)
	}

	return tables, nil
}

func (r *mongoTableRepository) Update(ctx context.Context, id string, table *model.Table) error {
	return r.set(ctx, id, bson.M{
		"table_number": table.TableNumber,
		"capacity":     table.Capacity,
		"location":     table.Location,
		"status":       table.Status,
	})
}

func (r *mongoTableRepository) UpdateStatus(ctx context.Context, id string, status model.TableStatus) error {
	return r.set(ctx, id, bson.M{"status": status})
}

func (r *mongoTableRepository) set(ctx context.Context, id string, fields bson.M) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tableserrors.ErrInvalidID, id)
	}

	fields["updated_at"] = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return tableserrors.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to update table: %w", err)
	}

	if result.MatchedCount == 0 {
		return tableserrors.ErrNotFound
	}
	return nil
}

func (r *mongoTableRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", tableserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}

	if result.DeletedCount == 0 {
		return tableserrors.ErrNotFound
	}
	return nil
}
