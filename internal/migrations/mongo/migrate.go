package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingsrepo "tablebook/internal/bookings/repository"
	"tablebook/internal/migrations/mongo/validators"
	tableserrors "tablebook/internal/tables/errors"
	tablesrepo "tablebook/internal/tables/repository"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
)

var (
	TablesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "table_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "capacity", Value: 1}, {Key: "table_number", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "table_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "booking_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "booking_time", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "booking_time", Value: -1},
		}},
	}

	BookingHistoryIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "party_size", Value: 1}, {Key: "day_of_week", Value: 1}, {Key: "hour_of_day", Value: 1}}},
	}

	// Expired locks are reaped by Mongo; acquisition also clears them.
	TableLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() []collectionDef {
	return []collectionDef{
		{Name: tablesrepo.CollectionName, Indexes: TablesIndexes, Validator: validators.TableValidator},
		{Name: bookingsrepo.CollectionName, Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		{Name: bookingsrepo.HistoryCollectionName, Indexes: BookingHistoryIndexes, Validator: validators.BookingHistoryValidator},
		{Name: bookingsrepo.LockCollectionName, Indexes: TableLocksIndexes},
	}
}

// RunMigration creates the collections with their schema validators and
// indexes. It is safe to run repeatedly.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for _, def := range collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}

// DefaultTables is the floor plan a fresh install starts with.
func DefaultTables() []*model.Table {
	return []*model.Table{
		{TableNumber: 1, Capacity: 2, Location: "Window"},
		{TableNumber: 2, Capacity: 2, Location: "Window"},
		{TableNumber: 3, Capacity: 4, Location: "Main Floor"},
		{TableNumber: 4, Capacity: 4, Location: "Main Floor"},
		{TableNumber: 5, Capacity: 6, Location: "Main Floor"},
		{TableNumber: 6, Capacity: 8, Location: "Private Room"},
		{TableNumber: 7, Capacity: 2, Location: "Bar Area"},
		{TableNumber: 8, Capacity: 4, Location: "Patio"},
	}
}

// TableCreator is the part of the tables repository seeding needs.
type TableCreator interface {
	Create(ctx context.Context, table *model.Table) error
}

// Seed inserts tables whose numbers are not taken yet and reports how many
// were created.
func Seed(ctx context.Context, repo TableCreator, tables []*model.Table, log *logger.Logger) (int, error) {
	created := 0
	for _, table := range tables {
		if table.Status == "" {
			table.Status = model.TableAvailable
		}
		err := repo.Create(ctx, table)
		switch {
		case err == nil:
			created++
			log.Info("Seeded table", "table_number", table.TableNumber, "capacity", table.Capacity)
		case errors.Is(err, tableserrors.ErrDuplicateNumber):
			log.Debug("Table already present, skipping", "table_number", table.TableNumber)
		default:
			return created, fmt.Errorf("failed to seed table %d: %w", table.TableNumber, err)
		}
	}
	return created, nil
}
