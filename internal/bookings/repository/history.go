package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tablebook/pkg/config"
	"tablebook/pkg/model"
)

const (
	HistoryCollectionName = "Booking_history"
)

type HistoryRepository interface {
	Create(ctx context.Context, history *model.BookingHistory) error
}

type mongoHistoryRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoHistoryRepository(cfg *config.Config) HistoryRepository {
	return &mongoHistoryRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(HistoryCollectionName),
	}
}

func (r *mongoHistoryRepository) Create(ctx context.Context, history *model.BookingHistory) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, history)
	if err != nil {
		return fmt.Errorf("failed to create booking history: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		history.ID = oid.Hex()
	}
	return nil
}
