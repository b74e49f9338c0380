package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "tablebook/internal/bookings/errors"
	"tablebook/pkg/config"
	"tablebook/pkg/model"
)

const (
	LockCollectionName = "Table_locks"
)

// ReleaseFunc gives a held lock back.
type ReleaseFunc func(ctx context.Context) error

// TableLocker grants one holder at a time per table. Acquire returns
// ErrLockHeld when another request owns the lock.
type TableLocker interface {
	Acquire(ctx context.Context, tableID string) (ReleaseFunc, error)
}

// lockCollection is the part of *mongo.Collection the locker uses.
type lockCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type mongoTableLocker struct {
	collection lockCollection
	ttl        time.Duration
	now        func() time.Time
}

// NewMongoTableLocker stores locks as documents keyed by table id. A TTL index
// on expires_at reaps locks whose holder died.
func NewMongoTableLocker(cfg *config.Config) TableLocker {
	return newMongoTableLocker(cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(LockCollectionName), cfg.LockTTL)
}

func newMongoTableLocker(collection lockCollection, ttl time.Duration) *mongoTableLocker {
	return &mongoTableLocker{
		collection: collection,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (l *mongoTableLocker) Acquire(ctx context.Context, tableID string) (ReleaseFunc, error) {
	now := l.now().UTC()
	lock := &model.TableLock{
		ID:        tableID,
		Owner:     uuid.NewString(),
		ExpiresAt: now.Add(l.ttl),
		CreatedAt: now,
	}

	// the TTL monitor runs about once a minute, so expired locks are cleared here too
	if _, err := l.collection.DeleteOne(ctx, bson.M{"_id": tableID, "expires_at": bson.M{"$lte": now}}); err != nil {
		return nil, fmt.Errorf("failed to clear expired table lock: %w", err)
	}

	if _, err := l.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire table lock: %w", err)
	}

	return func(ctx context.Context) error {
		_, err := l.collection.DeleteOne(ctx, bson.M{"_id": lock.ID, "owner": lock.Owner})
		return err
	}, nil
}
