package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	bookingserrors "tablebook/internal/bookings/errors"
)

func newRedisLocker(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, TableLocker) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return srv, NewRedisTableLocker(client, ttl)
}

func TestRedisTableLocker_HeldLock(t *testing.T) {
	srv, locker := newRedisLocker(t, 10*time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ttl := srv.TTL(redisLockPrefix + "t1"); ttl != 10*time.Second {
		t.Errorf("expected lock ttl 10s, got %s", ttl)
	}

	if _, err := locker.Acquire(ctx, "t1"); !errors.Is(err, bookingserrors.ErrLockHeld) {
		t.Errorf("expected ErrLockHeld on contention, got %v", err)
	}
	if _, err := locker.Acquire(ctx, "t2"); err != nil {
		t.Errorf("locks must be per table, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if srv.Exists(redisLockPrefix + "t1") {
		t.Error("expected key deleted on release")
	}
}

func TestRedisTableLocker_ExpiredLockIsFree(t *testing.T) {
	srv, locker := newRedisLocker(t, 10*time.Second)
	ctx := context.Background()

	if _, err := locker.Acquire(ctx, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv.FastForward(11 * time.Second)

	if _, err := locker.Acquire(ctx, "t1"); err != nil {
		t.Errorf("expected expired lock to be free, got %v", err)
	}
}

func TestRedisTableLocker_StaleReleaseKeepsNewOwner(t *testing.T) {
	srv, locker := newRedisLocker(t, 10*time.Second)
	ctx := context.Background()

	staleRelease, err := locker.Acquire(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	srv.FastForward(11 * time.Second)

	if _, err := locker.Acquire(ctx, "t1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	owner, _ := srv.Get(redisLockPrefix + "t1")

	if err := staleRelease(ctx); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if got, _ := srv.Get(redisLockPrefix + "t1"); got != owner {
		t.Errorf("a stale holder must not release the new owner's lock, key now %q", got)
	}
}

func TestRedisTableLocker_ServerDown(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start redis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer client.Close()
	locker := NewRedisTableLocker(client, 10*time.Second)
	srv.Close()

	_, err = locker.Acquire(context.Background(), "t1")
	if err == nil || errors.Is(err, bookingserrors.ErrLockHeld) {
		t.Errorf("expected a connection error distinct from ErrLockHeld, got %v", err)
	}
}
