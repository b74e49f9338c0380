package model

import "time"

// TableLock is an advisory lock serializing booking creation on one table.
// ID is the table id; the TTL index on expires_at reaps abandoned locks.
type TableLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
