package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "tablebook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRestaurantTimezone = "UTC"

	DefaultEstimatorTimeout = 3 * time.Second

	DefaultMaxPartySize              = 20
	DefaultFallbackSmallPartyMax     = 2
	DefaultFallbackSmallPartyMinutes = 90
	DefaultFallbackLargePartyMin     = 6
	DefaultFallbackLargePartyMinutes = 150
	DefaultFallbackDefaultMinutes    = 120
	DefaultMaxWait                   = 240 * time.Minute
	DefaultLookbackWindow            = 24 * time.Hour
	DefaultSelectionAttempts         = 3

	LockBackendMongo = "mongo"
	LockBackendRedis = "redis"

	DefaultLockBackend = LockBackendMongo
	DefaultLockTTL     = 10 * time.Second

	DefaultLockRetryBackoff = 25 * time.Millisecond

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultKafkaEnabled       = false
	DefaultKafkaBookingsTopic = "bookings"
)
