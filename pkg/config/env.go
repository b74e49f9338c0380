package config

const (
	EnvConfigFile = "CONFIG_FILE"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRestaurantTimezone = "RESTAURANT_TIMEZONE"

	EnvEstimatorURL     = "ML_PREDICTION_API_URL"
	EnvEstimatorAPIKey  = "ML_PREDICTION_API_KEY"
	EnvEstimatorTimeout = "ML_PREDICTION_TIMEOUT"

	EnvMaxPartySize              = "MAX_PARTY_SIZE"
	EnvFallbackSmallPartyMax     = "FALLBACK_SMALL_PARTY_MAX"
	EnvFallbackSmallPartyMinutes = "FALLBACK_SMALL_PARTY_MINUTES"
	EnvFallbackLargePartyMin     = "FALLBACK_LARGE_PARTY_MIN"
	EnvFallbackLargePartyMinutes = "FALLBACK_LARGE_PARTY_MINUTES"
	EnvFallbackDefaultMinutes    = "FALLBACK_DEFAULT_MINUTES"
	EnvMaxWait                   = "MAX_WAIT"
	EnvLookbackWindow            = "BOOKING_LOOKBACK_WINDOW"
	EnvSelectionAttempts         = "SELECTION_ATTEMPTS"

	EnvLockBackend = "TABLE_LOCK_BACKEND"
	EnvLockTTL     = "TABLE_LOCK_TTL"

	EnvLockRetryBackoff = "TABLE_LOCK_RETRY_BACKOFF"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvKafkaBookingsTopic = "KAFKA_BOOKINGS_TOPIC"
)
