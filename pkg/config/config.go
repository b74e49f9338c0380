package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"tablebook/pkg/client"
	"tablebook/pkg/logger"
)

var mongoURIRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port     string
	LogLevel string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	RestaurantTimezone string
	Location           *time.Location

	EstimatorURL     string
	EstimatorAPIKey  string
	EstimatorTimeout time.Duration

	MaxPartySize              int
	FallbackSmallPartyMax     int
	FallbackSmallPartyMinutes int
	FallbackLargePartyMin     int
	FallbackLargePartyMinutes int
	FallbackDefaultMinutes    int
	MaxWait                   time.Duration
	LookbackWindow            time.Duration
	SelectionAttempts         int

	LockBackend string
	LockTTL     time.Duration

	LockRetryBackoff time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaEnabled       bool
	KafkaBookingsTopic string

	Log    *logger.Logger
	Client *client.Client
}

// Load resolves configuration from the environment (and CONFIG_FILE when set),
// builds the service logger and exits on invalid configuration.
func Load(serviceName string) *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var fileErr error
	if path := v.GetString(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		fileErr = v.ReadInConfig()
	}

	cfg := FromViper(v)
	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	cfg.Client = client.NewClient()

	if fileErr != nil {
		cfg.Log.Fatal("Failed to read config file", "path", v.GetString(EnvConfigFile), "error", fileErr)
	}
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(EnvMongoURI, DefaultMongoURI)
	v.SetDefault(EnvMongoDatabaseName, DefaultMongoDatabaseName)
	v.SetDefault(EnvMongoConnTimeout, DefaultMongoConnTimeout)

	v.SetDefault(EnvPort, DefaultPort)
	v.SetDefault(EnvLogLevel, DefaultLogLevel)

	v.SetDefault(EnvRateLimitRequests, DefaultRateLimitRequests)
	v.SetDefault(EnvRateLimitWindow, DefaultRateLimitWindow)

	v.SetDefault(EnvRequestTimeout, DefaultRequestTimeout)
	v.SetDefault(EnvIdempotencyTTL, DefaultIdempotencyTTL)
	v.SetDefault(EnvMaxRequestSize, DefaultMaxRequestSize)

	v.SetDefault(EnvReadTimeout, DefaultReadTimeout)
	v.SetDefault(EnvWriteTimeout, DefaultWriteTimeout)
	v.SetDefault(EnvIdleTimeout, DefaultIdleTimeout)
	v.SetDefault(EnvShutdownTimeout, DefaultShutdownTimeout)

	v.SetDefault(EnvRestaurantTimezone, DefaultRestaurantTimezone)

	v.SetDefault(EnvEstimatorURL, "")
	v.SetDefault(EnvEstimatorAPIKey, "")
	v.SetDefault(EnvEstimatorTimeout, DefaultEstimatorTimeout)

	v.SetDefault(EnvMaxPartySize, DefaultMaxPartySize)
	v.SetDefault(EnvFallbackSmallPartyMax, DefaultFallbackSmallPartyMax)
	v.SetDefault(EnvFallbackSmallPartyMinutes, DefaultFallbackSmallPartyMinutes)
	v.SetDefault(EnvFallbackLargePartyMin, DefaultFallbackLargePartyMin)
	v.SetDefault(EnvFallbackLargePartyMinutes, DefaultFallbackLargePartyMinutes)
	v.SetDefault(EnvFallbackDefaultMinutes, DefaultFallbackDefaultMinutes)
	v.SetDefault(EnvMaxWait, DefaultMaxWait)
	v.SetDefault(EnvLookbackWindow, DefaultLookbackWindow)
	v.SetDefault(EnvSelectionAttempts, DefaultSelectionAttempts)

	v.SetDefault(EnvLockBackend, DefaultLockBackend)
	v.SetDefault(EnvLockTTL, DefaultLockTTL)
	v.SetDefault(EnvLockRetryBackoff, DefaultLockRetryBackoff)

	v.SetDefault(EnvRedisAddr, DefaultRedisAddr)
	v.SetDefault(EnvRedisPassword, "")
	v.SetDefault(EnvRedisDB, DefaultRedisDB)

	v.SetDefault(EnvKafkaEnabled, DefaultKafkaEnabled)
	v.SetDefault(EnvKafkaBookingsTopic, DefaultKafkaBookingsTopic)
}

// FromViper maps resolved keys onto a Config. Logger and clients are left nil.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		MongoURI:          v.GetString(EnvMongoURI),
		MongoDatabaseName: v.GetString(EnvMongoDatabaseName),
		MongoConnTimeout:  v.GetDuration(EnvMongoConnTimeout),

		Port:     v.GetString(EnvPort),
		LogLevel: v.GetString(EnvLogLevel),

		RateLimitRequests: v.GetInt(EnvRateLimitRequests),
		RateLimitWindow:   v.GetDuration(EnvRateLimitWindow),

		RequestTimeout: v.GetDuration(EnvRequestTimeout),
		IdempotencyTTL: v.GetDuration(EnvIdempotencyTTL),
		MaxRequestSize: v.GetInt(EnvMaxRequestSize),

		ReadTimeout:     v.GetDuration(EnvReadTimeout),
		WriteTimeout:    v.GetDuration(EnvWriteTimeout),
		IdleTimeout:     v.GetDuration(EnvIdleTimeout),
		ShutdownTimeout: v.GetDuration(EnvShutdownTimeout),

		RestaurantTimezone: v.GetString(EnvRestaurantTimezone),

		EstimatorURL:     v.GetString(EnvEstimatorURL),
		EstimatorAPIKey:  v.GetString(EnvEstimatorAPIKey),
		EstimatorTimeout: v.GetDuration(EnvEstimatorTimeout),

		MaxPartySize:              v.GetInt(EnvMaxPartySize),
		FallbackSmallPartyMax:     v.GetInt(EnvFallbackSmallPartyMax),
		FallbackSmallPartyMinutes: v.GetInt(EnvFallbackSmallPartyMinutes),
		FallbackLargePartyMin:     v.GetInt(EnvFallbackLargePartyMin),
		FallbackLargePartyMinutes: v.GetInt(EnvFallbackLargePartyMinutes),
		FallbackDefaultMinutes:    v.GetInt(EnvFallbackDefaultMinutes),
		MaxWait:                   v.GetDuration(EnvMaxWait),
		LookbackWindow:            v.GetDuration(EnvLookbackWindow),
		SelectionAttempts:         v.GetInt(EnvSelectionAttempts),

		LockBackend: v.GetString(EnvLockBackend),
		LockTTL:     v.GetDuration(EnvLockTTL),

		LockRetryBackoff: v.GetDuration(EnvLockRetryBackoff),

		RedisAddr:     v.GetString(EnvRedisAddr),
		RedisPassword: v.GetString(EnvRedisPassword),
		RedisDB:       v.GetInt(EnvRedisDB),

		KafkaEnabled:       v.GetBool(EnvKafkaEnabled),
		KafkaBookingsTopic: v.GetString(EnvKafkaBookingsTopic),
	}

	if loc, err := time.LoadLocation(cfg.RestaurantTimezone); err == nil {
		cfg.Location = loc
	}
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !mongoURIRegex.MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.Location == nil {
		errors = append(errors, fmt.Sprintf("RestaurantTimezone must be a valid IANA zone, got: %s", cfg.RestaurantTimezone))
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"EstimatorTimeout", cfg.EstimatorTimeout},
		{"MaxWait", cfg.MaxWait},
		{"LookbackWindow", cfg.LookbackWindow},
		{"LockTTL", cfg.LockTTL},
		{"LockRetryBackoff", cfg.LockRetryBackoff},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	positiveInts := []struct {
		name  string
		value int
	}{
		{"RateLimitRequests", cfg.RateLimitRequests},
		{"MaxRequestSize", cfg.MaxRequestSize},
		{"MaxPartySize", cfg.MaxPartySize},
		{"FallbackSmallPartyMinutes", cfg.FallbackSmallPartyMinutes},
		{"FallbackLargePartyMinutes", cfg.FallbackLargePartyMinutes},
		{"FallbackDefaultMinutes", cfg.FallbackDefaultMinutes},
		{"SelectionAttempts", cfg.SelectionAttempts},
	}
	for _, n := range positiveInts {
		if n.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %d", n.name, n.value))
		}
	}

	if cfg.FallbackLargePartyMin <= cfg.FallbackSmallPartyMax {
		errors = append(errors, fmt.Sprintf("FallbackLargePartyMin (%d) must be greater than FallbackSmallPartyMax (%d)", cfg.FallbackLargePartyMin, cfg.FallbackSmallPartyMax))
	}

	if cfg.LockBackend != LockBackendMongo && cfg.LockBackend != LockBackendRedis {
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [%s, %s], got: %s", LockBackendMongo, LockBackendRedis, cfg.LockBackend))
	}
	if cfg.LockBackend == LockBackendRedis && cfg.RedisAddr == "" {
		errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
	}

	if cfg.KafkaEnabled && cfg.KafkaBookingsTopic == "" {
		errors = append(errors, "KafkaBookingsTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"restaurant_timezone", cfg.RestaurantTimezone,
		"estimator_url_set", cfg.EstimatorURL != "",
		"estimator_timeout", cfg.EstimatorTimeout,
		"max_party_size", cfg.MaxPartySize,
		"max_wait", cfg.MaxWait,
		"lookback_window", cfg.LookbackWindow,
		"selection_attempts", cfg.SelectionAttempts,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"lock_retry_backoff", cfg.LockRetryBackoff,
		"kafka_enabled", cfg.KafkaEnabled,
		"kafka_bookings_topic", cfg.KafkaBookingsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
