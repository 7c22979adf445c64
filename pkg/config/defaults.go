package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "reservo"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "INFO"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSweepInterval      = 60 * time.Second
	DefaultLockTTL            = 10 * time.Second
	DefaultLockAcquireTimeout = 5 * time.Second
	DefaultLockRetryInterval  = 50 * time.Millisecond

	DefaultIdentifierMaxAttempts = 10
	DefaultMaxSeriesSpanDays     = 366

	DefaultKafkaEnabled = false
	DefaultKafkaTopic   = "reservation-events"

	DefaultPaginationLimit = 100
)

var DefaultKafkaBrokers = []string{"localhost:9092"}
