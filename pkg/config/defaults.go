package config

import "time"

const (
	DefaultAPIBaseURL     = "http://localhost:8000/api/v1"
	DefaultRequestTimeout = 10 * time.Second

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultSessionBackend = BackendFile
	DefaultSessionProfile = "default"
	DefaultSessionDir     = ".hoteldesk"
	DefaultSessionFile    = "session.json"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hoteldesk"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultEventsTopic = "hoteldesk.session-events"

	DefaultPort            = "8000"
	DefaultJWTSecret       = "hoteldesk-dev-secret-change-me"
	DefaultAccessTokenTTL  = 5 * time.Minute
	DefaultRefreshTokenTTL = 24 * time.Hour

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Minute
	DefaultHandlerTimeout    = 30 * time.Second
	DefaultIdempotencyTTL    = 24 * time.Hour
	DefaultMaxRequestSize    = 1 << 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
)
