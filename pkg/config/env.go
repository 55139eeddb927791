package config

const (
	EnvAPIBaseURL     = "HOTELDESK_API_URL"
	EnvRequestTimeout = "HOTELDESK_REQUEST_TIMEOUT"

	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvSessionBackend = "HOTELDESK_SESSION_BACKEND"
	EnvSessionFile    = "HOTELDESK_SESSION_FILE"
	EnvSessionProfile = "HOTELDESK_SESSION_PROFILE"
	EnvSessionKey     = "HOTELDESK_SESSION_KEY"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaBrokers = "KAFKA_BROKERS"
	EnvEventsTopic  = "HOTELDESK_EVENTS_TOPIC"

	EnvPort            = "PORT"
	EnvJWTSecret       = "MOCKAPI_JWT_SECRET"
	EnvAccessTokenTTL  = "MOCKAPI_ACCESS_TTL"
	EnvRefreshTokenTTL = "MOCKAPI_REFRESH_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvHandlerTimeout    = "HANDLER_TIMEOUT"
	EnvIdempotencyTTL    = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize    = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
