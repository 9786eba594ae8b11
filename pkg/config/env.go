package config

const (
	EnvPrefix = "FREIGHTLINK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "FREIGHTLINK_APP_ENV"
	EnvPort     = "FREIGHTLINK_APP_PORT"
	EnvLogLevel = "FREIGHTLINK_LOG_LEVEL"

	EnvDBDSN    = "FREIGHTLINK_DB_DSN"
	EnvDBDriver = "FREIGHTLINK_DB_DRIVER"
	EnvDBHost   = "FREIGHTLINK_DB_HOST"
	EnvDBUser   = "FREIGHTLINK_DB_USER"
	EnvDBName   = "FREIGHTLINK_DB_NAME"

	EnvRedisURL = "FREIGHTLINK_REDIS_URL"

	EnvJWTSecret  = "FREIGHTLINK_JWT_SECRET"
	EnvJWTIssuer  = "FREIGHTLINK_JWT_ISSUER"
	EnvJWTExpMins = "FREIGHTLINK_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "FREIGHTLINK_USE_SQLITE"
	EnvAutoMigrate = "FREIGHTLINK_AUTO_MIGRATE"

	EnvSettlementCurrency      = "FREIGHTLINK_SETTLEMENT_CURRENCY"
	EnvSettlementSweepInterval = "FREIGHTLINK_SETTLEMENT_SWEEP_INTERVAL"

	EnvGCPProjectID            = "FREIGHTLINK_GCP_PROJECT_ID"
	EnvPubSubSettlementTopic   = "FREIGHTLINK_PUBSUB_SETTLEMENT_TOPIC"
	EnvPubSubSettlementSub     = "FREIGHTLINK_PUBSUB_SETTLEMENT_SUBSCRIPTION"
	EnvOutboxPublishBatchSize  = "FREIGHTLINK_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPublishPollMillis = "FREIGHTLINK_OUTBOX_PUBLISH_POLL_MS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
