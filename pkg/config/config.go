package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Settlement   SettlementConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Maps         MapsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Settlement.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FREIGHTLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"FREIGHTLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FREIGHTLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FREIGHTLINK_LOG_WARN_STACK" default:"false"`

	// CORSOrigins is a comma separated allow list for browser clients.
	CORSOrigins []string `envconfig:"FREIGHTLINK_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FREIGHTLINK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FREIGHTLINK_DB_DSN"`
	Driver string `envconfig:"FREIGHTLINK_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"FREIGHTLINK_SQLITE_PATH" default:"freightlink.db"`

	LegacyHost     string `envconfig:"FREIGHTLINK_DB_HOST"`
	LegacyPort     int    `envconfig:"FREIGHTLINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FREIGHTLINK_DB_USER"`
	LegacyPassword string `envconfig:"FREIGHTLINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"FREIGHTLINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"FREIGHTLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FREIGHTLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FREIGHTLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FREIGHTLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FREIGHTLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FREIGHTLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FREIGHTLINK_REDIS_ADDR"`
	Password     string        `envconfig:"FREIGHTLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FREIGHTLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FREIGHTLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FREIGHTLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FREIGHTLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FREIGHTLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FREIGHTLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FREIGHTLINK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FREIGHTLINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FREIGHTLINK_JWT_EXPIRATION_MINUTES" required:"true"`
}

// RateLimitConfig bounds write traffic against the settlement surface.
type RateLimitConfig struct {
	SettlementWindow time.Duration `envconfig:"FREIGHTLINK_RATE_LIMIT_SETTLEMENT_WINDOW" default:"1m"`
	SettlementLimit  int           `envconfig:"FREIGHTLINK_RATE_LIMIT_SETTLEMENT_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FREIGHTLINK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FREIGHTLINK_AUTO_MIGRATE" default:"false"`
	// DeductOnPODVerify runs the settlement orchestrator when a POD is verified.
	DeductOnPODVerify bool `envconfig:"FREIGHTLINK_FEATURE_DEDUCT_ON_POD_VERIFY" default:"true"`
}

type SettlementConfig struct {
	Currency           string        `envconfig:"FREIGHTLINK_SETTLEMENT_CURRENCY" default:"ETB"`
	SweepInterval      time.Duration `envconfig:"FREIGHTLINK_SETTLEMENT_SWEEP_INTERVAL" default:"5m"`
	SweepBatchSize     int           `envconfig:"FREIGHTLINK_SETTLEMENT_SWEEP_BATCH_SIZE" default:"100"`
	SweepMinAge        time.Duration `envconfig:"FREIGHTLINK_SETTLEMENT_SWEEP_MIN_AGE" default:"10m"`
	MaxPreviewDistance string        `envconfig:"FREIGHTLINK_SETTLEMENT_MAX_PREVIEW_KM" default:"10000"`
}

// MaxPreviewKm parses the preview distance ceiling.
func (s SettlementConfig) MaxPreviewKm() decimal.Decimal {
	value, err := decimal.NewFromString(strings.TrimSpace(s.MaxPreviewDistance))
	if err != nil {
		return decimal.NewFromInt(10000)
	}
	return value
}

func (s SettlementConfig) validate() error {
	if len(strings.TrimSpace(s.Currency)) != 3 {
		return fmt.Errorf("%s must be a 3 letter currency code", EnvSettlementCurrency)
	}
	if s.SweepInterval < 0 {
		return fmt.Errorf("%s must not be negative", EnvSettlementSweepInterval)
	}
	return nil
}

type GCPConfig struct {
	ProjectID string `envconfig:"FREIGHTLINK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	SettlementTopic        string `envconfig:"FREIGHTLINK_PUBSUB_SETTLEMENT_TOPIC" default:"fl-settlement-events"`
	SettlementSubscription string `envconfig:"FREIGHTLINK_PUBSUB_SETTLEMENT_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"FREIGHTLINK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"FREIGHTLINK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"FREIGHTLINK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"FREIGHTLINK_OUTBOX_RETENTION" default:"720h"`
}

// MapsConfig enables the route distance estimator when an API key is set.
type MapsConfig struct {
	APIKey  string        `envconfig:"FREIGHTLINK_GOOGLE_MAPS_API_KEY"`
	Region  string        `envconfig:"FREIGHTLINK_GOOGLE_MAPS_REGION" default:"et"`
	Timeout time.Duration `envconfig:"FREIGHTLINK_GOOGLE_MAPS_TIMEOUT" default:"5s"`
}

func (m MapsConfig) Enabled() bool {
	return strings.TrimSpace(m.APIKey) != ""
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.Driver = "sqlite"
		db.DSN = db.SQLitePath
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
