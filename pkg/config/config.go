package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "shopmaster"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv  = "SHOPMASTER_APP_ENV"
	EnvAppPort = "SHOPMASTER_APP_PORT"
	EnvDBDSN   = "SHOPMASTER_DB_DSN"
	EnvDBHost  = "SHOPMASTER_DB_HOST"
	EnvDBUser  = "SHOPMASTER_DB_USER"
	EnvDBName  = "SHOPMASTER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	Reports      ReportsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPMASTER_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPMASTER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPMASTER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPMASTER_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"SHOPMASTER_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPMASTER_DB_DSN"`
	Driver string `envconfig:"SHOPMASTER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPMASTER_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPMASTER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPMASTER_DB_USER"`
	LegacyPassword string `envconfig:"SHOPMASTER_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPMASTER_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPMASTER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPMASTER_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"SHOPMASTER_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPMASTER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPMASTER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"SHOPMASTER_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"SHOPMASTER_SQLITE_PATH" default:"shopmaster.db"`
	AutoMigrate bool   `envconfig:"SHOPMASTER_AUTO_MIGRATE" default:"false"`
	SeedCatalog bool   `envconfig:"SHOPMASTER_SEED_CATALOG" default:"true"`
}

type CheckoutConfig struct {
	// SessionTTL bounds how long an abandoned cart session is retained
	// before the registry drops it.
	SessionTTL time.Duration `envconfig:"SHOPMASTER_CHECKOUT_SESSION_TTL" default:"4h"`
}

type ReportsConfig struct {
	DailyWindowDays int `envconfig:"SHOPMASTER_REPORTS_DAILY_WINDOW_DAYS" default:"7"`
	HistoryPageSize int `envconfig:"SHOPMASTER_REPORTS_HISTORY_PAGE_SIZE" default:"50"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
