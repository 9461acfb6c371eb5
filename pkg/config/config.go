package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GEARMART_DB_DSN"
	EnvDBHost = "GEARMART_DB_HOST"
	EnvDBUser = "GEARMART_DB_USER"
	EnvDBName = "GEARMART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Checkout     CheckoutConfig
	Events       EventsConfig
	Catalog      CatalogConfig
	Profile      ProfileConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = "gearmart.db"
		}
		cfg.DB.Driver = "sqlite"
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GEARMART_APP_ENV" default:"dev"`
	Port         string `envconfig:"GEARMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GEARMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GEARMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GEARMART_DB_DSN"`
	Driver string `envconfig:"GEARMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GEARMART_DB_HOST"`
	LegacyPort     int    `envconfig:"GEARMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GEARMART_DB_USER"`
	LegacyPassword string `envconfig:"GEARMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"GEARMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"GEARMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GEARMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GEARMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GEARMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GEARMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GEARMART_REDIS_URL"`
	Address      string        `envconfig:"GEARMART_REDIS_ADDR"`
	Password     string        `envconfig:"GEARMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"GEARMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GEARMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GEARMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GEARMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GEARMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GEARMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	PaymentDelay   time.Duration `envconfig:"GEARMART_CHECKOUT_PAYMENT_DELAY" default:"2s"`
	IdempotencyTTL time.Duration `envconfig:"GEARMART_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type EventsConfig struct {
	BufferSize int `envconfig:"GEARMART_EVENTS_BUFFER_SIZE" default:"16"`
}

type CatalogConfig struct {
	SeedDemo bool `envconfig:"GEARMART_CATALOG_SEED_DEMO" default:"false"`
}

type ProfileConfig struct {
	CustomerName     string `envconfig:"GEARMART_PROFILE_CUSTOMER_NAME" default:"Invitado"`
	ShippingAddress  string `envconfig:"GEARMART_PROFILE_SHIPPING_ADDRESS" default:""`
	DiscountEligible bool   `envconfig:"GEARMART_PROFILE_DISCOUNT_ELIGIBLE" default:"false"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GEARMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GEARMART_AUTO_MIGRATE" default:"false"`
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
