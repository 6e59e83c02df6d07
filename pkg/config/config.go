package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "sarishop"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SARISHOP_DB_DSN"
	EnvDBHost = "SARISHOP_DB_HOST"
	EnvDBUser = "SARISHOP_DB_USER"
	EnvDBName = "SARISHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	CORS         CORSConfig
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
	Env          string `envconfig:"SARISHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SARISHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SARISHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SARISHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SARISHOP_DB_DSN"`
	Driver string `envconfig:"SARISHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SARISHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SARISHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SARISHOP_DB_USER"`
	LegacyPassword string `envconfig:"SARISHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SARISHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SARISHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SARISHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SARISHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SARISHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SARISHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SARISHOP_REDIS_URL"`
	Address      string        `envconfig:"SARISHOP_REDIS_ADDR"`
	Password     string        `envconfig:"SARISHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SARISHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SARISHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SARISHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SARISHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SARISHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SARISHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SARISHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SARISHOP_JWT_ISSUER" default:"sarishop"`
	ExpirationMinutes int    `envconfig:"SARISHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SARISHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SARISHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SARISHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SARISHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SARISHOP_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SARISHOP_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"SARISHOP_STRIPE_API_KEY"`
	WebhookSecret string        `envconfig:"SARISHOP_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"SARISHOP_STRIPE_ENV" default:"test"`
	EventTTL      time.Duration `envconfig:"SARISHOP_STRIPE_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"SARISHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
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
