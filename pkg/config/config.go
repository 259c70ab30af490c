package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Pricing       PricingConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string   `envconfig:"AGROGAS_APP_ENV" required:"true"`
	Port         string   `envconfig:"AGROGAS_APP_PORT" default:"8000"`
	LogLevel     string   `envconfig:"AGROGAS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"AGROGAS_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins  []string `envconfig:"AGROGAS_CORS_ORIGINS" default:"http://localhost:5500,http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"AGROGAS_DB_DSN"`
	Driver string `envconfig:"AGROGAS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"AGROGAS_DB_HOST"`
	Port     int    `envconfig:"AGROGAS_DB_PORT" default:"5432"`
	User     string `envconfig:"AGROGAS_DB_USER"`
	Password string `envconfig:"AGROGAS_DB_PASSWORD"`
	Name     string `envconfig:"AGROGAS_DB_NAME"`
	SSLMode  string `envconfig:"AGROGAS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AGROGAS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AGROGAS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AGROGAS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AGROGAS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	LockTimeout     time.Duration `envconfig:"AGROGAS_DB_LOCK_TIMEOUT" default:"0s"`
}

// IsSQLite reports whether the configured driver is the embedded SQLite engine.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AGROGAS_REDIS_URL"`
	Address      string        `envconfig:"AGROGAS_REDIS_ADDR"`
	Password     string        `envconfig:"AGROGAS_REDIS_PASSWORD"`
	DB           int           `envconfig:"AGROGAS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AGROGAS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AGROGAS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AGROGAS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AGROGAS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AGROGAS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"AGROGAS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"AGROGAS_JWT_ISSUER" default:"agrogas"`
	ExpirationMinutes int    `envconfig:"AGROGAS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int           `envconfig:"AGROGAS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int           `envconfig:"AGROGAS_ARGON_TIME" default:"3"`
	ArgonParallelism int           `envconfig:"AGROGAS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int           `envconfig:"AGROGAS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"AGROGAS_ARGON_KEY_LEN" default:"32"`
	ResetCodeTTL     time.Duration `envconfig:"AGROGAS_RESET_CODE_TTL" default:"15m"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"AGROGAS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginPhoneLimit int           `envconfig:"AGROGAS_AUTH_RATE_LIMIT_LOGIN_PHONE_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"AGROGAS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`

	// Reset limits cover request and confirm together; a six digit code
	// must not be guessable inside one ResetCodeTTL.
	ResetWindow     time.Duration `envconfig:"AGROGAS_AUTH_RATE_LIMIT_RESET_WINDOW" default:"15m"`
	ResetPhoneLimit int           `envconfig:"AGROGAS_AUTH_RATE_LIMIT_RESET_PHONE_LIMIT" default:"5"`
	ResetIPLimit    int           `envconfig:"AGROGAS_AUTH_RATE_LIMIT_RESET_IP_LIMIT" default:"30"`
}

// PricingConfig seeds the pricing row the first time it is read.
type PricingConfig struct {
	PricePerM3             float64 `envconfig:"AGROGAS_DEFAULT_PRICE_PER_M3" default:"50.0"`
	DefaultYieldPerKgVS    float64 `envconfig:"AGROGAS_DEFAULT_YIELD_PER_KGVS" default:"0.20"`
	DefaultMethaneFraction float64 `envconfig:"AGROGAS_DEFAULT_METHANE_FRACTION" default:"0.55"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AGROGAS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when driver is %s", EnvDBDSN, DriverSQLite)
	}

	missing := []string{}
	partValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if partValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
