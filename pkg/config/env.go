package config

// EnvPrefix is empty because every variable already carries the AGROGAS_ prefix.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "AGROGAS_APP_ENV"
	EnvPort      = "AGROGAS_APP_PORT"
	EnvDBDSN     = "AGROGAS_DB_DSN"
	EnvDBDriver  = "AGROGAS_DB_DRIVER"
	EnvDBHost    = "AGROGAS_DB_HOST"
	EnvDBUser    = "AGROGAS_DB_USER"
	EnvDBName    = "AGROGAS_DB_NAME"
	EnvRedisURL  = "AGROGAS_REDIS_URL"
	EnvJWTSecret = "AGROGAS_JWT_SECRET"

	EnvDefaultPricePerM3 = "AGROGAS_DEFAULT_PRICE_PER_M3"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
