package config

// EnvPrefix is the envconfig prefix; every variable is also named explicitly
// in struct tags so the prefix mostly matters for docs and tooling.
const EnvPrefix = "mercaly"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "MERCALY_APP_ENV"
	EnvPort     = "MERCALY_APP_PORT"
	EnvLogLevel = "MERCALY_LOG_LEVEL"

	EnvDBDSN     = "MERCALY_DB_DSN"
	EnvDBHost    = "MERCALY_DB_HOST"
	EnvDBPort    = "MERCALY_DB_PORT"
	EnvDBUser    = "MERCALY_DB_USER"
	EnvDBName    = "MERCALY_DB_NAME"
	EnvDBSSLMode = "MERCALY_DB_SSLMODE"

	EnvRedisURL = "MERCALY_REDIS_URL"
)

// legacyDBEnvVars are the discrete connection vars accepted when
// MERCALY_DB_DSN is not set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
