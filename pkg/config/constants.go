package config

// EnvPrefix scopes every environment variable this service reads.
const EnvPrefix = "VUNALET"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "VUNALET_APP_ENV"
	EnvPort     = "VUNALET_APP_PORT"
	EnvDBDSN    = "VUNALET_DB_DSN"
	EnvDBHost   = "VUNALET_DB_HOST"
	EnvDBUser   = "VUNALET_DB_USER"
	EnvDBName   = "VUNALET_DB_NAME"
	EnvRedisURL = "VUNALET_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
