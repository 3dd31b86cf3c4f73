package config

// EnvPrefix is intentionally empty; each field carries its fully-qualified
// env var name in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DISCOUNT_DB_DSN"
	EnvDBHost = "DISCOUNT_DB_HOST"
	EnvDBUser = "DISCOUNT_DB_USER"
	EnvDBName = "DISCOUNT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
