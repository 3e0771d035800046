package config

// EnvPrefix is empty because every variable already carries the FRESHBASKET_
// prefix in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "FRESHBASKET_DB_DSN"
	EnvDBHost = "FRESHBASKET_DB_HOST"
	EnvDBUser = "FRESHBASKET_DB_USER"
	EnvDBName = "FRESHBASKET_DB_NAME"
)

// legacyDBEnvVars are the discrete connection variables accepted when a full
// DSN is not provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
