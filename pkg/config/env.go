package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "BAZAAR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "BAZAAR_APP_ENV"
	EnvPort   = "BAZAAR_APP_PORT"

	EnvDBDSN  = "BAZAAR_DB_DSN"
	EnvDBHost = "BAZAAR_DB_HOST"
	EnvDBUser = "BAZAAR_DB_USER"
	EnvDBName = "BAZAAR_DB_NAME"

	EnvRedisURL  = "BAZAAR_REDIS_URL"
	EnvRedisAddr = "BAZAAR_REDIS_ADDR"

	EnvJWTSecret  = "BAZAAR_JWT_SECRET"
	EnvJWTIssuer  = "BAZAAR_JWT_ISSUER"
	EnvJWTExpMins = "BAZAAR_JWT_EXPIRATION_MINUTES"
	EnvJWTLeeway  = "BAZAAR_JWT_LEEWAY"

	EnvReferralCommission = "BAZAAR_REFERRAL_COMMISSION"
	EnvMinWithdrawal      = "BAZAAR_MIN_WITHDRAWAL"
)
