package config

// EnvPrefix namespaces every environment variable consumed by the service.
const EnvPrefix = "SHOPLIVE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv          = "SHOPLIVE_APP_ENV"
	EnvPort            = "SHOPLIVE_APP_PORT"
	EnvRedisURL        = "SHOPLIVE_REDIS_URL"
	EnvPaymentsBaseURL = "SHOPLIVE_PAYMENTS_BASE_URL"
	EnvPaymentsAPIKey  = "SHOPLIVE_PAYMENTS_API_KEY"
)
