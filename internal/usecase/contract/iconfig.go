package usecasecontract

import "time"

// IConfigProvider exposes typed configuration values.
type IConfigProvider interface {
	GetBackend() string
	GetSupabaseURL() string
	GetSupabaseAnonKey() string
	GetJSONServerURL() string
	GetHTTPTimeout() time.Duration
	GetLogLevel() string

	GetPort() string
	GetMongoURI() string
	GetMongoDBName() string
	GetRedisURL() string
	GetJWTSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRateLimitPerSecond() float64
}
