package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	usecasecontract "github.com/popcornsocial/popcorn/internal/usecase/contract"
)

const (
	BackendSupabase   = "supabase"
	BackendJSONServer = "json-server"
)

// Config holds application configuration values.
type Config struct {
	Backend         string        `validate:"oneof=supabase json-server"`
	SupabaseURL     string        `validate:"required_if=Backend supabase,omitempty,url"`
	SupabaseAnonKey string        `validate:"required_if=Backend supabase"`
	JSONServerURL   string        `validate:"required_if=Backend json-server,omitempty,url"`
	HTTPTimeout     time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warn error"`

	Port               string
	MongoURI           string
	MongoDBName        string
	RedisURL           string
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RateLimitPerSecond float64
}

// Load reads an optional .env file and then builds the Config from the environment.
func Load(files ...string) (*Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load(files...)
	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig creates a new Config instance, loading values from environment variables.
func NewConfig() *Config {
	backend := strings.ToLower(getEnv("BACKEND", ""))
	if backend == "" {
		// Supabase wins when it is configured, matching the web client.
		if getEnv("SUPABASE_URL", "") != "" {
			backend = BackendSupabase
		} else {
			backend = BackendJSONServer
		}
	}
	return &Config{
		Backend:         backend,
		SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		JSONServerURL:   strings.TrimRight(getEnv("JSON_SERVER_URL", "http://localhost:3001"), "/"),
		HTTPTimeout:     time.Second * time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 10)),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),

		Port:               getEnv("PORT", "3001"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDBName:        getEnv("MONGODB_DB_NAME", "popcorn"),
		RedisURL:           getEnv("REDIS_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTokenExpiry:  time.Minute * time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRY_MINUTES", 60)),
		RateLimitPerSecond: getEnvAsFloat("RATE_LIMIT_PER_SECOND", 20),
	}
}

var _ usecasecontract.IConfigProvider = (*Config)(nil)

// Validate checks the backend selection and its required settings.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetBackend returns the selected backend name.
func (c *Config) GetBackend() string {
	return c.Backend
}

// GetSupabaseURL returns the Supabase project URL.
func (c *Config) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseAnonKey returns the Supabase anonymous API key.
func (c *Config) GetSupabaseAnonKey() string {
	return c.SupabaseAnonKey
}

// GetJSONServerURL returns the base URL of the mock REST backend.
func (c *Config) GetJSONServerURL() string {
	return c.JSONServerURL
}

// GetHTTPTimeout returns the timeout applied to every backend request.
func (c *Config) GetHTTPTimeout() time.Duration {
	return c.HTTPTimeout
}

func (c *Config) GetLogLevel() string {
	return c.LogLevel
}

func (c *Config) GetPort() string {
	return c.Port
}

func (c *Config) GetMongoURI() string {
	return c.MongoURI
}

func (c *Config) GetMongoDBName() string {
	return c.MongoDBName
}

func (c *Config) GetRedisURL() string {
	return c.RedisURL
}

func (c *Config) GetJWTSecret() string {
	return c.JWTSecret
}

// GetAccessTokenExpiry returns the lifetime of access tokens issued by the mock backend.
func (c *Config) GetAccessTokenExpiry() time.Duration {
	return c.AccessTokenExpiry
}

func (c *Config) GetRateLimitPerSecond() float64 {
	return c.RateLimitPerSecond
}

// Helper function to get a non-empty environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(name string, fallback int) int {
	valueStr := getEnv(name, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(name string, fallback float64) float64 {
	valueStr := getEnv(name, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}
