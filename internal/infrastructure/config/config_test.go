package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"BACKEND", "SUPABASE_URL", "SUPABASE_ANON_KEY", "JSON_SERVER_URL", "HTTP_TIMEOUT_SECONDS", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestNewConfig_DefaultsToJSONServer(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendJSONServer, cfg.GetBackend())
	assert.Equal(t, "http://localhost:3001", cfg.GetJSONServerURL())
	assert.Equal(t, 10*time.Second, cfg.GetHTTPTimeout())
	assert.Equal(t, "info", cfg.GetLogLevel())
}

func TestNewConfig_SupabaseWhenConfigured(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co/")
	t.Setenv("SUPABASE_ANON_KEY", "anon")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")

	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSupabase, cfg.GetBackend())
	assert.Equal(t, "https://abc.supabase.co", cfg.GetSupabaseURL())
	assert.Equal(t, 3*time.Second, cfg.GetHTTPTimeout())
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND", "supabase")
	t.Setenv("LOG_LEVEL", "info")
	assert.Error(t, NewConfig().Validate(), "supabase needs a url and key")

	t.Setenv("BACKEND", "firebase")
	assert.Error(t, NewConfig().Validate())

	t.Setenv("BACKEND", "json-server")
	t.Setenv("JSON_SERVER_URL", "http://localhost:3001")
	assert.NoError(t, NewConfig().Validate())
}
