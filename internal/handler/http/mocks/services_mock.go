package mocks

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"
)

// MockTokens accepts tokens of the form "token-<userID>".
type MockTokens struct {
	ShouldFailGenerate bool
}

func (m *MockTokens) GenerateAccessToken(userID, username string) (string, time.Time, error) {
	if m.ShouldFailGenerate {
		return "", time.Time{}, errors.New("token generation failed")
	}
	return "token-" + userID, time.Now().Add(time.Hour), nil
}

func (m *MockTokens) VerifyAccessToken(token string) (string, error) {
	userID, ok := strings.CutPrefix(token, "token-")
	if !ok || userID == "" {
		return "", errors.New("invalid token")
	}
	return userID, nil
}

// MockHasher stores passwords with a visible prefix.
type MockHasher struct{}

func (MockHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (MockHasher) ComparePasswordHash(password, hashedPassword string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

type MockValidator struct {
	ShouldFailPassword bool
}

func (m *MockValidator) ValidateEmail(email string) error { return nil }

func (m *MockValidator) ValidatePasswordStrength(password string) error {
	if m.ShouldFailPassword {
		return errors.New("password is too weak")
	}
	return nil
}

func (m *MockValidator) ValidateStruct(s interface{}) error { return nil }

type MockLogger struct{}

func (MockLogger) Debugf(format string, args ...interface{}) {}
func (MockLogger) Infof(format string, args ...interface{})  {}
func (MockLogger) Warnf(format string, args ...interface{})  {}
func (MockLogger) Errorf(format string, args ...interface{}) {}
func (MockLogger) Fatalf(format string, args ...interface{}) {}

// MockListCache is a map-backed list cache that records invalidations.
type MockListCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	Invalidations []string
}

func NewMockListCache() *MockListCache {
	return &MockListCache{entries: make(map[string][]byte)}
}

func (m *MockListCache) GetList(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (m *MockListCache) SetList(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = b
	return nil
}

func (m *MockListCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidations = append(m.Invalidations, prefix)
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// MockConfig serves fixed values.
type MockConfig struct {
	RateLimit float64
}

func (m *MockConfig) GetBackend() string                  { return "json-server" }
func (m *MockConfig) GetSupabaseURL() string              { return "" }
func (m *MockConfig) GetSupabaseAnonKey() string          { return "" }
func (m *MockConfig) GetJSONServerURL() string            { return "http://localhost:3001" }
func (m *MockConfig) GetHTTPTimeout() time.Duration       { return 5 * time.Second }
func (m *MockConfig) GetLogLevel() string                 { return "debug" }
func (m *MockConfig) GetPort() string                     { return "3001" }
func (m *MockConfig) GetMongoURI() string                 { return "" }
func (m *MockConfig) GetMongoDBName() string              { return "popcorn_test" }
func (m *MockConfig) GetRedisURL() string                 { return "" }
func (m *MockConfig) GetJWTSecret() string                { return "test-secret" }
func (m *MockConfig) GetAccessTokenExpiry() time.Duration { return time.Hour }
func (m *MockConfig) GetRateLimitPerSecond() float64      { return m.RateLimit }
