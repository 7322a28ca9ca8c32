package mocks

import (
	"fmt"
	"sync"
)

// MockLogger records log lines instead of printing them.
type MockLogger struct {
	mu    sync.Mutex
	Lines []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) record(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, level+" "+fmt.Sprintf(format, args...))
}

func (l *MockLogger) Debugf(format string, args ...interface{}) { l.record("DEBUG", format, args...) }
func (l *MockLogger) Infof(format string, args ...interface{})  { l.record("INFO", format, args...) }
func (l *MockLogger) Warnf(format string, args ...interface{})  { l.record("WARN", format, args...) }
func (l *MockLogger) Errorf(format string, args ...interface{}) { l.record("ERROR", format, args...) }
func (l *MockLogger) Fatalf(format string, args ...interface{}) { l.record("FATAL", format, args...) }

// MockMetrics counts controller outcomes.
type MockMetrics struct {
	mu         sync.Mutex
	Applied    int
	Ignored    int
	Reconciled int
	RolledBack map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{RolledBack: make(map[string]int)}
}

func (m *MockMetrics) ToggleApplied(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Applied++
}

func (m *MockMetrics) ToggleIgnored(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ignored++
}

func (m *MockMetrics) ToggleReconciled(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reconciled++
}

func (m *MockMetrics) ToggleRolledBack(_ string, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RolledBack[kind]++
}

// MockValidator accepts everything unless told otherwise.
type MockValidator struct {
	ShouldFailEmail    bool
	ShouldFailPassword bool
	ShouldFailStruct   bool
}

func (v *MockValidator) ValidateEmail(email string) error {
	if v.ShouldFailEmail {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

func (v *MockValidator) ValidatePasswordStrength(string) error {
	if v.ShouldFailPassword {
		return fmt.Errorf("password too weak")
	}
	return nil
}

func (v *MockValidator) ValidateStruct(interface{}) error {
	if v.ShouldFailStruct {
		return fmt.Errorf("invalid input")
	}
	return nil
}
