package service

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"securebank/internal/audit"
	"securebank/internal/clock"
	"securebank/internal/hashing"
	"securebank/internal/models"
)

var testStart = time.Date(2024, 12, 19, 10, 0, 0, 0, time.UTC)

var demoUser = models.User{
	UserID:      "USER001",
	Username:    "demo",
	DisplayName: "Farwah",
	Email:       "demo@securebank.com",
	Role:        models.RolePremium,
}

type engineFixture struct {
	engine *Engine
	clock  *clock.Fake
	log    *audit.SecurityLog
	alerts *AlertCenter
}

func testEngineConfig() EngineConfig {
	return EngineConfig{
		MaxLifetime:      time.Hour,
		IdleTimeout:      5 * time.Minute,
		PollInterval:     10 * time.Second,
		ActivityThrottle: time.Second,
		LockoutThreshold: 5,
		LockoutBase:      30 * time.Second,
	}
}

func newTestDirectory(t *testing.T) *UserDirectory {
	t.Helper()
	hasher := hashing.NewHasherWithParams(hashing.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1}, "test-pepper")
	users := NewUserDirectory(hasher)
	if err := users.Add(demoUser, "SecureBank123!"); err != nil {
		t.Fatalf("add demo user: %v", err)
	}
	return users
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	clk := clock.NewFake(testStart)
	log := audit.NewSecurityLog(clk, nil, zap.NewNop())
	alerts := NewAlertCenter(clk)
	engine := NewEngine(testEngineConfig(), clk, newTestDirectory(t), NewStaticCodeVerifier("123456"), log, alerts, zap.NewNop())
	t.Cleanup(engine.Close)
	return &engineFixture{engine: engine, clock: clk, log: log, alerts: alerts}
}

// signIn runs the full demo login and returns the session grant.
func (f *engineFixture) signIn(t *testing.T) models.SessionGrant {
	t.Helper()
	if _, err := f.engine.SubmitCredentials("demo", "SecureBank123!"); err != nil {
		t.Fatalf("submit credentials: %v", err)
	}
	grant, err := f.engine.SubmitMFACode("123456")
	if err != nil {
		t.Fatalf("submit mfa: %v", err)
	}
	return grant
}

func eventTypes(entries []models.SecurityLogEntry) []models.SecurityEventType {
	out := make([]models.SecurityEventType, len(entries))
	for i, e := range entries {
		out[i] = e.EventType
	}
	return out
}
