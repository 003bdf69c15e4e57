package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Session.MaxLifetime != time.Hour {
		t.Fatalf("expected 1h max lifetime, got %s", cfg.Session.MaxLifetime)
	}
	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Fatalf("expected 5m idle timeout, got %s", cfg.Session.IdleTimeout)
	}
	if cfg.Session.PollInterval != 10*time.Second {
		t.Fatalf("expected 10s poll interval, got %s", cfg.Session.PollInterval)
	}
	if cfg.Lockout.Threshold != 5 || cfg.Lockout.BaseDuration != 30*time.Second {
		t.Fatalf("unexpected lockout defaults: %+v", cfg.Lockout)
	}
	if cfg.Demo.Username != "demo" || cfg.Demo.Role != "premium" {
		t.Fatalf("unexpected demo defaults: %+v", cfg.Demo)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Requests != 100 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SECUREBANK_SERVER_PORT", "9090")
	t.Setenv("SECUREBANK_SESSION_IDLE_TIMEOUT", "2m")
	t.Setenv("SECUREBANK_STORAGE_BACKEND", "redis")
	t.Setenv("SECUREBANK_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.GetServerAddress() != ":9090" {
		t.Fatalf("unexpected address %q", cfg.GetServerAddress())
	}
	if cfg.Session.IdleTimeout != 2*time.Minute {
		t.Fatalf("expected 2m idle timeout, got %s", cfg.Session.IdleTimeout)
	}
	if cfg.Storage.Backend != "redis" {
		t.Fatalf("expected redis backend, got %q", cfg.Storage.Backend)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SECUREBANK_STORAGE_BACKEND", "sqlite")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
