package factory

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewFactoryWithMemoryBackend(t *testing.T) {
	t.Setenv("SECUREBANK_HASHING_ARGON2_MEMORY_COST", "1024")
	t.Setenv("SECUREBANK_STORAGE_BACKEND", "memory")

	f, err := NewFactory()
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	if failures := f.HealthCheck(t.Context()); len(failures) != 0 {
		t.Fatalf("expected healthy factory, got %v", failures)
	}

	router := f.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health: got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Fatalf("metrics: got %d", rec.Code)
	}

	if f.Dispatcher() == nil || f.ServiceFactory() == nil {
		t.Fatalf("expected dispatcher and services to be wired")
	}
}
