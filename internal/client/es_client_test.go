package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"securebank/internal/config"
)

type fakeElastic struct {
	mu       sync.Mutex
	paths    []string
	docs     []map[string]interface{}
	failWith int
}

func (f *fakeElastic) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/" {
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`))
		return
	}

	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		_, _ = w.Write([]byte(`{"error":{"reason":"mapping conflict"}}`))
		return
	}

	var doc map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&doc)
	f.docs = append(f.docs, doc)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"result":"created"}`))
}

func newTestESClient(t *testing.T, handler http.Handler) *ESClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Environment: "test"}
	cfg.Elasticsearch.URL = srv.URL

	es, err := NewElasticsearchClient(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return es
}

func TestESClientIndexDocument(t *testing.T) {
	fake := &fakeElastic{}
	es := newTestESClient(t, fake)

	err := es.IndexDocument(context.Background(), "security-events", "evt-1", map[string]string{"eventType": "LOGOUT"})
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	last := fake.paths[len(fake.paths)-1]
	if last != "PUT /security-events/_doc/evt-1" {
		t.Fatalf("unexpected request %q", last)
	}
	if len(fake.docs) != 1 || fake.docs[0]["eventType"] != "LOGOUT" {
		t.Fatalf("unexpected docs %v", fake.docs)
	}
}

func TestESClientIndexDocumentError(t *testing.T) {
	es := newTestESClient(t, &fakeElastic{failWith: http.StatusBadRequest})

	err := es.IndexDocument(context.Background(), "security-events", "evt-1", map[string]string{})
	if err == nil || !strings.Contains(err.Error(), "mapping conflict") {
		t.Fatalf("expected index error carrying the reason, got %v", err)
	}
}
