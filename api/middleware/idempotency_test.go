package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mercaly/mercaly-backend/pkg/logger"
)

type memoryStore struct {
	mu      sync.Mutex
	records map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[key], nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[key]; exists {
		return false, nil
	}
	m.records[key] = value.(string)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.records, key)
	}
	return nil
}

func idempotentRouter(store *memoryStore, calls *int) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "idempotency-test"})
	r := chi.NewRouter()
	r.Use(Idempotency(store, logg))
	r.Post("/api/v1/settlements", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	})
	r.Get("/api/v1/settlements", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestIdempotencyGuardsRoutesMountedInSubrouter(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	logg := logger.New(logger.Options{ServiceName: "idempotency-test"})

	// Mirror the production mounting: middleware on the /api/v1 subrouter,
	// handlers nested one level deeper.
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(Idempotency(store, logg))
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
			})
		})
	})

	missing := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	missingRec := httptest.NewRecorder()
	router.ServeHTTP(missingRec, missing)

	if missingRec.Code != http.StatusBadRequest {
		t.Fatalf("status without key = %d", missingRec.Code)
	}
	if calls != 0 {
		t.Fatalf("handler calls = %d", calls)
	}

	keyed := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	keyed.Header.Set("Idempotency-Key", "key-1")
	keyedRec := httptest.NewRecorder()
	router.ServeHTTP(keyedRec, keyed)

	if keyedRec.Code != http.StatusCreated {
		t.Fatalf("status with key = %d", keyedRec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}
	if len(store.records) != 1 {
		t.Fatalf("stored records = %d, want 1", len(store.records))
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := idempotentRouter(store, &calls)

	body := `{"order_id":"ORD-1"}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "key-1")
	firstRec := httptest.NewRecorder()
	router.ServeHTTP(firstRec, first)

	if firstRec.Code != http.StatusCreated {
		t.Fatalf("first status = %d", firstRec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}

	replay := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", strings.NewReader(body))
	replay.Header.Set("Idempotency-Key", "key-1")
	replayRec := httptest.NewRecorder()
	router.ServeHTTP(replayRec, replay)

	if replayRec.Code != http.StatusCreated {
		t.Fatalf("replay status = %d", replayRec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler ran again: calls = %d", calls)
	}
	if replayRec.Body.String() != firstRec.Body.String() {
		t.Fatalf("replay body = %s, want %s", replayRec.Body.String(), firstRec.Body.String())
	}
	if ct := replayRec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %s", ct)
	}
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := idempotentRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", strings.NewReader(`{"order_id":"ORD-1"}`))
	first.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", strings.NewReader(`{"order_id":"ORD-2"}`))
	second.Header.Set("Idempotency-Key", "key-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	if secondRec.Code != http.StatusConflict {
		t.Fatalf("status = %d", secondRec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := idempotentRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("handler calls = %d", calls)
	}
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	store := newMemoryStore()
	calls := 0
	router := idempotentRouter(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settlements", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("handler calls = %d", calls)
	}
	if len(store.records) != 0 {
		t.Fatalf("store should be empty, has %d records", len(store.records))
	}
}
