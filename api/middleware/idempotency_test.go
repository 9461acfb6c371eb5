package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/gearmart-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	store := newMemoryIdempotencyStore()

	var handlerCalls int
	handler := Idempotency(store, time.Hour, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"transaction_id":"TRX-ABCDEF12"}}`))
	}))

	makeRequest := func(key, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing key rejected", func(t *testing.T) {
		rec := makeRequest("", `{"payment_method":"credit"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("first call executes, replay served from store", func(t *testing.T) {
		first := makeRequest("key-1", `{"payment_method":"credit"}`)
		if first.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", first.Code)
		}

		second := makeRequest("key-1", `{"payment_method":"credit"}`)
		if second.Code != http.StatusCreated {
			t.Fatalf("expected replayed 201, got %d", second.Code)
		}
		if second.Body.String() != first.Body.String() {
			t.Fatalf("expected identical bodies, got %q vs %q", second.Body.String(), first.Body.String())
		}
		if handlerCalls != 1 {
			t.Fatalf("expected a single handler invocation, got %d", handlerCalls)
		}
	})

	t.Run("key reuse with different body rejected", func(t *testing.T) {
		rec := makeRequest("key-1", `{"payment_method":"debit"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestIdempotencySkipsUncoveredRoutes(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	store := newMemoryIdempotencyStore()

	handler := Idempotency(store, time.Hour, logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through 200, got %d", rec.Code)
	}
	if store.size() != 0 {
		t.Fatal("expected no idempotency records for uncovered routes")
	}
}

type memoryIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: map[string]string{}}
}

func (m *memoryIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
