package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
)

// fakeStore fails writes on a done context, like go-redis does.
type fakeStore struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}


func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = fmt.Sprint(value)
	f.ttl[key] = ttl
	return nil
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	f.ttl[key] = ttl
	return true, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func requestWithPattern(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func orderRequest(key, body string) *http.Request {
	req := requestWithPattern(http.MethodPost, "/api/v1/orders", "/api/v1/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestRouteTTLSelection(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		pattern string
		want    time.Duration
		ok      bool
	}{
		{"place order", http.MethodPost, "/api/v1/orders", criticalIdempotencyTTL, true},
		{"create record", http.MethodPost, "/api/v1/records", defaultIdempotencyTTL, true},
		{"register", http.MethodPost, "/api/v1/auth/register", defaultIdempotencyTTL, true},
		{"list orders", http.MethodGet, "/api/v1/orders", 0, false},
		{"login", http.MethodPost, "/api/v1/auth/login", 0, false},
	}

	for _, tt := range tests {
		ttl, ok := routeTTL(tt.method, tt.pattern)
		require.Equal(t, tt.ok, ok, tt.name)
		if ok {
			require.Equal(t, tt.want, ttl, tt.name)
		}
	}
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, orderRequest("", `{"buyer_name":"A"}`))
		require.Equal(t, http.StatusCreated, resp.Code)
	}
	require.Equal(t, 2, calls)
	require.Empty(t, store.data)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":1}}`))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest("abc", `{"buyer_name":"A"}`))
	require.Equal(t, http.StatusCreated, first.Code)

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, orderRequest("abc", `{"buyer_name":"A"}`))
	require.Equal(t, http.StatusCreated, replay.Code)
	require.Equal(t, "application/json", replay.Header().Get("Content-Type"))
	require.Equal(t, "true", replay.Header().Get("Idempotent-Replayed"))
	require.Equal(t, `{"data":{"order_id":1}}`, strings.TrimSpace(replay.Body.String()))
	require.Equal(t, 1, calls)

	key := store.IdempotencyKey("|POST|/api/v1/orders", "abc")
	require.Equal(t, criticalIdempotencyTTL, store.ttl[key])
}

func TestIdempotencyDetectsBodyChange(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), orderRequest("xyz", `{"buyer_name":"A"}`))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest("xyz", `{"buyer_name":"B"}`))
	require.Equal(t, http.StatusConflict, resp.Code)

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Equal(t, string(pkgerrors.CodeIdempotency), payload.Error.Code)
}

func TestIdempotencyReleasesKeyOnFailure(t *testing.T) {
	store := newFakeStore()
	status := http.StatusConflict
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest("retry-me", `{}`))
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Empty(t, store.data)

	status = http.StatusCreated
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest("retry-me", `{}`))
	require.Equal(t, http.StatusCreated, resp.Code)
	require.Equal(t, 2, calls)
}

func TestIdempotencyRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeStore()
	handler := Idempotency(store, nil)(okHandler())

	// simulate an in-flight first attempt holding the key
	req := orderRequest("busy", `{}`)
	key := store.IdempotencyKey("|POST|/api/v1/orders", "busy")
	marker, err := json.Marshal(idempotencyRecord{RequestHash: hashBody([]byte(`{}`))})
	require.NoError(t, err)
	store.data[key] = string(marker)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	require.Equal(t, http.StatusConflict, resp.Code)
	require.Contains(t, resp.Body.String(), string(pkgerrors.CodeConflict))
}

func TestIdempotencyRecordsOutcomeAfterClientDisconnect(t *testing.T) {
	store := newFakeStore()
	placed := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		placed++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":7}}`))
	}))

	req, disconnect := cancelableOrderRequest("dropped", `{"buyer_name":"A"}`)
	// the order commits, then the peer hangs up before the response lands
	handler.ServeHTTP(&disconnectWriter{ResponseWriter: httptest.NewRecorder(), disconnect: disconnect}, req)
	require.Error(t, req.Context().Err())

	key := store.IdempotencyKey("|POST|/api/v1/orders", "dropped")
	record, err := decodeRecord(store.data[key])
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, record.Status)
	require.Equal(t, criticalIdempotencyTTL, store.ttl[key])

	retry := httptest.NewRecorder()
	handler.ServeHTTP(retry, orderRequest("dropped", `{"buyer_name":"A"}`))
	require.Equal(t, http.StatusCreated, retry.Code)
	require.Equal(t, "true", retry.Header().Get("Idempotent-Replayed"))
	require.Equal(t, 1, placed)
}

func TestIdempotencyReleasesKeyAfterClientDisconnect(t *testing.T) {
	store := newFakeStore()
	req, disconnect := cancelableOrderRequest("gone", `{}`)
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		disconnect()
		w.WriteHeader(http.StatusConflict)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Empty(t, store.data)
}

func cancelableOrderRequest(key, body string) (*http.Request, context.CancelFunc) {
	req := orderRequest(key, body)
	ctx, cancel := context.WithCancel(req.Context())
	return req.WithContext(ctx), cancel
}

// disconnectWriter cancels the request context once the status is written,
// the way net/http does when the peer hangs up mid-response.
type disconnectWriter struct {
	http.ResponseWriter
	disconnect context.CancelFunc
}

func (d *disconnectWriter) WriteHeader(code int) {
	d.ResponseWriter.WriteHeader(code)
	d.disconnect()
}
