package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
)

// memStore is an in-memory IdempotencyStore that remembers the TTL of every
// write.
type memStore struct {
	mu   sync.Mutex
	vals map[string]string
	ttls map[string]time.Duration
}

func newMemStore() *memStore {
	return &memStore{vals: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	_, taken := m.vals[key]
	m.mu.Unlock()
	if taken {
		return false, nil
	}
	return true, m.Set(ctx, key, value, ttl)
}

func (m *memStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key], _ = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.vals, k)
		delete(m.ttls, k)
	}
	return nil
}

func (m *memStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.vals)
}

func (m *memStore) onlyTTL(t *testing.T) time.Duration {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.ttls, 1)
	for _, ttl := range m.ttls {
		return ttl
	}
	return 0
}

// countingHandler answers with status and counts how often it ran.
func countingHandler(status int, body string) (http.Handler, *int) {
	calls := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}), &calls
}

func send(h http.Handler, method, path, body, key, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if key != "" {
		req.Header.Set(idempotencyHeader, key)
	}
	if user != "" {
		req = req.WithContext(WithUserID(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func checkout(h http.Handler, body, key string) *httptest.ResponseRecorder {
	return send(h, http.MethodPost, "/api/v1/checkout", body, key, "")
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func TestRouteTTLSelection(t *testing.T) {
	cases := map[string]struct {
		method, path string
		ttl          time.Duration
		ok           bool
	}{
		"checkout":           {http.MethodPost, "/api/v1/checkout", moneyIdempotencyTTL, true},
		"withdrawal":         {http.MethodPost, "/api/v1/seller/withdrawals", moneyIdempotencyTTL, true},
		"trailing slash":     {http.MethodPost, "/api/v1/seller/withdrawals/", moneyIdempotencyTTL, true},
		"seller apply":       {http.MethodPost, "/api/v1/seller/apply", applyIdempotencyTTL, true},
		"withdrawal listing": {http.MethodGet, "/api/v1/seller/withdrawals", 0, false},
		"product create":     {http.MethodPost, "/api/v1/seller/products", 0, false},
	}
	for name, tc := range cases {
		ttl, ok := routeTTL(tc.method, tc.path)
		assert.Equal(t, tc.ok, ok, name)
		assert.Equal(t, tc.ttl, ttl, name)
	}
}

func TestIdempotencyKeyHeaderPolicy(t *testing.T) {
	h, calls := countingHandler(http.StatusCreated, "")

	rec := checkout(Idempotency(newMemStore(), true, nil)(h), `{"items":[]}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, *calls, "handler must not run without a key when one is required")

	optional := Idempotency(newMemStore(), false, nil)(h)
	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusCreated, checkout(optional, `{"items":[]}`, "").Code)
	}
	assert.Equal(t, 2, *calls)
}

func TestIdempotencyReplaysCompletedResponse(t *testing.T) {
	store := newMemStore()
	h, calls := countingHandler(http.StatusCreated, `{"data":{"order_id":"o-1"}}`)
	mw := Idempotency(store, true, nil)(h)

	first := checkout(mw, `{"items":[1]}`, "abc")
	require.Equal(t, http.StatusCreated, first.Code)
	assert.Empty(t, first.Header().Get(replayHeader))
	assert.Equal(t, moneyIdempotencyTTL, store.onlyTTL(t))

	again := checkout(mw, `{"items":[1]}`, "abc")
	assert.Equal(t, http.StatusCreated, again.Code)
	assert.Equal(t, "application/json", again.Header().Get("Content-Type"))
	assert.Equal(t, "true", again.Header().Get(replayHeader))
	assert.JSONEq(t, `{"data":{"order_id":"o-1"}}`, again.Body.String())
	assert.Equal(t, 1, *calls)
}

func TestIdempotencyKeysAreScopedPerUser(t *testing.T) {
	h, calls := countingHandler(http.StatusCreated, "")
	mw := Idempotency(newMemStore(), true, nil)(h)

	send(mw, http.MethodPost, "/api/v1/checkout", `{}`, "same", "user-a")
	send(mw, http.MethodPost, "/api/v1/checkout", `{}`, "same", "user-b")
	assert.Equal(t, 2, *calls)
}

func TestIdempotencyRejectsChangedBody(t *testing.T) {
	h, _ := countingHandler(http.StatusOK, "")
	mw := Idempotency(newMemStore(), true, nil)(h)

	checkout(mw, `{"amount":"200"}`, "xyz")
	rec := checkout(mw, `{"amount":"900"}`, "xyz")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newMemStore()
	mw := Idempotency(store, true, nil)

	var dup *httptest.ResponseRecorder
	first := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, inFlightTTL, store.onlyTTL(t))
		dup = checkout(mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("duplicate must not execute")
		})), `{"items":[1]}`, "dup")
		w.WriteHeader(http.StatusCreated)
	}))

	assert.Equal(t, http.StatusCreated, checkout(first, `{"items":[1]}`, "dup").Code)
	require.NotNil(t, dup)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, string(pkgerrors.CodeConflict), errorCode(t, dup))
}

func TestIdempotencyReleasesKeyAfterServerError(t *testing.T) {
	store := newMemStore()
	status := http.StatusServiceUnavailable
	calls := 0
	mw := Idempotency(store, true, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	}))

	checkout(mw, `{}`, "retry")
	assert.Zero(t, store.size(), "5xx must release the key")

	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, checkout(mw, `{}`, "retry").Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyPassesThroughOtherRoutes(t *testing.T) {
	store := newMemStore()
	h, calls := countingHandler(http.StatusOK, "")
	rec := send(Idempotency(store, true, nil)(h), http.MethodGet, "/api/v1/seller/withdrawals", "", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *calls)
	assert.Zero(t, store.size())
}
