package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

type mockStore struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *mockStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockStore) RevokedTokenKey(tokenID string) string {
	return "revoked:" + tokenID
}

func TestRevokeMarksTokenUntilExpiry(t *testing.T) {
	store := newMockStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	manager := &Manager{store: store, keyer: store, now: func() time.Time { return now }}
	ctx := context.Background()

	revoked, err := manager.IsRevoked(ctx, "jti-1")
	if err != nil || revoked {
		t.Fatalf("fresh token should not be revoked, revoked=%v err=%v", revoked, err)
	}

	if err := manager.Revoke(ctx, "jti-1", now.Add(20*time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if ttl := store.ttls["revoked:jti-1"]; ttl != 20*time.Minute {
		t.Fatalf("expected ttl to match remaining lifetime, got %v", ttl)
	}

	revoked, err = manager.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("expected token to be revoked, revoked=%v err=%v", revoked, err)
	}
}

func TestRevokeSkipsExpiredTokens(t *testing.T) {
	store := newMockStore()
	now := time.Now()
	manager := &Manager{store: store, keyer: store, now: func() time.Time { return now }}

	if err := manager.Revoke(context.Background(), "old", now.Add(-time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(store.data) != 0 {
		t.Fatalf("expired token should not be stored")
	}
}

func TestRevokeRequiresTokenID(t *testing.T) {
	store := newMockStore()
	manager := &Manager{store: store, keyer: store, now: time.Now}
	if err := manager.Revoke(context.Background(), " ", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected blank token id to fail")
	}
	if _, err := manager.IsRevoked(context.Background(), ""); err == nil {
		t.Fatal("expected blank token id to fail")
	}
}

func TestNewManagerRequiresClient(t *testing.T) {
	if _, err := NewManager(nil); err == nil {
		t.Fatal("expected nil client to fail")
	}
}
