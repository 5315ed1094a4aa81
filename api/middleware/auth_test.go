package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/bazaar-backend/pkg/auth"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

type stubRevocations struct {
	revoked bool
	err     error
}

func (s stubRevocations) IsRevoked(context.Context, string) (bool, error) {
	return s.revoked, s.err
}

type captured struct {
	called bool
	user   string
	role   string
	email  string
	token  string
	exp    time.Time
}

func capture(c *captured) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.user = UserIDFromContext(r.Context())
		c.role = RoleFromContext(r.Context())
		c.email = EmailFromContext(r.Context())
		c.token, c.exp = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func mintTestToken(t *testing.T, role enums.UserRole) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := auth.MintAccessToken(testJWT, time.Now(), auth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
		Email:  "ada@example.com",
		Name:   "Ada",
		JTI:    "jti-1",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestAuthRejectsMissingToken(t *testing.T) {
	var c captured
	resp := serve(Auth(testJWT, stubRevocations{}, nil)(capture(&c)), "")
	if resp.Code != http.StatusUnauthorized || c.called {
		t.Fatalf("expected 401 without calling handler, got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	var c captured
	resp := serve(Auth(testJWT, stubRevocations{}, nil)(capture(&c)), "invalid")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	token, _ := mintTestToken(t, enums.UserRoleCustomer)
	var c captured
	resp := serve(Auth(testJWT, stubRevocations{revoked: true}, nil)(capture(&c)), token)
	if resp.Code != http.StatusUnauthorized || c.called {
		t.Fatalf("expected 401 for revoked token, got %d", resp.Code)
	}
}

func TestAuthRevocationLookupFailure(t *testing.T) {
	token, _ := mintTestToken(t, enums.UserRoleCustomer)
	var c captured
	resp := serve(Auth(testJWT, stubRevocations{err: errors.New("redis down")}, nil)(capture(&c)), token)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestAuthAllowsValidToken(t *testing.T) {
	token, userID := mintTestToken(t, enums.UserRoleSeller)
	var c captured
	resp := serve(Auth(testJWT, stubRevocations{}, nil)(capture(&c)), token)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if c.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, c.user)
	}
	if c.role != string(enums.UserRoleSeller) || c.email != "ada@example.com" {
		t.Fatalf("unexpected identity role=%s email=%s", c.role, c.email)
	}
	if c.token != "jti-1" || c.exp.IsZero() {
		t.Fatalf("expected token id and expiry, got %q %v", c.token, c.exp)
	}
}

func TestOptionalAuthTreatsMissingTokenAsGuest(t *testing.T) {
	var c captured
	resp := serve(OptionalAuth(testJWT, stubRevocations{}, nil)(capture(&c)), "")
	if resp.Code != http.StatusOK || !c.called {
		t.Fatalf("expected guest pass-through, got %d", resp.Code)
	}
	if c.user != "" {
		t.Fatalf("guest should carry no user id, got %s", c.user)
	}
}

func TestOptionalAuthRejectsInvalidToken(t *testing.T) {
	var c captured
	resp := serve(OptionalAuth(testJWT, stubRevocations{}, nil)(capture(&c)), "garbage")
	if resp.Code != http.StatusUnauthorized || c.called {
		t.Fatalf("expected 401 for a bad token, got %d", resp.Code)
	}
}

func TestOptionalAuthAttachesIdentity(t *testing.T) {
	token, userID := mintTestToken(t, enums.UserRoleCustomer)
	var c captured
	serve(OptionalAuth(testJWT, stubRevocations{}, nil)(capture(&c)), token)
	if c.user != userID.String() {
		t.Fatalf("expected user %s got %s", userID, c.user)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name string
		role enums.UserRole
		want int
	}{
		{"admin", enums.UserRoleAdmin, http.StatusOK},
		{"seller", enums.UserRoleSeller, http.StatusForbidden},
		{"customer", enums.UserRoleCustomer, http.StatusForbidden},
	}
	for _, tt := range tests {
		token, _ := mintTestToken(t, tt.role)
		var c captured
		h := Auth(testJWT, nil, nil)(RequireRole(nil, enums.UserRoleAdmin)(capture(&c)))
		if resp := serve(h, token); resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	var c captured
	resp := serve(RequireRole(nil, enums.UserRoleAdmin)(capture(&c)), "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
