package middleware_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/adapters/middleware"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/mocks"
)

func generateTestKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey, &privateKey.PublicKey
}

func createTestToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  "user-123",
		"role": role,
		"jti":  "jti-123",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func serve(h http.HandlerFunc, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate_Rejections(t *testing.T) {
	privateKey, publicKey := generateTestKeys(t)
	otherKey, _ := generateTestKeys(t)

	expired := validClaims("parent")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	noExp := validClaims("parent")
	delete(noExp, "exp")
	noSub := validClaims("parent")
	delete(noSub, "sub")

	tests := []struct {
		name   string
		header string
	}{
		{"no_auth_header", ""},
		{"invalid_header_format", "Token abc"},
		{"too_many_parts", "Bearer a b"},
		{"garbage_token", "Bearer not-a-jwt"},
		{"expired_token", "Bearer " + createTestToken(t, privateKey, expired)},
		{"missing_expiry", "Bearer " + createTestToken(t, privateKey, noExp)},
		{"missing_subject", "Bearer " + createTestToken(t, privateKey, noSub)},
		{"unknown_role", "Bearer " + createTestToken(t, privateKey, validClaims("admin"))},
		{"wrong_signing_key", "Bearer " + createTestToken(t, otherKey, validClaims("parent"))},
	}

	m := middleware.NewAuthMiddleware(publicKey, mocks.NewMockTokenStore(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(m.Authenticate(okHandler), tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "unauthenticated", body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestAuthenticate_HMACTokenRejected(t *testing.T) {
	_, publicKey := generateTestKeys(t)
	m := middleware.NewAuthMiddleware(publicKey, nil, nil)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("parent")).SignedString([]byte("secret"))
	require.NoError(t, err)

	rec := serve(m.Authenticate(okHandler), "Bearer "+hs)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidTokenInjectsActor(t *testing.T) {
	privateKey, publicKey := generateTestKeys(t)
	m := middleware.NewAuthMiddleware(publicKey, mocks.NewMockTokenStore(), nil)

	var (
		actor domain.Actor
		tok   middleware.Token
		found bool
	)
	h := m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		actor, found = middleware.ActorFrom(r.Context())
		tok, _ = middleware.TokenFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := serve(h, "Bearer "+createTestToken(t, privateKey, validClaims("cuidador")))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, found)
	assert.Equal(t, domain.Actor{ID: "user-123", Role: domain.RoleCuidador}, actor)
	assert.Equal(t, "jti-123", tok.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	privateKey, publicKey := generateTestKeys(t)
	tokens := mocks.NewMockTokenStore()
	m := middleware.NewAuthMiddleware(publicKey, tokens, nil)
	header := "Bearer " + createTestToken(t, privateKey, validClaims("parent"))

	require.Equal(t, http.StatusOK, serve(m.Authenticate(okHandler), header).Code)

	require.NoError(t, tokens.Revoke(t.Context(), "jti-123", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, serve(m.Authenticate(okHandler), header).Code)
}

func TestAuthenticate_RevocationLookupFailure(t *testing.T) {
	privateKey, publicKey := generateTestKeys(t)
	tokens := mocks.NewMockTokenStore()
	tokens.LookupError = errors.New("redis: connection refused")
	m := middleware.NewAuthMiddleware(publicKey, tokens, nil)

	rec := serve(m.Authenticate(okHandler), "Bearer "+createTestToken(t, privateKey, validClaims("parent")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireRole(t *testing.T) {
	privateKey, publicKey := generateTestKeys(t)
	m := middleware.NewAuthMiddleware(publicKey, mocks.NewMockTokenStore(), nil)
	staff := []domain.Role{domain.RoleInstitution, domain.RoleCoordinator}

	tests := []struct {
		role string
		want int
	}{
		{"institution", http.StatusOK},
		{"coordinator", http.StatusOK},
		{"parent", http.StatusForbidden},
		{"cuidador", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			rec := serve(m.RequireRole(staff, okHandler), "Bearer "+createTestToken(t, privateKey, validClaims(tt.role)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, http.StatusUnauthorized, serve(m.RequireRole(staff, okHandler), "").Code)
}
