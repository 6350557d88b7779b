package services_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/services"
	"github.com/AchilleasB/cuidotecas/community-service/internal/mocks"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func registered(t *testing.T, store *mocks.Store, in ports.RegisterInput) *domain.User {
	t.Helper()
	u, err := services.NewRegistrationService(store, zap.NewNop()).Register(context.Background(), in)
	require.NoError(t, err)
	return u
}

func TestLogin_IssuesRS256Token(t *testing.T) {
	store := mocks.NewStore()
	key := newKey(t)
	user := registered(t, store, ports.RegisterInput{Email: "ana@example.com", Password: "segredo123", Name: "Ana", Role: "parent"})
	auth := services.NewAuthService(store, mocks.NewMockTokenStore(), key, time.Hour)

	signed, err := auth.Login(context.Background(), "  ANA@example.com ", "segredo123")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(tok *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	assert.Equal(t, user.ID, claims["sub"])
	assert.Equal(t, "parent", claims["role"])
	assert.NotEmpty(t, claims["jti"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	store := mocks.NewStore()
	registered(t, store, ports.RegisterInput{Email: "ana@example.com", Password: "segredo123", Name: "Ana", Role: "parent"})
	auth := services.NewAuthService(store, mocks.NewMockTokenStore(), newKey(t), time.Hour)

	_, err := auth.Login(context.Background(), "ana@example.com", "errada")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = auth.Login(context.Background(), "nobody@example.com", "segredo123")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	tokens := mocks.NewMockTokenStore()
	auth := services.NewAuthService(mocks.NewStore(), tokens, newKey(t), time.Hour)
	ctx := context.Background()

	require.NoError(t, auth.Logout(ctx, "jti-1", time.Now().Add(30*time.Minute)))
	ttl, ok := tokens.RevokedTTL("jti-1")
	require.True(t, ok)
	assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 5)

	revoked, err := tokens.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, auth.Logout(ctx, "jti-2", time.Now().Add(-time.Minute)), "expired tokens need no revocation")
	_, ok = tokens.RevokedTTL("jti-2")
	assert.False(t, ok)

	assert.ErrorIs(t, auth.Logout(ctx, "", time.Now().Add(time.Hour)), domain.ErrUnauthenticated)

	tokens.RevokeError = errors.New("redis down")
	err = auth.Logout(ctx, "jti-3", time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.False(t, domain.IsBusiness(err))
}

func TestRegister_Validation(t *testing.T) {
	store := mocks.NewStore()
	reg := services.NewRegistrationService(store, zap.NewNop())
	inst := registered(t, store, ports.RegisterInput{
		Email: "escola@example.com", Password: "segredo123", Name: "Maria", Role: "institution", InstitutionName: "Escola Sol",
	})

	tests := []struct {
		name  string
		in    ports.RegisterInput
		field string
		want  error
	}{
		{"bad_email", ports.RegisterInput{Email: "nope", Password: "segredo123", Name: "A", Role: "parent"}, "email", domain.ErrValidation},
		{"short_password", ports.RegisterInput{Email: "a@example.com", Password: "123", Name: "A", Role: "parent"}, "password", domain.ErrValidation},
		{"missing_name", ports.RegisterInput{Email: "a@example.com", Password: "segredo123", Role: "parent"}, "name", domain.ErrValidation},
		{"unknown_role", ports.RegisterInput{Email: "a@example.com", Password: "segredo123", Name: "A", Role: "admin"}, "role", domain.ErrValidation},
		{"institution_without_name", ports.RegisterInput{Email: "a@example.com", Password: "segredo123", Name: "A", Role: "institution"}, "institution_name", domain.ErrValidation},
		{"coordinator_without_institution", ports.RegisterInput{Email: "a@example.com", Password: "segredo123", Name: "A", Role: "coordinator"}, "institution_id", domain.ErrValidation},
		{"coordinator_of_unknown_institution", ports.RegisterInput{Email: "a@example.com", Password: "segredo123", Name: "A", Role: "coordinator", InstitutionID: "ghost"}, "", domain.ErrNotFound},
		{"duplicate_email", ports.RegisterInput{Email: "ESCOLA@example.com", Password: "segredo123", Name: "B", Role: "parent"}, "", domain.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Register(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
			if tt.field != "" {
				var derr *domain.Error
				require.ErrorAs(t, err, &derr)
				assert.Contains(t, derr.Fields, tt.field)
			}
		})
	}

	coord, err := reg.Register(context.Background(), ports.RegisterInput{
		Email: "coord@example.com", Password: "segredo123", Name: "Rui", Role: "coordinator", InstitutionID: inst.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, inst.ID, coord.InstitutionID)
	assert.Equal(t, inst.ID, coord.StaffInstitutionID())
	assert.NotEqual(t, "segredo123", coord.PasswordHash)

	assert.Equal(t, "Escola Sol", inst.DisplayName())
}

func TestUserProfileAndSearch(t *testing.T) {
	w := newWorld(t)
	ana := w.user("ana", domain.RoleParent)
	bia := w.user("bia", domain.RoleCuidador)
	w.user("escola", domain.RoleInstitution)

	conn, err := w.connections.RequestConnection(w.ctx, ana, bia.ID)
	require.NoError(t, err)

	profile, err := w.users.GetProfile(w.ctx, bia, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingIncoming, profile.Connection)
	assert.Equal(t, conn.ID, profile.ConnectionID)

	own, err := w.users.GetProfile(w.ctx, ana, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateNotConnected, own.Connection)

	_, err = w.users.GetProfile(w.ctx, ana, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := w.users.UpdateProfile(w.ctx, ana, ports.ProfileInput{Name: "Ana Souza", Bio: " mãe ", Phone: "1199"})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", updated.Name)
	assert.Equal(t, "mãe", updated.Bio)
	_, err = w.users.UpdateProfile(w.ctx, ana, ports.ProfileInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	found, err := w.users.SearchUsers(w.ctx, ana, "cuidador", "BI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, bia.ID, found[0].ID)

	all, err := w.users.SearchUsers(w.ctx, ana, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2, "the caller is excluded")

	_, err = w.users.SearchUsers(w.ctx, ana, "admin", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
