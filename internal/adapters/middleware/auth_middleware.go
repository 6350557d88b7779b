package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	tokens    ports.TokenStore
	logger    *zap.Logger
}

func NewAuthMiddleware(publicKey *rsa.PublicKey, tokens ports.TokenStore, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{publicKey: publicKey, tokens: tokens, logger: logger}
}

type contextKey string

const (
	actorKey contextKey = "actor"
	tokenKey contextKey = "token"
)

// Token identifies the presented access token so it can be revoked on logout.
type Token struct {
	ID        string
	ExpiresAt time.Time
}

func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

func TokenFrom(ctx context.Context) (Token, bool) {
	tok, ok := ctx.Value(tokenKey).(Token)
	return tok, ok
}

// WithActor attaches an already verified caller to ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// Authenticate verifies the bearer token and injects the caller into the request context.
func (m *AuthMiddleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("missing authorization header", zap.String("path", r.URL.Path))
			unauthorized(w, "Autenticação necessária")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.logger.Debug("invalid authorization header format")
			unauthorized(w, "Cabeçalho de autorização inválido")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.publicKey, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			m.logger.Debug("token rejected", zap.Error(err))
			unauthorized(w, "Token inválido ou expirado")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(w, "Token inválido")
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			m.logger.Debug("missing sub claim")
			unauthorized(w, "Token inválido")
			return
		}

		role, err := domain.ParseRole(stringClaim(claims, "role"))
		if err != nil {
			m.logger.Debug("invalid role claim", zap.Any("role", claims["role"]))
			unauthorized(w, "Token inválido")
			return
		}

		jti := stringClaim(claims, "jti")
		if jti != "" && m.tokens != nil {
			revoked, err := m.tokens.IsRevoked(r.Context(), jti)
			if err != nil {
				m.logger.Error("token revocation lookup failed", zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "unavailable", "Serviço temporariamente indisponível")
				return
			}
			if revoked {
				unauthorized(w, "Sessão encerrada")
				return
			}
		}

		var expiresAt time.Time
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}

		ctx := WithActor(r.Context(), domain.Actor{ID: userID, Role: role})
		ctx = context.WithValue(ctx, tokenKey, Token{ID: jti, ExpiresAt: expiresAt})
		next(w, r.WithContext(ctx))
	}
}

// RequireRole authenticates the request and additionally restricts it to roles.
func (m *AuthMiddleware) RequireRole(roles []domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFrom(r.Context())
		if !slices.Contains(roles, actor.Role) {
			m.logger.Debug("role mismatch", zap.Any("required", roles), zap.String("role", string(actor.Role)))
			writeError(w, http.StatusForbidden, string(domain.KindForbidden), "Acesso negado")
			return
		}
		next(w, r)
	})
}

func stringClaim(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, string(domain.KindUnauthenticated), message)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}
