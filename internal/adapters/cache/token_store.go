package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/config"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

const revokedPrefix = "revoked:"

// Client is the subset of the Redis API the token store needs.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// TokenStore records revoked token ids in Redis until the token would have expired anyway.
type TokenStore struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(client Client, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		client: client,
		cb:     config.NewCircuitBreaker("Redis-Auth", nil, logger),
	}
}

func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("token has no id")
	}
	if ttl <= 0 {
		return nil
	}
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, revokedPrefix+jti, "1", ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.client.Exists(ctx, revokedPrefix+jti).Result()
	})
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return res.(int64) > 0, nil
}

// Ping satisfies the readiness probe.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
