package service

import (
	"context"
	"fmt"
	"time"

	"github.com/star3ai/social-auth-service/pkg/database"
)

// redisReplayGuard implements ReplayGuard on Redis so single consumption
// holds across process replicas.
type redisReplayGuard struct {
	redis *database.Redis
}

// NewRedisReplayGuard creates a new Redis-backed replay guard
func NewRedisReplayGuard(redis *database.Redis) ReplayGuard {
	return &redisReplayGuard{redis: redis}
}

// Consume marks a state nonce as used via SETNX
func (g *redisReplayGuard) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("oauthstate:nonce:%s", nonce)

	ok, err := g.redis.Client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to consume state nonce: %w", err)
	}

	return ok, nil
}
