// Package redis caches finished score results so the read endpoint can serve
// them without touching Postgres.
package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentfolio/scoring-engine/internal/domain"
)

// ScoreCache stores the latest ScoreResult per user under a TTL. A zero TTL
// means entries never expire.
type ScoreCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a ScoreCache over an existing client.
func New(rdb *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{rdb: rdb, ttl: ttl}
}

func key(userID string) string {
	return "score:user:" + userID
}

// Set writes the result, replacing any previous entry for the user.
func (c *ScoreCache) Set(ctx domain.Context, userID string, res domain.ScoreResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("op=cache.set marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, key(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.set: %w", err)
	}
	return nil
}

// Get returns the cached result; a missing or expired key maps to ErrNotFound.
func (c *ScoreCache) Get(ctx domain.Context, userID string) (domain.ScoreResult, error) {
	payload, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return domain.ScoreResult{}, fmt.Errorf("op=cache.get user=%s: %w", userID, domain.ErrNotFound)
		}
		return domain.ScoreResult{}, fmt.Errorf("op=cache.get: %w", err)
	}
	var res domain.ScoreResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("op=cache.get unmarshal: %w", err)
	}
	return res, nil
}
