// Package scorecache caches computed priority scores in Redis. Priority is
// recomputed on demand and never persisted; the cache only shaves repeated
// reads while an operator works through a cohort.
package scorecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"carebridge/internal/matching/models"
	id "carebridge/pkg/domain"
)

// TTL is short on purpose: wait time moves daily, failed-match history moves
// with every deactivation.
const cacheTTL = 5 * time.Minute

// RedisCache implements the service's PriorityCache over Redis.
type RedisCache struct {
	client *goredis.Client
}

// NewRedis constructs a Redis-backed priority score cache.
func NewRedis(client *goredis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(familyID id.FamilyID) string {
	return fmt.Sprintf("carebridge:priority:%s", familyID.String())
}

// Get returns the cached score, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, familyID id.FamilyID) (*models.PriorityScore, error) {
	payload, err := c.client.Get(ctx, cacheKey(familyID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get priority cache: %w", err)
	}
	var score models.PriorityScore
	if err := json.Unmarshal(payload, &score); err != nil {
		return nil, fmt.Errorf("unmarshal priority cache: %w", err)
	}
	return &score, nil
}

func (c *RedisCache) Set(ctx context.Context, familyID id.FamilyID, score models.PriorityScore) error {
	payload, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshal priority cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(familyID), payload, cacheTTL).Err(); err != nil {
		return fmt.Errorf("set priority cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached score; called after anything that changes the
// family's assignment history.
func (c *RedisCache) Invalidate(ctx context.Context, familyID id.FamilyID) error {
	if err := c.client.Del(ctx, cacheKey(familyID)).Err(); err != nil {
		return fmt.Errorf("invalidate priority cache: %w", err)
	}
	return nil
}
