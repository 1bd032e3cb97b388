// FILE: internal/pkg/cache/research_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"ai-fitness-be/internal/entity"
)

const (
	researchKeyPrefix = "research:"
	researchTTL       = 6 * time.Hour
)

// ResearchCache is a redis read-through cache for persisted research
// results. Research runs are expensive and immutable once stored, so a
// generous TTL is safe.
type ResearchCache struct {
	rdb *redis.Client
}

func NewResearchCache(rdb *redis.Client) *ResearchCache {
	return &ResearchCache{rdb: rdb}
}

// Get returns the cached result, or (nil, nil) on a miss. Redis outages
// count as a miss so the database path still works.
func (c *ResearchCache) Get(ctx context.Context, id string) (*entity.ResearchResult, error) {
	if c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, researchKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, nil
	}
	var result entity.ResearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		// Poisoned entry: drop it and treat as a miss.
		c.rdb.Del(ctx, researchKeyPrefix+id)
		return nil, nil
	}
	return &result, nil
}

// Set stores the result. Failures are swallowed; caching is best effort.
func (c *ResearchCache) Set(ctx context.Context, result *entity.ResearchResult) {
	if c.rdb == nil || result == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, researchKeyPrefix+result.Id.String(), raw, researchTTL)
}
