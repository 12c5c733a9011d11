package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldtel/internal/constants"
	"fieldtel/internal/logger"
	"fieldtel/internal/store"
	"fieldtel/pkg/metrics"
)

// SeenCache remembers (sessionGuid, sequenceNumber) pairs that were already
// persisted. It is an optional fast path in front of the store scan; the
// store remains authoritative.
type SeenCache interface {
	Seen(ctx context.Context, sessionGUID string, sequenceNumber int) (bool, error)
	MarkSeen(ctx context.Context, sessionGUID string, sequenceNumber int) error
}

type RedisSeenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSeenCache(client *redis.Client, ttlSeconds int) *RedisSeenCache {
	if ttlSeconds <= 0 {
		ttlSeconds = constants.DefaultSeenCacheTTLSeconds
	}
	return &RedisSeenCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

func seenKey(sessionGUID string, sequenceNumber int) string {
	return fmt.Sprintf("%s%s:%d", constants.CacheKeyPrefixSeen, sessionGUID, sequenceNumber)
}

func (c *RedisSeenCache) Seen(ctx context.Context, sessionGUID string, sequenceNumber int) (bool, error) {
	n, err := c.client.Exists(ctx, seenKey(sessionGUID, sequenceNumber)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return n > 0, nil
}

func (c *RedisSeenCache) MarkSeen(ctx context.Context, sessionGUID string, sequenceNumber int) error {
	if err := c.client.Set(ctx, seenKey(sessionGUID, sequenceNumber), time.Now().Unix(), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Guard detects repeats of a (sessionGuid, sequenceNumber) pair among the
// already persisted messages. The check is exact equality only: gaps and
// reordering within a session are not treated as anomalies. This read is a
// pre-check; the store's unique index is what actually closes the
// concurrent-duplicate race.
type Guard struct {
	repo   store.Repository
	cache  SeenCache
	logger logger.Logger
}

func NewGuard(repo store.Repository, cache SeenCache, log logger.Logger) *Guard {
	return &Guard{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (g *Guard) IsDuplicate(ctx context.Context, sessionGUID string, sequenceNumber int) (bool, error) {
	if g.cache != nil {
		seen, err := g.cache.Seen(ctx, sessionGUID, sequenceNumber)
		switch {
		case err != nil:
			// Cache trouble is not a verdict; fall through to the store.
			metrics.SeenCacheRequestsTotal.WithLabelValues("error").Inc()
			g.logger.WarnwCtx(ctx, "Seen-sequence cache lookup failed, falling back to store",
				"error", err,
			)
		case seen:
			metrics.SeenCacheRequestsTotal.WithLabelValues("hit").Inc()
			return true, nil
		default:
			metrics.SeenCacheRequestsTotal.WithLabelValues("miss").Inc()
		}
	}

	messages, err := g.repo.ListBySession(ctx, sessionGUID)
	if err != nil {
		return false, fmt.Errorf("failed to list session messages: %w", err)
	}

	for _, existing := range messages {
		if existing.SequenceNumber == sequenceNumber {
			return true, nil
		}
	}

	return false, nil
}

// MarkPersisted records the pair in the cache after a successful store
// write. Failures only cost a future cache miss.
func (g *Guard) MarkPersisted(ctx context.Context, sessionGUID string, sequenceNumber int) {
	if g.cache == nil {
		return
	}

	if err := g.cache.MarkSeen(ctx, sessionGUID, sequenceNumber); err != nil {
		g.logger.WarnwCtx(ctx, "Failed to mark sequence as seen",
			"error", err,
		)
	}
}
