package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/otoscribe/otoscribe/internal/align"
)

// ResultCache memoizes finished transcripts by content hash, so the
// same audio uploaded twice skips diarization and transcription
// entirely. Lookups and stores are best effort.
type ResultCache interface {
	Get(ctx context.Context, hash string) ([]align.Segment, bool)
	Set(ctx context.Context, hash string, segs []align.Segment)
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) key(hash string) string { return "transcript:" + hash }

func (c *RedisCache) Get(ctx context.Context, hash string) ([]align.Segment, bool) {
	data, err := c.rdb.Get(ctx, c.key(hash)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("transcript cache get failed", "error", err)
		}
		return nil, false
	}
	var segs []align.Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, false
	}
	return segs, true
}

func (c *RedisCache) Set(ctx context.Context, hash string, segs []align.Segment) {
	data, err := json.Marshal(segs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(hash), data, c.ttl).Err(); err != nil {
		slog.Debug("transcript cache set failed", "error", err)
	}
}
