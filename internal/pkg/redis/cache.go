package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

// generationTTL bounds how long an invalidation counter outlives its last bump.
const generationTTL = 24 * time.Hour

// Both keys of a listing share a hash tag so the write script stays on one slot.
func detailKey(id int64) string {
	return fmt.Sprintf("companion:{%d}:detail", id)
}

func generationKey(id int64) string {
	return fmt.Sprintf("companion:{%d}:gen", id)
}

// setIfCurrent writes the detail only while the generation still matches the one
// the caller observed before loading the row.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// CompanionCache keeps listing details in Redis as JSON. Backend errors are
// logged and reported as misses so callers fall through to the database.
//
// Every invalidation bumps a per-listing generation. Get reports the generation
// it saw and Set refuses to write under an older one, so a read that raced a
// commit cannot repopulate the cache with the pre-commit projection.
type CompanionCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewCompanionCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CompanionCache {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CompanionCache{rdb: rdb, ttl: ttl, logger: log}
}

func (c *CompanionCache) Get(ctx context.Context, id int64) (*dto.CompanionDTO, int64, bool) {
	vals, err := c.rdb.MGet(ctx, detailKey(id), generationKey(id)).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "companion cache read failed", zap.Int64("companion_id", id), zap.Error(err))
		return nil, 0, false
	}

	var version int64
	if s, ok := vals[1].(string); ok {
		if version, err = strconv.ParseInt(s, 10, 64); err != nil {
			c.logger.WarnContext(ctx, "companion cache generation unreadable", zap.Int64("companion_id", id), zap.Error(err))
			return nil, 0, false
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, version, false
	}
	var out dto.CompanionDTO
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		c.logger.WarnContext(ctx, "dropping corrupt companion cache entry", zap.Int64("companion_id", id), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, version, false
	}
	return &out, version, true
}

// Set caches companion unless its listing was invalidated after Get returned version.
func (c *CompanionCache) Set(ctx context.Context, companion *dto.CompanionDTO, version int64) {
	raw, err := json.Marshal(companion)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to encode companion for cache", zap.Int64("companion_id", companion.ID), zap.Error(err))
		return
	}
	keys := []string{detailKey(companion.ID), generationKey(companion.ID)}
	written, err := setIfCurrent.Run(ctx, c.rdb, keys, raw, strconv.FormatInt(version, 10), c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.WarnContext(ctx, "companion cache write failed", zap.Int64("companion_id", companion.ID), zap.Error(err))
		return
	}
	if written == 0 {
		c.logger.DebugContext(ctx, "skipped stale companion cache write",
			zap.Int64("companion_id", companion.ID),
			zap.Int64("version", version),
		)
	}
}

func (c *CompanionCache) Invalidate(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, detailKey(id))
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
		}
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "companion cache invalidation failed", zap.Int64s("companion_ids", ids), zap.Error(err))
	}
}
