package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"locker-booking/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSlotRangePrefix = "venue:slots:"

// VenueCatalogCache is a read-through decorator over a VenueCatalog. Slot
// ranges change rarely, so lookups are served from Redis with a TTL and fall
// back to the inner catalog on a miss. Redis failures degrade to the inner
// catalog rather than failing the request.
type VenueCatalogCache struct {
	inner     commands.VenueCatalog
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

func NewVenueCatalogCache(inner commands.VenueCatalog, client redis.Cmdable, ttl time.Duration) *VenueCatalogCache {
	return &VenueCatalogCache{
		inner:     inner,
		client:    client,
		keyPrefix: defaultSlotRangePrefix,
		ttl:       ttl,
	}
}

func (c *VenueCatalogCache) SlotRange(ctx context.Context, venueID uuid.UUID) (int32, int32, error) {
	key := c.keyPrefix + venueID.String()

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		if min, max, ok := parseSlotRange(cached); ok {
			return min, max, nil
		}
	} else if err != redis.Nil {
		slog.Warn("venue cache lookup failed", "venue_id", venueID, "error", err)
	}

	min, max, err := c.inner.SlotRange(ctx, venueID)
	if err != nil {
		return 0, 0, err
	}

	if err := c.client.Set(ctx, key, formatSlotRange(min, max), c.ttl).Err(); err != nil {
		slog.Warn("venue cache store failed", "venue_id", venueID, "error", err)
	}
	return min, max, nil
}

// Invalidate drops the cached range, for when a venue's locker count changes.
func (c *VenueCatalogCache) Invalidate(ctx context.Context, venueID uuid.UUID) error {
	return c.client.Del(ctx, c.keyPrefix+venueID.String()).Err()
}

func formatSlotRange(min, max int32) string {
	return fmt.Sprintf("%d:%d", min, max)
}

func parseSlotRange(s string) (int32, int32, bool) {
	var min, max int32
	if _, err := fmt.Sscanf(s, "%d:%d", &min, &max); err != nil {
		return 0, 0, false
	}
	return min, max, true
}
