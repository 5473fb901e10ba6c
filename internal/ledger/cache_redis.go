package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"paybook/internal/platform/redis"
	"paybook/pkg/domain"
)

// PeriodCache keeps period totals in redis so settlement dashboards do not
// re-aggregate the ledger on every read. Totals are invalidated whenever a
// posting touches the item/period.
type PeriodCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPeriodCache(client *redis.Client, ttl time.Duration) *PeriodCache {
	if client == nil {
		return nil
	}
	return &PeriodCache{client: client, ttl: ttl}
}

func cacheKey(item domain.ItemID, period domain.Period) string {
	return fmt.Sprintf("paybook:total:%d:%s", item, period)
}

// Get returns the cached total, with found=false on a miss.
func (c *PeriodCache) Get(ctx context.Context, item domain.ItemID, period domain.Period) (decimal.Decimal, bool, error) {
	if c == nil {
		return decimal.Zero, false, nil
	}
	val, err := c.client.Get(ctx, cacheKey(item, period)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("get cached total: %w", err)
	}
	total, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parse cached total: %w", err)
	}
	return total, true, nil
}

// Set stores a total under the cache TTL.
func (c *PeriodCache) Set(ctx context.Context, item domain.ItemID, period domain.Period, total decimal.Decimal) error {
	if c == nil {
		return nil
	}
	if err := c.client.Set(ctx, cacheKey(item, period), total.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("cache total: %w", err)
	}
	return nil
}

// ItemPeriod addresses one cached total.
type ItemPeriod struct {
	Item   domain.ItemID
	Period domain.Period
}

// Invalidate drops the cached totals for the given item/period pairs.
func (c *PeriodCache) Invalidate(ctx context.Context, pairs ...ItemPeriod) error {
	if c == nil || len(pairs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(pairs))
	for _, p := range pairs {
		keys = append(keys, cacheKey(p.Item, p.Period))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cached totals: %w", err)
	}
	return nil
}
