package bands

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payewise/takehome-api/internal/obs"
	"github.com/payewise/takehome-api/internal/tax"
)

// Cache is a Redis read-through in front of another band source. Cache
// failures fall back to the source so a calculation never fails because
// Redis is away.
type Cache struct {
	source tax.BandSource
	client *redis.Client
	ttl    time.Duration
}

// NewCache wraps source with a Redis read-through using the given TTL.
func NewCache(source tax.BandSource, client *redis.Client, ttl time.Duration) (*Cache, error) {
	if source == nil {
		return nil, errors.New("bands: source is required")
	}
	if client == nil {
		return nil, errors.New("bands: redis client is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{source: source, client: client, ttl: ttl}, nil
}

// BandsFor implements tax.BandSource.
func (c *Cache) BandsFor(ctx context.Context, year tax.Year) (tax.Bands, error) {
	key := cacheKey(year)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached tax.Bands
		if json.Unmarshal(data, &cached) == nil {
			observeCache("hit")
			return cached, nil
		}
	} else if err == redis.Nil {
		observeCache("miss")
	} else {
		observeCache("error")
	}

	b, err := c.source.BandsFor(ctx, year)
	if err != nil {
		return tax.Bands{}, err
	}
	if payload, err := json.Marshal(b); err == nil {
		_ = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	return b, nil
}

func cacheKey(year tax.Year) string {
	return "bands:" + string(year)
}

func observeCache(result string) {
	if obs.BandCacheTotal != nil {
		obs.BandCacheTotal.WithLabelValues(result).Inc()
	}
}
