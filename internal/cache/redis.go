package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
)

// RedisCache stores flight search results. Flights are immutable reference
// data, so entries only need a TTL and never explicit invalidation.
type RedisCache struct {
	client    redis.Cmdable
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, searchTTL: searchTTL}
}

func (c *RedisCache) GetItineraries(ctx context.Context, q domain.SearchQuery) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, searchKey(q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	itineraries := make([]domain.Itinerary, 0)
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (c *RedisCache) SetItineraries(ctx context.Context, q domain.SearchQuery, itineraries []domain.Itinerary) error {
	payload, err := json.Marshal(itineraries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(q), payload, c.searchTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// searchKey escapes city names so that neither ':' nor look-alike spellings
// can make two queries share a key.
func searchKey(q domain.SearchQuery) string {
	direct := 0
	if q.DirectOnly {
		direct = 1
	}
	return fmt.Sprintf("cache:search:%s:%s:%d:%d:%d",
		url.QueryEscape(q.Origin), url.QueryEscape(q.Destination),
		q.DayOfMonth, direct, q.MaxItineraries)
}
