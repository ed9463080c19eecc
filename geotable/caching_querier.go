package geotable

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

type cachingQuerier struct {
	Querier

	cache *ristretto.Cache
	ttl   time.Duration
}

func (c cachingQuerier) Resolve(query string) QueryResult {
	if value, ok := c.cache.Get(query); ok {
		return value.(QueryResult)
	}

	result := c.Querier.Resolve(query)

	c.cache.SetWithTTL(query, result, 1, c.ttl)

	return result
}

func (c cachingQuerier) Close() error {
	c.cache.Close()

	return nil
}

// NewCachingQuerier memoizes results of another querier. Cache is
// eventually consistent: a value set right now may be invisible for a
// couple of milliseconds. Zero ttl means that items never expire.
func NewCachingQuerier(querier Querier, itemsCount uint, ttl time.Duration) (Querier, error) {
	cacheConfig := &ristretto.Config{
		MaxCost:            int64(itemsCount),
		NumCounters:        10 * int64(itemsCount),
		Metrics:            false,
		BufferItems:        64,
		IgnoreInternalCost: true,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		return nil, fmt.Errorf("cannot create ristretto cache: %w", err)
	}

	return cachingQuerier{
		Querier: querier,
		cache:   cache,
		ttl:     ttl,
	}, nil
}
