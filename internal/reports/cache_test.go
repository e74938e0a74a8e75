package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	loads := 0
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return []PeriodBucket{{Period: "2026-03-10", TotalSales: 100, SaleCount: 2}}, nil
	}

	key, err := cache.BuildKey(ctx, "reports", "sales", "daily")
	require.NoError(t, err)

	var first []PeriodBucket
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 1, loads)
	require.Equal(t, 100.0, first[0].TotalSales)

	var second []PeriodBucket
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 1, loads, "second fetch must hit the cache")
	require.Equal(t, first, second)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	ctx := context.Background()
	cache := newTestCache(t)

	before, err := cache.BuildKey(ctx, "reports", "sales", "daily")
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, "reports", "sales", "daily")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestCacheNilClientPassesThrough(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(nil, 0)

	loads := 0
	var out []PeriodBucket
	loader := func(ctx context.Context) (interface{}, error) {
		loads++
		return []PeriodBucket{{Period: "2026-03-10"}}, nil
	}

	key, err := cache.BuildKey(ctx, "reports", "sales", "daily")
	require.NoError(t, err)
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 2, loads)
}
