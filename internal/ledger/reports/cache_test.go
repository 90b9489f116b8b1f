package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONLoadsOnce(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "gl", "tb", "2026-03")
	require.NoError(t, err)

	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return map[string]string{"total": "100.00"}, nil
	}

	var out map[string]string
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, "100.00", out["total"])

	out = nil
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, "100.00", out["total"])
	require.Equal(t, 1, loads)
}

func TestCacheBumpChangesKeys(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "gl", "tb", "2026-03")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "gl", "tb", "2026-03")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestCacheNilDegradesToLoader(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "gl", "tb", "2026-03")
	require.NoError(t, err)

	var out map[string]string
	err = c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return map[string]string{"total": "1.00"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "1.00", out["total"])
	require.NoError(t, c.Bump(ctx))
}
