package stats

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	users, customers, sales int64
	calls                   atomic.Int64
}

func (c *countingSource) CountUsers(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return c.users, nil
}

func (c *countingSource) CountCustomers(ctx context.Context) (int64, error) {
	return c.customers, nil
}

func (c *countingSource) CountSales(ctx context.Context) (int64, error) {
	return c.sales, nil
}

func newTestService(t *testing.T, source CounterSource) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(source, client, time.Minute), mr
}

func TestBadgesFetchAndCache(t *testing.T) {
	source := &countingSource{users: 4, customers: 120, sales: 36}
	svc, mr := newTestService(t, source)
	ctx := context.Background()

	badges, err := svc.Badges(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 4, badges.Users)
	require.EqualValues(t, 120, badges.Customers)
	require.EqualValues(t, 36, badges.Sales)
	require.EqualValues(t, 1, source.calls.Load())
	require.True(t, mr.Exists(cacheKey), "first fetch must populate the cache")

	// Second read comes from cache.
	badges, err = svc.Badges(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 120, badges.Customers)
	require.EqualValues(t, 1, source.calls.Load())
}

func TestBadgesCacheExpiry(t *testing.T) {
	source := &countingSource{users: 1}
	svc, mr := newTestService(t, source)
	ctx := context.Background()

	_, err := svc.Badges(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = svc.Badges(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, source.calls.Load(), "expired cache must refetch")
}

func TestRefreshRewritesCache(t *testing.T) {
	source := &countingSource{users: 1}
	svc, _ := newTestService(t, source)
	ctx := context.Background()

	_, err := svc.Badges(ctx)
	require.NoError(t, err)

	source.users = 9
	badges, err := svc.Refresh(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 9, badges.Users)

	// Cached value now reflects the refresh.
	badges, err = svc.Badges(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 9, badges.Users)
}

func TestBadgesWithoutCache(t *testing.T) {
	source := &countingSource{users: 2}
	svc := NewService(source, nil, time.Minute)

	badges, err := svc.Badges(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, badges.Users)
}
