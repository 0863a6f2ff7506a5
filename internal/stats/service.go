// Package stats serves the dashboard badge counters.
package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Badges carries the sidebar counters the dashboard renders next to each
// module entry.
type Badges struct {
	Users     int64     `json:"users"`
	Customers int64     `json:"customers"`
	Sales     int64     `json:"sales"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// CounterSource provides the raw counts.
type CounterSource interface {
	CountUsers(ctx context.Context) (int64, error)
	CountCustomers(ctx context.Context) (int64, error)
	CountSales(ctx context.Context) (int64, error)
}

// Service fetches counters concurrently and caches the result in Redis.
// Concurrent cache misses collapse into a single upstream fetch.
type Service struct {
	source CounterSource
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

const cacheKey = "stats:badges"

// NewService builds Service.
func NewService(source CounterSource, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{source: source, cache: cache, ttl: ttl}
}

// Badges returns the counters, from cache when fresh.
func (s *Service) Badges(ctx context.Context) (Badges, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Badges
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return Badges{}, err
	}
	return v.(Badges), nil
}

// Refresh recomputes the counters and rewrites the cache. The warmup job
// calls this so interactive requests mostly hit cache.
func (s *Service) Refresh(ctx context.Context) (Badges, error) {
	return s.fetch(ctx)
}

func (s *Service) fetch(ctx context.Context) (Badges, error) {
	var badges Badges

	// The group context is only for the fan-out; it is cancelled once Wait
	// returns, so the cache write below must use the caller's context.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.source.CountUsers(gctx)
		badges.Users = n
		return err
	})
	g.Go(func() error {
		n, err := s.source.CountCustomers(gctx)
		badges.Customers = n
		return err
	})
	g.Go(func() error {
		n, err := s.source.CountSales(gctx)
		badges.Sales = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Badges{}, err
	}
	badges.FetchedAt = time.Now().UTC()

	if s.cache != nil {
		if raw, err := json.Marshal(badges); err == nil {
			_ = s.cache.Set(ctx, cacheKey, raw, s.ttl).Err()
		}
	}
	return badges, nil
}
