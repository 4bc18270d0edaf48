package projcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/nestegg/internal/model"
)

const (
	keyPrefix     = "nestegg:proj:"
	generationKey = "nestegg:proj:gen"
)

// Redis shares cached projections between processes (CLI, TUI, daemon).
// Invalidate bumps a generation counter so stale keys are never read and
// expire on their own TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a cache against addr.
func NewRedis(addr string, ttl time.Duration) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &Redis{client: rdb, ttl: ttl}
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) generation(ctx context.Context) (int64, error) {
	gen, err := r.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (r *Redis) Get(ctx context.Context, key string) ([]model.YearRow, bool) {
	gen, err := r.generation(ctx)
	if err != nil {
		return nil, false
	}
	val, err := r.client.Get(ctx, fmt.Sprintf("%s%d:%s", keyPrefix, gen, key)).Bytes()
	if err != nil {
		return nil, false
	}
	rows, err := decode(val)
	if err != nil {
		return nil, false
	}
	return rows, true
}

func (r *Redis) Set(ctx context.Context, key string, rows []model.YearRow) error {
	gen, err := r.generation(ctx)
	if err != nil {
		return fmt.Errorf("reading cache generation: %w", err)
	}
	data, err := encode(rows)
	if err != nil {
		return fmt.Errorf("encoding projection: %w", err)
	}
	return r.client.Set(ctx, fmt.Sprintf("%s%d:%s", keyPrefix, gen, key), data, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context) error {
	return r.client.Incr(ctx, generationKey).Err()
}
