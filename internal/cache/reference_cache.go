// Package cache puts Redis in front of reference lookups. Redis failures
// never fail a lookup; the call falls through to the backing repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/repository"
)

const keyPrefix = "workorders:ref:"

// ReferenceCache is a read-through cache decorating a ReferenceRepository.
type ReferenceCache struct {
	next   repository.ReferenceRepository
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ repository.ReferenceRepository = (*ReferenceCache)(nil)

// NewReferenceCache wraps next. A nil client disables caching.
func NewReferenceCache(next repository.ReferenceRepository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *ReferenceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceCache{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *ReferenceCache) GetEquipment(ctx context.Context, id string) (*domain.Equipment, error) {
	return readThrough(ctx, c, "equipment:"+id, func(ctx context.Context) (*domain.Equipment, error) {
		return c.next.GetEquipment(ctx, id)
	})
}

func (c *ReferenceCache) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	return readThrough(ctx, c, "part:"+id, func(ctx context.Context) (*domain.Part, error) {
		return c.next.GetPart(ctx, id)
	})
}

func (c *ReferenceCache) GetWorkType(ctx context.Context, id string) (*domain.WorkType, error) {
	return readThrough(ctx, c, "work_type:"+id, func(ctx context.Context) (*domain.WorkType, error) {
		return c.next.GetWorkType(ctx, id)
	})
}

func (c *ReferenceCache) GetPendingReason(ctx context.Context, id string) (*domain.PendingReason, error) {
	return readThrough(ctx, c, "pending_reason:"+id, func(ctx context.Context) (*domain.PendingReason, error) {
		return c.next.GetPendingReason(ctx, id)
	})
}

func readThrough[T any](ctx context.Context, c *ReferenceCache, key string, load func(context.Context) (*T, error)) (*T, error) {
	if c.client == nil {
		return load(ctx)
	}
	key = keyPrefix + key

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			return &v, nil
		}
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Debug("reference cache unavailable", zap.String("key", key), zap.Error(err))
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(v); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Debug("reference cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}
