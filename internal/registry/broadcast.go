package registry

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xela07ax/dashboard-daddy/internal/infra"
)

// RedisBroadcaster рассылает сигнал инвалидации кэша реестра остальным
// экземплярам консоли.
type RedisBroadcaster struct {
	rdb *redis.Client
}

func NewRedisBroadcaster(rdb *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{rdb: rdb}
}

func (b *RedisBroadcaster) BroadcastInvalidate(ctx context.Context) error {
	if err := b.rdb.Publish(ctx, infra.RedisChanRegistryInvalidate, "invalidate").Err(); err != nil {
		return fmt.Errorf("redis: publish registry invalidation: %w", err)
	}
	return nil
}
