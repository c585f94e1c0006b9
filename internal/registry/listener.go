package registry

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/infra"
)

// ListenInvalidation сбрасывает локальный кэш реестра по сигналу из Redis.
// Сигнал публикует любая реплика после внешней правки agents.json.
// Блокируется до отмены ctx; подписка переживает сбои соединения.
func ListenInvalidation(ctx context.Context, rdb *redis.Client, loader *Loader, logger *zap.Logger) {
	logger = logger.Named("registry-listener")

	for {
		pubsub := rdb.Subscribe(ctx, infra.RedisChanRegistryInvalidate)

		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			logger.Error("failed to subscribe", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		ch := pubsub.Channel()

	loop:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case _, ok := <-ch:
				if !ok {
					break loop
				}
				loader.Invalidate()
				logger.Info("registry cache invalidated by signal")
			}
		}

		pubsub.Close()
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
