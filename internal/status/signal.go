package status

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
	"github.com/xela07ax/dashboard-daddy/internal/infra"
)

// SignalPublisher транслирует переход статуса другим репликам консоли.
// Доставка best-effort: провал публикации не должен ронять сам переход.
type SignalPublisher interface {
	PublishStatus(ctx context.Context, agentID string, st domain.AgentStatus) error
}

// RedisPublisher шлет сигнал "agent_id:status" в Pub/Sub канал.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishStatus(ctx context.Context, agentID string, st domain.AgentStatus) error {
	payload := agentID + ":" + string(st)
	return p.rdb.Publish(ctx, infra.RedisChanAgentStatus, payload).Err()
}

// ListenSignals — живучая подписка на статус-сигналы: переподключается при сбоях
// и мержит удаленные переходы в локальный стор, чтобы реплики сходились.
// Блокируется до отмены ctx.
func ListenSignals(ctx context.Context, rdb *redis.Client, store *Store, logger *zap.Logger) {
	logger = logger.Named("status-listener")

	for {
		pubsub := rdb.Subscribe(ctx, infra.RedisChanAgentStatus)

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
			case msg, ok := <-ch:
				if !ok {
					break loop // Канал закрыт, идем на переподключение
				}

				agentID, raw, found := strings.Cut(msg.Payload, ":")
				st := domain.AgentStatus(raw)
				if !found || agentID == "" || !st.Valid() {
					logger.Error("invalid status signal", zap.String("payload", msg.Payload))
					continue
				}

				store.Set(agentID, st, nil, nil)
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
