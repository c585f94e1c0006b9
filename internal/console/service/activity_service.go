package service

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// ActivitySource — независимый источник записей для ленты.
// Отказ одного источника не абортит остальные: он просто даст ноль записей.
type ActivitySource struct {
	Name  string
	Fetch func(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

// ActivityComposer собирает best-effort ленту активности: опрашивает источники
// параллельно, сливает по Timestamp по убыванию и режет до limit.
// Дедупликация не нужна: id префиксованы источником и не коллидируют.
type ActivityComposer struct {
	sources []ActivitySource
	logger  *zap.Logger
}

func NewActivityComposer(logger *zap.Logger, sources ...ActivitySource) *ActivityComposer {
	return &ActivityComposer{
		sources: sources,
		logger:  logger.Named("activity"),
	}
}

func (c *ActivityComposer) Compose(ctx context.Context, limit int) []domain.ActivityEntry {
	if limit <= 0 {
		limit = 20
	}

	var (
		mu      sync.Mutex
		entries []domain.ActivityEntry
		wg      sync.WaitGroup
	)

	for _, src := range c.sources {
		wg.Add(1)
		go func(src ActivitySource) {
			defer wg.Done()

			got, err := src.Fetch(ctx, limit)
			if err != nil {
				// Лента ценна именно как приблизительная: сбой источника —
				// предупреждение в лог и ноль записей, не ошибка наружу
				c.logger.Warn("activity source failed, skipping",
					zap.String("source", src.Name),
					zap.Error(err))
				return
			}

			mu.Lock()
			entries = append(entries, got...)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []domain.ActivityEntry{}
	}
	return entries
}
