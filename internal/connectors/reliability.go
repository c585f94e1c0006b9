package connectors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ReliableCallProvider оборачивает провайдера истории звонков в слой надежности:
// rate limiter -> circuit breaker -> retry с учетом Retry-After.
type ReliableCallProvider struct {
	next    CallHistoryProvider
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewReliableCallProvider(next CallHistoryProvider) *ReliableCallProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "caller-api",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second, // Время, через которое CB попробует закрыться
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	// Истории звонков хватает пары запросов в секунду, всплеск на поллинг-клиентов
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &ReliableCallProvider{
		next:    next,
		cb:      cb,
		limiter: limiter,
	}
}

func (w *ReliableCallProvider) ListRecent(ctx context.Context, limit int) ([]CallRecord, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	var result []CallRecord

	cbResult, err := w.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Если API вернул ThrottleError — ждем ровно столько, сколько он просил
				var tErr *ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}
				// Иначе (сетевой лаг, 500-ка) — стандартный экспоненциальный бэкофф
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			var callErr error
			result, callErr = w.next.ListRecent(tCtx, limit)
			return callErr
		})

		return result, retryErr
	})

	if err != nil {
		return nil, err
	}

	return cbResult.([]CallRecord), nil
}
