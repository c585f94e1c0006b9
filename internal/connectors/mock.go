package connectors

import (
	"context"
	"time"
)

// MockCallConnector — детерминированная реализация для тестов и dev-режима
// без настроенного голосового API. Никакой случайности в данных:
// контракт ядра не должен зависеть от рандома.
type MockCallConnector struct {
	Now func() time.Time
}

func (c *MockCallConnector) ListRecent(ctx context.Context, limit int) ([]CallRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}

	fixture := []CallRecord{
		{ID: "call-1001", Contact: "Dr. Patel (Vet)", Outcome: "answered", DurationSec: 182,
			Summary: "Confirmed Bubba's checkup for Thursday", Timestamp: now.Add(-15 * time.Minute)},
		{ID: "call-1002", Contact: "Acme Subscriptions", Outcome: "voicemail", DurationSec: 34,
			Summary: "Left message about the renewal quote", Timestamp: now.Add(-2 * time.Hour)},
		{ID: "call-1003", Contact: "Jordan (Outreach)", Outcome: "answered", DurationSec: 421,
			Summary: "Intro call, follow-up scheduled", Timestamp: now.Add(-26 * time.Hour)},
	}

	if limit > 0 && limit < len(fixture) {
		fixture = fixture[:limit]
	}
	return fixture, nil
}
