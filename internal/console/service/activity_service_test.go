package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/connectors"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

type mockCalls struct{}

func (mockCalls) ListRecent(context.Context, int) ([]connectors.CallRecord, error) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []connectors.CallRecord{
		{ID: "rec-1", Contact: "Dr. Patel", Outcome: "answered", Summary: "Checkup confirmed", Timestamp: base},
		{ID: "rec-2", Contact: "Acme", Outcome: "voicemail", DurationSec: 30, Timestamp: base.Add(-time.Hour)},
	}, nil
}

func staticSource(name string, base time.Time, n int) ActivitySource {
	return ActivitySource{
		Name: name,
		Fetch: func(_ context.Context, _ int) ([]domain.ActivityEntry, error) {
			entries := make([]domain.ActivityEntry, 0, n)
			for i := 0; i < n; i++ {
				entries = append(entries, domain.ActivityEntry{
					ID:        fmt.Sprintf("%s-%d", name, i),
					Type:      name,
					Timestamp: base.Add(-time.Duration(i) * time.Minute),
				})
			}
			return entries, nil
		},
	}
}

func failingSource(name string) ActivitySource {
	return ActivitySource{
		Name: name,
		Fetch: func(context.Context, int) ([]domain.ActivityEntry, error) {
			return nil, errors.New("upstream down")
		},
	}
}

func TestComposeMergesAndSortsDescending(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewActivityComposer(zap.NewNop(),
		staticSource("tasks", base, 3),
		staticSource("calls", base.Add(-30*time.Second), 3),
	)

	entries := c.Compose(context.Background(), 10)
	require.Len(t, entries, 6)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].Timestamp.After(entries[i-1].Timestamp),
			"entries must be sorted newest first")
	}
	require.Equal(t, "tasks-0", entries[0].ID)
	require.Equal(t, "calls-0", entries[1].ID)
}

func TestComposeTruncatesToLimit(t *testing.T) {
	base := time.Now()
	c := NewActivityComposer(zap.NewNop(),
		staticSource("a", base, 10),
		staticSource("b", base, 10),
		staticSource("c", base, 10),
	)

	entries := c.Compose(context.Background(), 5)
	require.Len(t, entries, 5)
}

func TestComposeSurvivesFailingSource(t *testing.T) {
	base := time.Now()
	c := NewActivityComposer(zap.NewNop(),
		failingSource("calls"),
		staticSource("tasks", base, 2),
	)

	entries := c.Compose(context.Background(), 10)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.Equal(t, "tasks", e.Type)
	}
}

func TestComposeAllSourcesFailed(t *testing.T) {
	c := NewActivityComposer(zap.NewNop(), failingSource("a"), failingSource("b"))

	entries := c.Compose(context.Background(), 10)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestComposeDefaultLimit(t *testing.T) {
	c := NewActivityComposer(zap.NewNop(), staticSource("a", time.Now(), 30))

	entries := c.Compose(context.Background(), 0)
	require.Len(t, entries, 20)
}

func TestCallSourceMapsRecords(t *testing.T) {
	src := NewCallSource(&mockCalls{})

	entries, err := src.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "call-rec-1", entries[0].ID)
	require.Equal(t, "call", entries[0].Type)
	require.Equal(t, "Call completed", entries[0].Action)
	require.Contains(t, entries[0].Details, "Dr. Patel")
	require.Equal(t, "Voicemail left", entries[1].Action)
}
