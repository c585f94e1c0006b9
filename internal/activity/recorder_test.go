package activity

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureStorage struct {
	mu      sync.Mutex
	batches [][]Event
}

func (c *captureStorage) WriteBatch(_ context.Context, events []Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := make([]Event, len(events))
	copy(batch, events)
	c.batches = append(c.batches, batch)
	return nil
}

func (c *captureStorage) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func TestRecorderFlushesOnStop(t *testing.T) {
	storage := &captureStorage{}
	rec := NewRecorder(storage, 100, time.Hour, zap.NewNop())
	rec.Start()

	for i := 0; i < 7; i++ {
		rec.Record(Event{ID: fmt.Sprintf("e-%d", i), Kind: KindTaskCreated})
	}
	rec.Stop()

	require.Equal(t, 7, storage.total(), "tail of the buffer must be drained")
}

func TestRecorderFlushesOnBatchSize(t *testing.T) {
	storage := &captureStorage{}
	rec := NewRecorder(storage, 500, time.Hour, zap.NewNop())
	rec.Start()

	for i := 0; i < 250; i++ {
		rec.Record(Event{ID: fmt.Sprintf("e-%d", i), Kind: KindAgentStarted})
	}
	rec.Stop()

	require.Equal(t, 250, storage.total())
	require.GreaterOrEqual(t, len(storage.batches), 2, "size-triggered flushes before final drain")
}

func TestRecorderFlushesOnTimer(t *testing.T) {
	storage := &captureStorage{}
	rec := NewRecorder(storage, 100, 20*time.Millisecond, zap.NewNop())
	rec.Start()
	defer rec.Stop()

	rec.Record(Event{ID: "e-1", Kind: KindAgentStopped})

	require.Eventually(t, func() bool {
		return storage.total() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRecorderStampsTimestamp(t *testing.T) {
	storage := &captureStorage{}
	rec := NewRecorder(storage, 100, time.Hour, zap.NewNop())
	rec.Start()

	rec.Record(Event{ID: "e-1", Kind: KindTaskTransition})
	rec.Stop()

	require.Equal(t, 1, storage.total())
	require.False(t, storage.batches[0][0].Timestamp.IsZero())
}

func TestRecorderDropsAfterStop(t *testing.T) {
	storage := &captureStorage{}
	rec := NewRecorder(storage, 100, time.Hour, zap.NewNop())
	rec.Start()
	rec.Stop()

	// Не должно паниковать записью в закрытый канал
	rec.Record(Event{ID: "late", Kind: KindTaskCreated})
	require.Equal(t, 0, storage.total())
}

func TestNopSink(t *testing.T) {
	var s Sink = NopSink{}
	s.Record(Event{ID: "x"})
}
