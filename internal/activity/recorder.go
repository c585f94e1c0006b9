package activity

/*
Recorder — неблокирующий сборщик системных событий консоли.

- События уходят из обработчиков через буферизованный канал: задержки записи
  в БД не влияют на время ответа.
- Накопление в памяти и пакетная вставка (Bulk Insert) в PostgreSQL по таймеру
  или при наборе лимита.
- Drain Pattern на остановке: закрытие входного канала + WaitGroup гарантируют
  финальный flush без потери хвоста буфера.
- При переполнении буфера работает Load Shedding: событие дропается с записью
  в обычный лог, Hot Path не блокируется.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StorageInterface определяет, куда физически сохраняются события.
type StorageInterface interface {
	// WriteBatch сохраняет пачку событий за один раз.
	WriteBatch(ctx context.Context, events []Event) error
}

// Sink — то, что видят продюсеры событий.
type Sink interface {
	Record(event Event)
}

// NopSink — заглушка для конфигураций без БД и для тестов обработчиков.
type NopSink struct{}

func (NopSink) Record(Event) {}

type Recorder struct {
	ch     chan Event
	repo   StorageInterface
	logger *zap.Logger
	wg     sync.WaitGroup

	flushEvery time.Duration
	batchSize  int

	isClosed int32 // Атомарный флаг (0 - открыт, 1 - закрыт)
}

func NewRecorder(repo StorageInterface, buffer int, flushEvery time.Duration, logger *zap.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 10000
	}
	if flushEvery <= 0 {
		flushEvery = 500 * time.Millisecond
	}
	return &Recorder{
		ch:         make(chan Event, buffer),
		repo:       repo,
		logger:     logger.With(zap.String("mod", "activity-recorder")),
		flushEvery: flushEvery,
		batchSize:  100,
	}
}

func (r *Recorder) Start() {
	r.wg.Add(1)
	go r.worker()
}

// Stop запирает вход в канал и ждет, пока воркер допишет остатки.
func (r *Recorder) Stop() {
	atomic.StoreInt32(&r.isClosed, 1)

	// Крошечная пауза, чтобы уже начатые Record успели проскочить
	time.Sleep(10 * time.Millisecond)

	r.logger.Info("stopping recorder: closing channel and flushing buffer...")
	close(r.ch)
	r.wg.Wait()
	r.logger.Info("recorder stopped gracefully")
}

func (r *Recorder) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if atomic.LoadInt32(&r.isClosed) == 1 {
		r.logger.Warn("activity event dropped: recorder is stopping", zap.String("id", event.ID))
		return
	}

	select {
	case r.ch <- event:
	default:
		// Backpressure: буфер полон, дропаем с следом в логе
		r.logger.Error("activity_buffer_overflow",
			zap.String("kind", event.Kind),
			zap.String("agent_id", event.AgentID),
		)
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	batch := make([]Event, 0, r.batchSize)
	ticker := time.NewTicker(r.flushEvery)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст процесса к этому моменту может быть закрыт
		if err := r.repo.WriteBatch(context.Background(), batch); err != nil {
			r.logger.Error("activity flush failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-r.ch:
			if !ok {
				// Канал закрыт в Stop(): вычитали хвост, финальный сброс и выход
				flush()
				r.logger.Info("activity worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= r.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
