package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"gitlab.com/swifttrack/driver-app/internal/store"
)

// Trail batches delivery events and ships them through a producer. One
// aggregator goroutine collects entries into batches by size or timeout; a
// small worker pool sends them. Losing the trail never blocks a delivery.
type Trail struct {
	workerCount int
	batchSize   int
	timeout     time.Duration
	producer    Producer
	log         *zap.Logger

	inputCh chan DeliveryEvent
	batchCh chan []DeliveryEvent
	once    sync.Once
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewTrail(producer Producer, workerCount, batchSize int, timeout time.Duration, log *zap.Logger) *Trail {
	if workerCount < 1 {
		workerCount = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Trail{
		workerCount: workerCount,
		batchSize:   batchSize,
		timeout:     timeout,
		producer:    producer,
		log:         log,
		inputCh:     make(chan DeliveryEvent, workerCount*batchSize*2),
		batchCh:     make(chan []DeliveryEvent, workerCount*2),
	}
}

func (t *Trail) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.runAggregator(ctx)

	for i := 0; i < t.workerCount; i++ {
		t.wg.Add(1)
		go t.runWorker(ctx, i)
	}
}

// Publish queues one event. A full queue drops the entry with a log line
// rather than stalling the caller.
func (t *Trail) Publish(ev DeliveryEvent) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		t.log.Warn("event dropped during shutdown", zap.String("event_id", ev.ID))
		return
	}
	select {
	case t.inputCh <- ev:
	default:
		t.log.Warn("event queue full, dropping", zap.String("event_id", ev.ID))
	}
}

// ObserveStore returns a store listener feeding the trail.
func (t *Trail) ObserveStore() store.Listener {
	return func(ev store.Event) {
		t.Publish(FromStoreEvent(ev))
	}
}

// Shutdown flushes pending batches and closes the producer.
func (t *Trail) Shutdown(ctx context.Context) {
	t.once.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.inputCh)
		t.mu.Unlock()

		done := make(chan struct{})
		go func() {
			t.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			t.log.Info("event trail drained")
		case <-ctx.Done():
			t.log.Warn("event trail shutdown interrupted")
		}

		if err := t.producer.Close(); err != nil {
			t.log.Warn("closing event producer", zap.Error(err))
		}
	})
}

func (t *Trail) runAggregator(ctx context.Context) {
	defer t.wg.Done()
	defer close(t.batchCh)

	var (
		batch    []DeliveryEvent
		timer    *time.Timer
		timeoutC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 {
			t.batchCh <- batch
			batch = nil
		}
		if timer != nil {
			timer.Stop()
			timer = nil
			timeoutC = nil
		}
	}
	defer flush()

	for {
		select {
		case ev, ok := <-t.inputCh:
			if !ok {
				return
			}
			batch = append(batch, ev)
			if len(batch) >= t.batchSize {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(t.timeout)
				timeoutC = timer.C
			}
		case <-timeoutC:
			timer = nil
			timeoutC = nil
			flush()
		case <-ctx.Done():
			return
		}
	}
}

func (t *Trail) runWorker(ctx context.Context, id int) {
	defer t.wg.Done()

	for batch := range t.batchCh {
		for _, ev := range batch {
			payload, err := json.Marshal(ev)
			if err != nil {
				t.log.Error("encode event", zap.Error(err))
				continue
			}
			if err := t.producer.SendMessage(ctx, []byte(ev.PackageID), payload); err != nil {
				t.log.Warn("send event",
					zap.Int("worker", id),
					zap.String("event_id", ev.ID),
					zap.Error(err))
			}
		}
	}
}
