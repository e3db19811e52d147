package service

import (
	"context"
	"log"
	"sync"
	"time"

	"docpilot/internal/domain"
	"docpilot/internal/port"
)

const usageWriteTimeout = 5 * time.Second

// UsageQueue decouples template usage increments from the request path.
// Publish never blocks: when the buffer is full the event is dropped and
// counted, because a lost increment is cheaper than a delayed response.
type UsageQueue struct {
	store port.TemplateStore
	ch    chan domain.UsageEvent
	wg    sync.WaitGroup

	mu      sync.Mutex
	dropped int64
}

// NewUsageQueue creates a usage queue with the given buffer size.
func NewUsageQueue(store port.TemplateStore, bufSize int) *UsageQueue {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &UsageQueue{
		store: store,
		ch:    make(chan domain.UsageEvent, bufSize),
	}
}

// Start runs the drain loop until ctx is canceled, then flushes what is
// already buffered and returns.
func (q *UsageQueue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				q.drainRemaining()
				return
			case ev := <-q.ch:
				q.apply(ev)
			}
		}
	}()
}

// Publish enqueues a usage event, dropping it if the buffer is full.
func (q *UsageQueue) Publish(ev domain.UsageEvent) {
	select {
	case q.ch <- ev:
	default:
		q.mu.Lock()
		q.dropped++
		n := q.dropped
		q.mu.Unlock()
		log.Printf("service.UsageQueue: buffer full, dropped usage event for template %s (%d dropped total)", ev.TemplateID, n)
	}
}

// Dropped returns how many events have been discarded since startup.
func (q *UsageQueue) Dropped() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Wait blocks until the drain goroutine has exited.
func (q *UsageQueue) Wait() {
	q.wg.Wait()
}

func (q *UsageQueue) apply(ev domain.UsageEvent) {
	if ev.TestMode {
		return
	}
	// Increments use a short background context: the request that produced
	// the event may be long gone.
	ctx, cancel := context.WithTimeout(context.Background(), usageWriteTimeout)
	defer cancel()
	if err := q.store.IncrementUsage(ctx, ev.TemplateID); err != nil {
		log.Printf("service.UsageQueue: increment failed for template %s: %v", ev.TemplateID, err)
	}
}

func (q *UsageQueue) drainRemaining() {
	for {
		select {
		case ev := <-q.ch:
			q.apply(ev)
		default:
			return
		}
	}
}
