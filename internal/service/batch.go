package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"docpilot/internal/domain"
	"docpilot/internal/port"
)

// BatchConfig holds bulk extraction settings.
type BatchConfig struct {
	Concurrency      int
	InterItemDelay   time.Duration
	MaxItemsPerBatch int
}

// BatchItemResult is the independent outcome of one document in a batch.
type BatchItemResult struct {
	Index    int                      `json:"index"`
	Filename string                   `json:"filename"`
	Result   *domain.ExtractionResult `json:"result,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// BatchResult aggregates a batch run.
type BatchResult struct {
	BatchID   string            `json:"batch_id"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// BatchProcessor runs extractions over several documents with bounded
// parallelism and a small delay between launches. One document's failure
// never aborts the batch.
type BatchProcessor struct {
	svc    *ExtractionService
	notify port.NotificationSender
	cfg    BatchConfig
}

// NewBatchProcessor creates a BatchProcessor. notify may be nil.
func NewBatchProcessor(svc *ExtractionService, notify port.NotificationSender, cfg BatchConfig) *BatchProcessor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &BatchProcessor{svc: svc, notify: notify, cfg: cfg}
}

// Process extracts each document and collects per-item outcomes in input
// order. A batch summary notification goes out best-effort when a sender is
// configured.
func (p *BatchProcessor) Process(ctx context.Context, docs []*domain.Document, ectx domain.ExtractionContext) *BatchResult {
	started := time.Now()
	batchID := uuid.NewString()

	items := make([]BatchItemResult, len(docs))
	sem := make(chan struct{}, p.cfg.Concurrency)
	var wg sync.WaitGroup

	for i := range docs {
		if i > 0 && p.cfg.InterItemDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.cfg.InterItemDelay):
			}
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, doc *domain.Document) {
			defer wg.Done()
			defer func() { <-sem }()

			item := BatchItemResult{Index: idx, Filename: doc.SourceFilename}
			res, err := p.svc.Extract(ctx, doc, ectx)
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Result = res
			}
			items[idx] = item
		}(i, docs[i])
	}
	wg.Wait()

	result := &BatchResult{BatchID: batchID, Total: len(docs), Items: items}
	for _, item := range items {
		if item.Error == "" {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	p.sendSummary(ectx.User.Email, result, time.Since(started))
	return result
}

func (p *BatchProcessor) sendSummary(toEmail string, result *BatchResult, elapsed time.Duration) {
	if p.notify == nil || toEmail == "" {
		return
	}
	summary := port.BatchSummary{
		BatchID:    result.BatchID,
		Total:      result.Total,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		DurationMs: elapsed.Milliseconds(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.notify.SendBatchSummary(ctx, toEmail, summary); err != nil {
			log.Printf("batchProcessor: summary notification failed for batch %s: %v", result.BatchID, err)
		}
	}()
}
