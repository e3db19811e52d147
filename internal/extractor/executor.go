package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"docpilot/internal/domain"
	"docpilot/internal/port"
	"docpilot/internal/provider"
)

// Result is one successful extraction before reconciliation.
type Result struct {
	Record       *domain.ExtractedRecord
	Confidence   float64
	ProviderUsed string
	RawResponse  string
}

// Executor combines a selected template and the provider failover chain to
// produce a structured record from document text or bytes.
type Executor struct {
	router  *provider.Router
	timeout time.Duration
}

// NewExecutor creates an Executor. timeout is the hard per-call deadline.
func NewExecutor(router *provider.Router, timeout time.Duration) *Executor {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Executor{router: router, timeout: timeout}
}

// Execute walks the provider chain starting at the template's preference.
// Provider errors and timeouts advance the chain; a ParseError terminates
// the request immediately — a provider that answered with garbage will not
// be papered over by asking another one. Chain exhaustion surfaces the last
// provider error.
func (e *Executor) Execute(ctx context.Context, tpl *domain.Template, doc *domain.Document, docType domain.DocumentType) (*Result, error) {
	chain := e.router.Chain(tpl.ProviderPreference)
	if len(chain) == 0 {
		return nil, domain.ErrNoProviderAvailable
	}

	req := port.CompletionRequest{
		Prompt:      BuildPrompt(tpl, doc, docType),
		Temperature: tpl.Temperature,
		MaxTokens:   tpl.MaxOutputTokens,
	}
	if doc.IsScanned {
		req.ImageBytes = doc.Bytes
		req.ImageMIME = doc.MimeType
	}

	var lastErr error
	for _, entry := range chain {
		raw, err := e.race(ctx, entry.Client, req)
		if err != nil {
			lastErr = provider.ClassifyCallError(entry.Handle.Name, err)
			log.Printf("extractor.Executor: %s failed: %v", entry.Handle.Name, lastErr)
			continue
		}

		record, confidence, err := DecodeRecord(raw)
		if err != nil {
			return nil, err
		}
		record.DocumentType = docType

		return &Result{
			Record:       record,
			Confidence:   confidence,
			ProviderUsed: entry.Handle.Name,
			RawResponse:  raw,
		}, nil
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

type completion struct {
	text string
	err  error
}

// race runs the completion call against an explicit timer. On timeout the
// in-flight call is abandoned — its eventual result lands in a buffered
// channel and is discarded — and the failure is a ProviderTimeout, distinct
// from a ProviderError.
func (e *Executor) race(ctx context.Context, client port.ProviderClient, req port.CompletionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		text, err := client.Complete(callCtx, req)
		done <- completion{text: text, err: err}
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		return "", fmt.Errorf("%s: %w", client.Name(), domain.ErrProviderTimeout)
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s: %w", client.Name(), domain.ErrProviderTimeout)
		}
		return "", ctx.Err()
	case c := <-done:
		return c.text, c.err
	}
}
