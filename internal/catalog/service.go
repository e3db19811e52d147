package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"docpilot/internal/domain"
	"docpilot/internal/port"
)

// Config holds catalog read settings.
type Config struct {
	TTL        time.Duration
	MaxRetries int
	RetryBase  time.Duration
}

// Service caches catalog reads with a TTL and degrades to the built-in
// fallback set when the remote store stays unreachable through the retry
// budget. It implements port.TemplateStore so the selector path is identical
// whether templates came from the store, the cache, or the fallback set.
type Service struct {
	store port.TemplateStore
	cfg   Config
	clock Clock

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	templates []domain.Template
	fetchedAt time.Time
}

// NewService creates a caching catalog over a remote store.
func NewService(store port.TemplateStore, cfg Config, clock Clock) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase == 0 {
		cfg.RetryBase = 100 * time.Millisecond
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// List returns templates for the filter from cache, remote, or fallback set,
// in that order. It never returns an empty error path for a known category:
// the fallback set covers every document type.
func (s *Service) List(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error) {
	key := filter.Key()
	now := s.clock.Now()

	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if ok && now.Sub(entry.fetchedAt) < s.cfg.TTL {
		return cloneTemplates(entry.templates), nil
	}

	templates, err := s.fetchWithRetry(ctx, filter)
	if err != nil {
		log.Printf("catalog.Service: remote fetch failed after %d attempts, serving fallback set: %v", s.cfg.MaxRetries, err)
		return fallbackFor(filter), nil
	}

	s.mu.Lock()
	s.entries[key] = cacheEntry{templates: templates, fetchedAt: now}
	s.mu.Unlock()

	return cloneTemplates(templates), nil
}

func (s *Service) fetchWithRetry(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		templates, err := s.store.List(ctx, filter)
		if err == nil {
			return templates, nil
		}
		lastErr = err
		log.Printf("catalog.Service: fetch attempt %d/%d failed: %v", attempt, s.cfg.MaxRetries, err)

		if attempt == s.cfg.MaxRetries {
			break
		}
		// Short progressive backoff: base, 2*base, 3*base...
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.cfg.RetryBase):
		}
	}
	return nil, lastErr
}

// GetByID reads a single template, bypassing the cache.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Template, error) {
	tpl, err := s.store.GetByID(ctx, id)
	if err == nil {
		return tpl, nil
	}
	// The fixed fallback IDs stay resolvable while the store is down.
	for _, fb := range FallbackTemplates() {
		if fb.ID == id {
			return &fb, nil
		}
	}
	return nil, err
}

// IncrementUsage passes the usage increment through. Best-effort by
// contract; callers fire it from the usage queue, never inline.
func (s *Service) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return s.store.IncrementUsage(ctx, id)
}

// Invalidate drops a cached filter entry, forcing the next read remote.
func (s *Service) Invalidate(filter domain.TemplateFilter) {
	s.mu.Lock()
	delete(s.entries, filter.Key())
	s.mu.Unlock()
}

func cloneTemplates(in []domain.Template) []domain.Template {
	out := make([]domain.Template, len(in))
	copy(out, in)
	return out
}
