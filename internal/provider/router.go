package provider

import (
	"strings"

	"docpilot/internal/domain"
	"docpilot/internal/port"
)

// Entry pairs a chain handle with its client. Client is nil when the
// provider is unconfigured (missing credential).
type Entry struct {
	Handle domain.ProviderHandle
	Client port.ProviderClient
}

// Router holds the statically configured, ordered provider failover chain.
type Router struct {
	chain []Entry
}

// NewRouter creates a Router from an ordered chain.
func NewRouter(chain []Entry) *Router {
	return &Router{chain: chain}
}

// Chain returns the configured entries in failover order, starting at the
// template's preferred provider and wrapping once around the chain so every
// configured provider is tried at most once. An unknown or empty preference
// starts at the head. An empty result means no provider is configured.
func (r *Router) Chain(preference string) []Entry {
	start := 0
	for i, e := range r.chain {
		if strings.EqualFold(e.Handle.Name, preference) {
			start = i
			break
		}
	}

	out := make([]Entry, 0, len(r.chain))
	for i := 0; i < len(r.chain); i++ {
		e := r.chain[(start+i)%len(r.chain)]
		if !e.Handle.IsConfigured || e.Client == nil {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Handles returns the full chain's handles, for observability.
func (r *Router) Handles() []domain.ProviderHandle {
	out := make([]domain.ProviderHandle, 0, len(r.chain))
	for _, e := range r.chain {
		out = append(out, e.Handle)
	}
	return out
}
