package provider

import (
	"fmt"

	"docpilot/internal/config"
	"docpilot/internal/port"
)

// Factory is a function that creates a ProviderClient from a provider config.
type Factory func(cfg *config.ProviderConfig) (port.ProviderClient, error)

// registry of provider factories, populated explicitly via Register from the
// composition root.
var factories = map[string]Factory{}

// Register registers a provider factory by name.
func Register(name string, factory Factory) {
	factories[name] = factory
}

// NewClient creates a ProviderClient from a provider config using the
// registered factory.
func NewClient(cfg *config.ProviderConfig) (port.ProviderClient, error) {
	factory, ok := factories[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
	return factory(cfg)
}
