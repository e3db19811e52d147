package port

import "context"

// CompletionRequest is a single completion call, uniform across providers.
// ImageBytes is set only on the scanned-document path.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	ImageBytes  []byte
	ImageMIME   string
}

// ProviderClient is the uniform capability interface over one language-model
// completion service. Implementations live in internal/provider/<name>.
type ProviderClient interface {
	// Name returns the provider's chain name (e.g. "openai").
	Name() string
	// Complete issues one completion call and returns the raw text response.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
