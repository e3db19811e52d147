package domain

import "errors"

// Sentinel errors used across services and mapped to HTTP responses in the
// handler layer.
var (
	ErrNoFile              = errors.New("no file provided")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")

	ErrTemplateNotFound   = errors.New("template not found")
	ErrNoTemplateSelected = errors.New("no template scored above zero")
	ErrCatalogUnavailable = errors.New("template catalog unavailable")

	ErrNoProviderAvailable = errors.New("no configured provider available")
	ErrProviderTimeout     = errors.New("provider call exceeded deadline")
	ErrProvider            = errors.New("provider returned an error")
	ErrParseFailure        = errors.New("provider response is not valid JSON")
	ErrExtractionFailed    = errors.New("document extraction failed")
)
