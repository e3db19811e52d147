package port

import "context"

// TextResult is the outcome of raw text extraction from an uploaded file.
// NeedsVision signals a scanned document with no extractable text layer.
type TextResult struct {
	Text        string
	PageCount   int
	NeedsVision bool
}

// TextExtractor extracts plain text from uploaded document bytes.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, filename, contentType string) (*TextResult, error)
}
