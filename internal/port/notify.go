package port

import "context"

// BatchSummary describes the outcome of one batch extraction run.
type BatchSummary struct {
	BatchID    string
	Total      int
	Succeeded  int
	Failed     int
	DurationMs int64
}

// NotificationSender delivers batch outcome notifications. Failures are
// logged by callers and never propagate to the extraction path.
type NotificationSender interface {
	SendBatchSummary(ctx context.Context, toEmail string, summary BatchSummary) error
}
