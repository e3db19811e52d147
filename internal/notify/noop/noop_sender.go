package noop

import (
	"context"
	"log"

	"docpilot/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op NotificationSender that logs summaries to stdout.
func NewNoopSender() port.NotificationSender {
	return &noopSender{}
}

func (s *noopSender) SendBatchSummary(_ context.Context, toEmail string, summary port.BatchSummary) error {
	log.Printf("[NOOP NOTIFY] Batch %s summary for %s: %d total, %d succeeded, %d failed (%dms)",
		summary.BatchID, toEmail, summary.Total, summary.Succeeded, summary.Failed, summary.DurationMs)
	return nil
}
