package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"docpilot/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed NotificationSender.
func NewSESSender(region, fromAddress, fromName string) (port.NotificationSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendBatchSummary(ctx context.Context, toEmail string, summary port.BatchSummary) error {
	subject := fmt.Sprintf("Batch %s: %d/%d documents extracted", summary.BatchID, summary.Succeeded, summary.Total)
	htmlBody := buildBatchSummaryHTML(summary)
	textBody := fmt.Sprintf(
		"Batch %s finished.\n\nTotal: %d\nSucceeded: %d\nFailed: %d\nDuration: %dms\n",
		summary.BatchID, summary.Total, summary.Succeeded, summary.Failed, summary.DurationMs,
	)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildBatchSummaryHTML(summary port.BatchSummary) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Batch extraction finished</h2>
  <p>Batch <strong>%s</strong> has completed.</p>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><td style="padding: 6px 12px;">Total documents</td><td style="padding: 6px 12px;">%d</td></tr>
    <tr><td style="padding: 6px 12px;">Succeeded</td><td style="padding: 6px 12px;">%d</td></tr>
    <tr><td style="padding: 6px 12px;">Failed</td><td style="padding: 6px 12px;">%d</td></tr>
    <tr><td style="padding: 6px 12px;">Duration</td><td style="padding: 6px 12px;">%dms</td></tr>
  </table>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">DocPilot - Document Extraction Platform</p>
</body>
</html>`, summary.BatchID, summary.Total, summary.Succeeded, summary.Failed, summary.DurationMs)
}
