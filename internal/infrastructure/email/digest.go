// Package email sends operational digests through Resend.
package email

import (
	"fmt"
	"os"
	"strings"

	"github.com/resendlabs/resend-go"

	"github.com/CoursePulse/coursepulse-go/internal/application/services"
	"github.com/CoursePulse/coursepulse-go/internal/infrastructure/observability/logging"
)

// DigestService emails a failure digest to the ops address after a refresh
// batch with per-tenant failures. Disabled entirely when RESEND_API_KEY is
// not configured.
type DigestService struct {
	client    *resend.Client
	fromEmail string
	opsEmail  string
	logger    *logging.ChanneledLogger
}

// NewDigestService creates the digest sender, or nil when email is not
// configured.
func NewDigestService(logger *logging.ChanneledLogger) *DigestService {
	apiKey := os.Getenv("RESEND_API_KEY")
	opsEmail := os.Getenv("OPS_DIGEST_EMAIL")
	if apiKey == "" || opsEmail == "" {
		logger.Startup().Info("Ops email digest disabled, RESEND_API_KEY or OPS_DIGEST_EMAIL not set")
		return nil
	}

	fromEmail := os.Getenv("RESEND_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = "alerts@coursepulse.dev"
	}

	return &DigestService{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		opsEmail:  opsEmail,
		logger:    logger,
	}
}

// SendRefreshFailureDigest summarizes a batch's per-tenant failures
func (s *DigestService) SendRefreshFailureDigest(summary *services.RefreshSummary) error {
	var body strings.Builder
	fmt.Fprintf(&body, "Refresh run %s (%s tier) finished with failures.\n\n", summary.RunID, summary.Tier)
	fmt.Fprintf(&body, "Tenants processed: %d\n", summary.TenantsProcessed)
	fmt.Fprintf(&body, "Tenants failed: %d\n", summary.TenantsFailed)
	fmt.Fprintf(&body, "Metrics upserted: %d\n", summary.MetricsUpserted)
	fmt.Fprintf(&body, "Duration: %s\n\nFailures:\n", summary.Duration)
	for _, failure := range summary.Failures {
		fmt.Fprintf(&body, "  - %s\n", failure)
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{s.opsEmail},
		Subject: fmt.Sprintf("[CoursePulse] %s tier refresh: %d tenant(s) failed", summary.Tier, summary.TenantsFailed),
		Text:    body.String(),
	}

	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	s.logger.Alert().Info("Refresh failure digest sent",
		"tier", summary.Tier, "runId", summary.RunID, "to", s.opsEmail)
	return nil
}
