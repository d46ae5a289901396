package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	now    func() time.Time
	logger *slog.Logger
}

// NewResendSender creates a sender using apiKey and the default from address.
func NewResendSender(apiKey, from string, logger *slog.Logger) *ResendSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		now:    time.Now,
		logger: logger.With("component", "resend"),
	}
}

// Send sends a single email and returns the Resend message id.
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	from := req.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	if req.ReplyTo != "" {
		params.ReplyTo = req.ReplyTo
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.ErrorContext(ctx, "resend send failed", "error", err, "to", req.To, "subject", req.Subject)
		return SendResult{}, fmt.Errorf("resend send failed: %w", err)
	}

	s.logger.InfoContext(ctx, "resend email sent", "message_id", sent.Id, "to", req.To, "subject", req.Subject)
	return SendResult{MessageID: sent.Id, SentAt: s.now()}, nil
}
