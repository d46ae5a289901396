package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoopSender logs sends without delivering anything. It is used when no
// provider key is configured.
type NoopSender struct {
	now    func() time.Time
	logger *slog.Logger
}

// NewNoopSender creates a NoopSender.
func NewNoopSender(logger *slog.Logger) *NoopSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopSender{now: time.Now, logger: logger.With("component", "noop_mail")}
}

// Send logs the email and returns a synthetic message id.
func (s *NoopSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	sentAt := s.now()
	s.logger.InfoContext(ctx, "email not delivered, no provider configured", "to", req.To, "subject", req.Subject)
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", sentAt.UnixNano()),
		SentAt:    sentAt,
	}, nil
}
