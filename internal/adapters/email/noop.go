package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// NoopSender is a no-op email sender for development and testing.
// It logs sends but does not actually deliver emails.
type NoopSender struct {
	log zerolog.Logger
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender(log zerolog.Logger) *NoopSender {
	return &NoopSender{log: log}
}

// Send logs the email but does not deliver it.
// PRE: req is a valid SendRequest
// POST: Returns a noop result without actual delivery
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	s.log.Info().Strs("to", req.To).Str("subject", req.Subject).Msg("noop_email_send")
	return SendResult{
		MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()),
		SentAt:    time.Now(),
	}, nil
}
