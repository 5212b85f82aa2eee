package memory

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/baechuer/bridge-auth/internal/application/auth"
)

// LogSender stands in for the email and SMS transports in dev:
// every message is written to the log instead of being delivered.
type LogSender struct {
	lg zerolog.Logger
}

var (
	_ auth.EmailSender = (*LogSender)(nil)
	_ auth.SMSSender   = (*LogSender)(nil)
)

func NewLogSender(lg zerolog.Logger) *LogSender {
	return &LogSender{lg: lg.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, html string) error {
	s.lg.Info().
		Str("channel", "email").
		Str("to", to).
		Str("subject", subject).
		Str("html", html).
		Msg("notification not delivered (log sender)")
	return nil
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	s.lg.Info().
		Str("channel", "sms").
		Str("to", to).
		Str("body", body).
		Msg("notification not delivered (log sender)")
	return nil
}
