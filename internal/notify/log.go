package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes would-be notifications to the log. Used in dev when no
// email API is configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) SendEmail(ctx context.Context, from, to, subject, body string) error {
	s.Logger.Info().
		Str("from", from).
		Str("to", to).
		Str("subject", subject).
		Str("body", truncate(body, 200)).
		Msg("email would be sent")
	return nil
}

func (s LogSender) SendSMS(ctx context.Context, to, message string) error {
	s.Logger.Info().
		Str("to", to).
		Str("message", truncate(message, 100)).
		Msg("sms would be sent")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
