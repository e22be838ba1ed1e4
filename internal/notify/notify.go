// Package notify abstracts the outbound email/SMS transport. Both calls are
// fire-and-forget from the caller's perspective; failures propagate as errors
// so the dispatch layer can decide on retries.
package notify

import "context"

type Sender interface {
	SendEmail(ctx context.Context, from, to, subject, body string) error
	SendSMS(ctx context.Context, to, message string) error
}
