// Package dispatch implements the automation job queue: priority- and
// delay-aware scheduling of notification jobs against a durable job store,
// with a worker pool executing per-kind handlers.
package dispatch

import "time"

type Kind string

const (
	KindSendEmail       Kind = "send-email"
	KindSendSMS         Kind = "send-sms"
	KindSendUrgentAlert Kind = "send-urgent-alert"
	KindFollowUp        Kind = "follow-up"
)

// Alert types understood by the urgent-alert formatter.
const (
	AlertUrgentIntake   = "urgent-intake"
	AlertSignalDetected = "external-signal-detected"
)

type EmailPayload struct {
	Template string         `json:"template"`
	To       string         `json:"to"` // email address, or a user id to resolve
	Data     map[string]any `json:"data,omitempty"`
}

type SMSPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

type AlertPayload struct {
	Type string         `json:"type"`
	To   string         `json:"to,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

type FollowUpPayload struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	Data   map[string]any `json:"data,omitempty"`
}

// Job is the queue-internal variant record. Exactly one payload field is set,
// matching Kind. Jobs are ephemeral; completed and failed jobs survive only
// as event-log entries.
type Job struct {
	ID         string           `json:"id"`
	Kind       Kind             `json:"kind"`
	Email      *EmailPayload    `json:"email,omitempty"`
	SMS        *SMSPayload      `json:"sms,omitempty"`
	Alert      *AlertPayload    `json:"alert,omitempty"`
	FollowUp   *FollowUpPayload `json:"follow_up,omitempty"`
	Priority   int              `json:"priority"`
	NotBefore  time.Time        `json:"not_before"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
	Seq        uint64           `json:"seq"`
	Attempts   int              `json:"attempts"`
}

// Options control scheduling. Lower priority numbers dispatch first; Delay is
// converted into an absolute not-before timestamp at enqueue time.
type Options struct {
	Priority int
	Delay    time.Duration
}
