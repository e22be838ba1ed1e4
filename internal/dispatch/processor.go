package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/rs/zerolog"

	"github.com/family-support/backend/internal/errs"
	"github.com/family-support/backend/internal/models"
	"github.com/family-support/backend/internal/notify"
	"github.com/family-support/backend/internal/templates"
)

// Directory is the slice of the data store the processor needs: recipient
// resolution, template lookup, and the audit trail.
type Directory interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	GetEmailTemplate(ctx context.Context, name string) (models.EmailTemplate, error)
	AppendEvent(ctx context.Context, e models.EventLog) error
}

// Processor executes one job per call. Template and lookup failures are
// terminal for the job (logged, event recorded, no retry); transport
// failures are returned so the queue can retry with backoff.
type Processor struct {
	Dir        Directory
	Sender     notify.Sender
	FromEmail  string
	AlertEmail string
	Logger     zerolog.Logger
}

func (p *Processor) Process(ctx context.Context, job *Job) error {
	switch job.Kind {
	case KindSendEmail:
		return p.sendEmail(ctx, job)
	case KindSendSMS:
		return p.sendSMS(ctx, job)
	case KindSendUrgentAlert:
		return p.sendUrgentAlert(ctx, job)
	case KindFollowUp:
		return p.followUp(ctx, job)
	default:
		return errs.Template("unknown job kind", goerr.V("kind", string(job.Kind)))
	}
}

func (p *Processor) sendEmail(ctx context.Context, job *Job) error {
	payload := job.Email
	if payload == nil {
		return errs.Template("send-email job without email payload", goerr.V("job_id", job.ID))
	}

	recipient := payload.To
	if !strings.Contains(recipient, "@") {
		user, err := p.Dir.GetUser(ctx, recipient)
		if err != nil {
			return errs.Template("email recipient not resolvable",
				goerr.V("job_id", job.ID), goerr.V("to", recipient))
		}
		recipient = user.Email
	}

	tpl, err := p.Dir.GetEmailTemplate(ctx, payload.Template)
	if err != nil || !tpl.Active {
		// Missing or inactive template is a skip, not a failure.
		p.Logger.Warn().
			Str("template", payload.Template).
			Str("job_id", job.ID).
			Msg("email template missing or inactive, skipping")
		return p.Dir.AppendEvent(ctx, models.EventLog{
			EventType: "email_skipped",
			Payload: map[string]any{
				"template": payload.Template,
				"to":       recipient,
				"reason":   "template missing or inactive",
			},
		})
	}

	subject := templates.Render(tpl.Subject, payload.Data)
	body := templates.Render(tpl.Body, payload.Data)

	if err := p.Sender.SendEmail(ctx, p.FromEmail, recipient, subject, body); err != nil {
		return errs.Transport(err, "failed to send email",
			goerr.V("template", payload.Template), goerr.V("to", recipient))
	}

	return p.Dir.AppendEvent(ctx, models.EventLog{
		EventType: "email_sent",
		Payload: map[string]any{
			"template": payload.Template,
			"to":       recipient,
			"subject":  subject,
		},
	})
}

func (p *Processor) sendSMS(ctx context.Context, job *Job) error {
	payload := job.SMS
	if payload == nil {
		return errs.Template("send-sms job without sms payload", goerr.V("job_id", job.ID))
	}

	if err := p.Sender.SendSMS(ctx, payload.To, payload.Message); err != nil {
		return errs.Transport(err, "failed to send sms", goerr.V("to", payload.To))
	}

	preview := payload.Message
	if runes := []rune(preview); len(runes) > 100 {
		preview = string(runes[:100])
	}
	return p.Dir.AppendEvent(ctx, models.EventLog{
		EventType: "sms_sent",
		Payload:   map[string]any{"to": payload.To, "message": preview},
	})
}

func (p *Processor) sendUrgentAlert(ctx context.Context, job *Job) error {
	payload := job.Alert
	if payload == nil {
		return errs.Template("send-urgent-alert job without alert payload", goerr.V("job_id", job.ID))
	}

	to := payload.To
	if to == "" {
		to = p.AlertEmail
	}

	subject, body := formatAlert(payload.Type, payload.Data)

	if err := p.Sender.SendEmail(ctx, p.FromEmail, to, subject, body); err != nil {
		return errs.Transport(err, "failed to send urgent alert",
			goerr.V("type", payload.Type), goerr.V("to", to))
	}

	return p.Dir.AppendEvent(ctx, models.EventLog{
		EventType: "urgent_alert_sent",
		Payload:   map[string]any{"type": payload.Type, "to": to, "subject": subject},
	})
}

func (p *Processor) followUp(ctx context.Context, job *Job) error {
	// Placeholder hook for scheduled-contact logic; the job is acknowledged
	// so the queue contract holds.
	payload := job.FollowUp
	if payload == nil {
		return errs.Template("follow-up job without payload", goerr.V("job_id", job.ID))
	}
	p.Logger.Info().
		Str("type", payload.Type).
		Str("user_id", payload.UserID).
		Msg("follow-up acknowledged")
	return nil
}

// formatAlert builds subject and body from the fixed alert formatters. No
// template lookup is involved.
func formatAlert(alertType string, data map[string]any) (string, string) {
	switch alertType {
	case AlertUrgentIntake:
		subject := fmt.Sprintf("URGENT: New Intake - %s - Score: %s",
			str(data, "clientName"), str(data, "urgencyScore"))
		body := fmt.Sprintf(`URGENT INTAKE ALERT

Client: %s
Email: %s
Phone: %s
Service: %s
Urgency Score: %s/100
Factors: %s
Hearing Date: %s
Court: %s

Please respond urgently.`,
			str(data, "clientName"),
			str(data, "clientEmail"),
			strOr(data, "clientPhone", "N/A"),
			str(data, "serviceType"),
			str(data, "urgencyScore"),
			joinList(data["urgencyFactors"]),
			strOr(data, "hearingDate", "N/A"),
			strOr(data, "courtName", "N/A"))
		return subject, body

	case AlertSignalDetected:
		subject := fmt.Sprintf("External Signal Detected - %s - %s",
			str(data, "platform"), str(data, "distressLevel"))
		body := fmt.Sprintf(`EXTERNAL SIGNAL ALERT

Platform: %s
Distress Level: %s
Urgency Score: %s/100
Summary: %s
URL: %s

Review in admin dashboard for potential outreach.`,
			str(data, "platform"),
			str(data, "distressLevel"),
			str(data, "urgencyScore"),
			str(data, "summary"),
			str(data, "platformUrl"))
		return subject, body

	default:
		return "URGENT ALERT", fmt.Sprintf("%v", data)
	}
}

func str(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func strOr(data map[string]any, key, fallback string) string {
	if s := str(data, key); s != "" {
		return s
	}
	return fallback
}

func joinList(v any) string {
	switch t := v.(type) {
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
