package templates

import "github.com/family-support/backend/internal/models"

// Supportive outreach messages, ordered by escalating distress. Index 0 is
// the default, 1 is used for MEDIUM signals, 2 for URGENT.
var Supportive = [3]string{
	`Hi there, I came across your post and wanted to reach out. Going through family court without a solicitor can feel incredibly overwhelming, and you're not alone in this experience.

Many parents find themselves navigating the system alone, unsure of where to turn. If you're looking for general guidance on the court process or emotional support during this difficult time, this confidential help page may be useful: {{supportLink}}

Wishing you strength and clarity.`,

	`Hello, I read your message and my heart goes out to you. The family court process can be daunting, especially when you're representing yourself.

There are resources available that can help you understand your options and provide support. This page offers confidential guidance for parents in similar situations: {{supportLink}}

Take care of yourself.`,

	`Hi, I noticed your post about your court situation. It takes courage to reach out and share what you're going through.

If you need general information about court processes or would like to connect with support services, this resource might help: {{supportLink}}

You're doing better than you think.`,
}

// SupportiveFor picks the outreach template for a distress level.
func SupportiveFor(level models.DistressLevel) string {
	switch level {
	case models.DistressMedium:
		return Supportive[1]
	case models.DistressUrgent:
		return Supportive[2]
	default:
		return Supportive[0]
	}
}

// Seed returns the built-in email template catalog. The store loads these on
// startup so operators can deactivate or override individual templates.
func Seed() []models.EmailTemplate {
	return []models.EmailTemplate{
		{
			Name:    "welcome-after-intake",
			Subject: "We received your request",
			Body: `Hello,

Thank you for reaching out. We have received your {{serviceType}} request and a member of our team will be in touch shortly.

Your reference: {{intakeId}}

Family Support Team`,
			Active: true,
		},
		{
			Name:    "urgent-intake-followup",
			Subject: "Your urgent request - next steps",
			Body: `Hello,

We noticed your situation may be time sensitive. If you have a hearing coming up ({{hearingDate}}), please reply to this email or call us so we can prioritise your case.

Family Support Team`,
			Active: true,
		},
		{
			Name:    "booking-confirmation",
			Subject: "Your session is confirmed",
			Body: `Hello,

Your {{serviceType}} session is confirmed for {{scheduledAt}} ({{duration}} minutes).

Family Support Team`,
			Active: true,
		},
		{
			Name:    "booking-reminder",
			Subject: "Reminder: your session is tomorrow",
			Body: `Hello,

A reminder that your session is scheduled for {{scheduledAt}}. If you need to reschedule, please let us know as soon as possible.

Family Support Team`,
			Active: true,
		},
		{
			Name:    "referral-thank-you",
			Subject: "Thank you for your referral",
			Body: `Hello,

Thank you for referring {{clientName}} to us. We will reach out to them shortly.

Family Support Team`,
			Active: true,
		},
		{
			Name:    "referral-invitation",
			Subject: "You have been referred to Family Support",
			Body: `Hello,

Someone who cares about you thought we might be able to help with {{serviceRequested}}. You can find out more and book a confidential conversation here: {{supportLink}}

Family Support Team`,
			Active: true,
		},
	}
}
