package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/family-support/backend/internal/errs"
)

// HTTPSender delivers mail and SMS through a Postmark-style HTTP API.
type HTTPSender struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type emailRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

type smsRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func (s HTTPSender) SendEmail(ctx context.Context, from, to, subject, body string) error {
	return s.post(ctx, "/email", emailRequest{From: from, To: to, Subject: subject, TextBody: body})
}

func (s HTTPSender) SendSMS(ctx context.Context, to, message string) error {
	return s.post(ctx, "/sms", smsRequest{To: to, Message: message})
}

func (s HTTPSender) post(ctx context.Context, path string, payload any) error {
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 15 * time.Second}
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return errs.Transport(err, "notification API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errs.Transport(fmt.Errorf("status %d", resp.StatusCode), "notification API error")
	}
	return nil
}
