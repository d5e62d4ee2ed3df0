package services

import (
	"context"
	"os"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailSender is the email delivery boundary. A returned error is a
// terminal failure for that attempt — no retries happen here.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

// ResendEmailSender delivers email through the Resend API.
type ResendEmailSender struct {
	client  *resend.Client
	from    string
	timeout time.Duration
}

func NewResendEmailSender() *ResendEmailSender {
	from := os.Getenv("REMINDER_FROM_EMAIL")
	if from == "" {
		from = "reminders@glowdesk.app"
	}
	return &ResendEmailSender{
		client:  resend.NewClient(os.Getenv("RESEND_API_KEY")),
		from:    from,
		timeout: 10 * time.Second,
	}
}

func (s *ResendEmailSender) SendEmail(ctx context.Context, to, subject, html string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	return err
}
