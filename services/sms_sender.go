package services

import (
	"context"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSSender is the SMS delivery boundary. A returned error is a terminal
// failure for that attempt — no retries happen here.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// TwilioSMSSender delivers SMS through the Twilio API.
type TwilioSMSSender struct {
	client  *twilio.RestClient
	from    string
	timeout time.Duration
}

func NewTwilioSMSSender() *TwilioSMSSender {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioSMSSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from:    os.Getenv("TWILIO_PHONE_NUMBER"),
		timeout: 10 * time.Second,
	}
}

func (s *TwilioSMSSender) SendSMS(ctx context.Context, to, body string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// CreateMessage has no context-aware variant; run it in a goroutine so
	// a stalled provider call cannot hold up the whole reminder pass.
	done := make(chan error, 1)
	go func() {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(to)
		params.SetFrom(s.from)
		params.SetBody(body)

		_, err := s.client.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
