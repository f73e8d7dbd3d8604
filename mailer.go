package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/resend/resend-go/v2"
)

// DefaultMailFrom is the sender identity used when none is configured
const DefaultMailFrom = "Unilink <unilink@softyse.com>"

// ResendMailer delivers email through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
	logger Logger
}

var _ Mailer = (*ResendMailer)(nil)

// NewResendMailer creates a Mailer backed by Resend
func NewResendMailer(apiKey, from string) *ResendMailer {
	if from == "" {
		from = DefaultMailFrom
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the mailer
func (m *ResendMailer) WithLogger(logger Logger) *ResendMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send dispatches a single HTML email
func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to send email").
			WithMetadata(map[string]any{"to": to, "subject": subject})
	}

	m.logger.Debug("email dispatched", "id", sent.Id, "to", to, "subject", subject)
	return nil
}

// LogMailer prints the would-be email instead of sending it. Used in
// development when no Resend key is configured, and as the safe default
// when wiring fails.
type LogMailer struct {
	Logger Logger
}

var _ Mailer = (*LogMailer)(nil)

func (m LogMailer) Send(_ context.Context, to, subject, _ string) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("email suppressed (no mailer configured)", "to", to, "subject", subject)
	return nil
}
