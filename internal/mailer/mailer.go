// Package mailer sends outgoing mail through an SMTP provider using an
// app-password credential.
package mailer

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wneessen/go-mail"
)

// Placeholder value shipped in .env examples; the relay refuses to operate
// until it is replaced with a real app password.
const passwordPlaceholder = "your-app-password-here"

// Message is one outgoing email, with an optional file attachment already
// written to a local path.
type Message struct {
	To             string
	From           string
	Subject        string
	Body           string
	AttachmentPath string
	AttachmentName string
}

// Mailer sends a single message, fire-and-forget: no retry, no queue.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer talks to the configured SMTP host.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

// NewFromEnv builds a mailer from SMTP_HOST/SMTP_PORT/SMTP_USERNAME/
// SMTP_APP_PASSWORD. An unset or placeholder password is a configuration
// error; the caller keeps the mailer nil and answers 500 at request time.
func NewFromEnv() (*SMTPMailer, error) {
	password := os.Getenv("SMTP_APP_PASSWORD")
	if password == "" || password == passwordPlaceholder {
		return nil, fmt.Errorf("SMTP_APP_PASSWORD is not configured")
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", p, err)
		}
		port = parsed
	}

	return &SMTPMailer{
		host:     host,
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: password,
	}, nil
}

// Send delivers one message. The sender address doubles as the SMTP username
// when SMTP_USERNAME is unset (the Gmail app-password model).
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	username := m.username
	if username == "" {
		username = msg.From
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(m.password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	email := mail.NewMsg()
	if err := email.From(msg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.AttachmentPath != "" {
		name := msg.AttachmentName
		if name == "" {
			name = "attachment"
		}
		email.AttachFile(msg.AttachmentPath, mail.WithFileName(name))
	}

	if err := client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsAuthError reports whether a send failure looks like an SMTP
// authentication rejection, so the handler can point at the app-password
// setup docs.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "535") ||
		strings.Contains(s, "username and password not accepted") ||
		strings.Contains(s, "authentication failed")
}
