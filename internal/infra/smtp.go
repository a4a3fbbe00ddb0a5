package infra

import (
	"bytes"
	"errors"
	"fmt"
	"net/smtp"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("mailer: SMTP host not configured")

// Attachment is an in-memory file attached to an outgoing email.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Mailer wraps SMTP configuration for sending HTML emails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendHTML sends one HTML message to all recipients.
func (m *Mailer) SendHTML(to []string, subject, body string, attachments ...Attachment) error {
	if m.host == "" {
		return ErrMailerDisabled
	}
	e := m.compose(to, subject, body)
	for _, a := range attachments {
		if _, err := e.Attach(bytes.NewReader(a.Data), a.Filename, a.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", a.Filename, err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}

func (m *Mailer) compose(to []string, subject, body string) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.HTML = []byte(body)
	return e
}
