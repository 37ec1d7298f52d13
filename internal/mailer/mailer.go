package mailer

import (
	"log/slog"

	internal "github.com/sierrasilva/backoffice/internal"
	"gopkg.in/gomail.v2"
)

// Mailer sends notification emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
	logger   *slog.Logger
}

func NewSMTPMailer(cfg internal.MailConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password),
		from:     cfg.Username,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send email", "error", err, "to", to, "subject", subject)
		return err
	}

	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// DisabledMailer is used when mail is switched off or SMTP credentials are
// missing. Every send is skipped with a warning so the gap stays visible.
type DisabledMailer struct {
	logger *slog.Logger
}

func NewDisabledMailer(logger *slog.Logger) *DisabledMailer {
	return &DisabledMailer{logger: logger}
}

func (m *DisabledMailer) Send(to, subject, htmlBody string) error {
	m.logger.Warn("mail delivery disabled: skipping send", "to", to, "subject", subject)
	return nil
}

// FromConfig picks the SMTP implementation when mail is enabled with
// credentials and the no-op one otherwise.
func FromConfig(cfg internal.MailConfig, logger *slog.Logger) Mailer {
	if !cfg.Enabled || cfg.Username == "" || cfg.Password == "" {
		return NewDisabledMailer(logger)
	}
	return NewSMTPMailer(cfg, logger)
}
