package mailer

import (
	"github.com/khetbazaar/estate-admin-api/internal/config"
	"github.com/khetbazaar/estate-admin-api/internal/logger"
	"gopkg.in/gomail.v2"
)

// Sender delivers a single plain-text email.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a configured SMTP server using gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a Sender for the given mail configuration.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers one message synchronously.
func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return s.dialer.DialAndSend(m)
}

// NopSender discards mail. Used when no SMTP server is configured.
type NopSender struct{}

// Send implements Sender and does nothing.
func (NopSender) Send(to, subject, body string) error {
	return nil
}

// Dispatcher sends mail in the background with no delivery guarantee:
// failures are logged and never retried, and callers are not notified.
// Callers must not assume the message arrived.
type Dispatcher struct {
	sender Sender
	log    *logger.Logger
}

// NewDispatcher creates a Dispatcher around the given sender.
func NewDispatcher(sender Sender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log}
}

// Dispatch queues one message for best-effort background delivery and
// returns immediately.
func (d *Dispatcher) Dispatch(to, subject, body string) {
	go func() {
		if err := d.sender.Send(to, subject, body); err != nil {
			if d.log != nil {
				d.log.Error("Failed to send email", err, map[string]interface{}{
					"to":      to,
					"subject": subject,
				})
			}
			return
		}
		if d.log != nil {
			d.log.Info("Email sent", map[string]interface{}{
				"to":      to,
				"subject": subject,
			})
		}
	}()
}
