package mailer

import (
	"context"

	"github.com/lightera/bundokai/pkg/logger"
	gomail "gopkg.in/gomail.v2"
)

// Message is one rendered email ready for transport.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers one message. Implementations decide the transport.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPSender delivers through a plain SMTP server, the transport used in
// production.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	return s.dialer.DialAndSend(m)
}

// DryRunSender logs instead of sending. Used for rehearsal runs against the
// production participant table.
type DryRunSender struct{}

func (DryRunSender) Send(_ context.Context, msg *Message) error {
	logger.Info("dry-run email", "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTMLBody))
	return nil
}
