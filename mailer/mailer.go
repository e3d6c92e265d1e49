package mailer

import (
	"context"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Message struct {
	From     string
	To       string
	Subject  string
	Text     string
	HTML     string
	FromName string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer delivers over SMTP with mandatory STARTTLS.
type SMTPMailer struct {
	dialer *mail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return &SMTPMailer{dialer: d}
}

func buildMessage(msg Message) *mail.Message {
	m := mail.NewMessage()
	if msg.FromName != "" {
		m.SetAddressHeader("From", msg.From, msg.FromName)
	} else {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(buildMessage(msg)); err != nil {
		return errors.Wrapf(err, "could not send mail to %s", msg.To)
	}
	return nil
}

// LogMailer is used when no SMTP host is configured. It never logs the body,
// which carries the one-time code.
type LogMailer struct {
	Logger *zap.Logger
}

func (l LogMailer) Send(_ context.Context, msg Message) error {
	l.Logger.Info("mail delivery skipped, no smtp host configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
