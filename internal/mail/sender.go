package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/tbourn/resume-gate/internal/config"
)

// SMTPSender delivers messages through an authenticated SMTP relay
// (smtp.gmail.com:587 with an app password by default).
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a sender for cfg. STARTTLS is negotiated when the
// server offers it; port 465 switches to implicit TLS.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.User,
	}
}

// NewSender returns an SMTPSender when credentials are configured and a
// NopSender otherwise.
func NewSender(cfg config.MailConfig) Sender {
	if !cfg.Enabled() {
		log.Warn().Msg("EMAIL_USER/EMAIL_PASS not set; notifications disabled")
		return NopSender{}
	}
	return NewSMTPSender(cfg)
}

// Send dials the relay, delivers m and hangs up. gomail has no context
// support, so ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.To == "" {
		return errors.New("mail: empty recipient")
	}

	gm := gomail.NewMessage()
	gm.SetAddressHeader("From", s.from, m.FromName)
	gm.SetHeader("To", m.To)
	if m.ReplyTo != "" {
		gm.SetHeader("Reply-To", m.ReplyTo)
	}
	gm.SetHeader("Subject", m.Subject)

	switch {
	case m.Text != "" && m.HTML != "":
		gm.SetBody("text/plain", m.Text)
		gm.AddAlternative("text/html", m.HTML)
	case m.HTML != "":
		gm.SetBody("text/html", m.HTML)
	default:
		gm.SetBody("text/plain", m.Text)
	}

	for _, a := range m.Attachments {
		settings := []gomail.FileSetting{gomail.Rename(a.Filename)}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {a.ContentType},
			}))
		}
		gm.Attach(a.Path, settings...)
	}

	if err := s.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send to %s: %w", s.dialer.Host, err)
	}
	return nil
}

// NopSender drops every message and reports ErrNotConfigured.
type NopSender struct{}

// Send logs the skipped message.
func (NopSender) Send(_ context.Context, m Message) error {
	log.Warn().Str("subject", m.Subject).Msg("mail not configured; message skipped")
	return ErrNotConfigured
}
