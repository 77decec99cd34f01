package email

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"
	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

type SMTPConfig struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
}

type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) message(m Message) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)

	// multipart/alternative (txt + html) cuando hay ambos
	if m.Text != "" {
		msg.SetBody("text/plain", m.Text)
	}
	if m.HTML != "" {
		if m.Text == "" {
			msg.SetBody("text/html", m.HTML)
		} else {
			msg.AddAlternative("text/html", m.HTML)
		}
	}
	return msg
}

func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify, // sólo dev
	}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	}
	return d
}

// Send no respeta cancelación del contexto: go-mail no la soporta.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	log := logger.From(ctx).With(
		logger.Component("email.smtp"),
		zap.String("host", s.cfg.Host),
		zap.Int("port", s.cfg.Port),
		logger.Email(m.To),
	)
	log.Debug("smtp send try", zap.String("tls_mode", s.cfg.TLSMode))

	if err := s.dialer().DialAndSend(s.message(m)); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Info("smtp send ok")
	return nil
}
