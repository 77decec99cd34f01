// Package email envía los correos transaccionales del gateway (hoy sólo el
// link de reset de password). SMTP en producción, log en desarrollo.
package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender no envía nada: deja el mensaje en el log (nivel debug para el cuerpo).
type LogSender struct{}

func (LogSender) Send(ctx context.Context, m Message) error {
	log := logger.From(ctx).With(logger.Component("email.log"))
	log.Info("email not sent (log sender)", logger.Email(m.To), zap.String("subject", m.Subject))
	log.Debug("email body", zap.String("text", m.Text))
	return nil
}
