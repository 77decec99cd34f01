// Package audit registra eventos de seguridad (altas, logins, resets) en un
// logger dedicado ("audit"), con los campos del request que ya tenga el ctx.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

type Event string

const (
	EventRegistered      Event = "user.registered"
	EventLogin           Event = "session.login"
	EventLoginFailed     Event = "session.login_failed"
	EventLogout          Event = "session.logout"
	EventProfileUpdated  Event = "user.updated"
	EventProfileDeleted  Event = "user.deleted"
	EventResetRequested  Event = "password.reset_requested"
	EventPasswordChanged Event = "password.reset"
)

// Log escribe el evento. Nunca pasar passwords, hashes ni tokens en fields.
func Log(ctx context.Context, ev Event, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(string(ev), append(fields, zap.String("event", string(ev)))...)
}
