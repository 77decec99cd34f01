package auth

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/audit"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/session"
)

// Logout no revoca nada: los tokens son stateless.
func (s *service) Logout(ctx context.Context, subj session.Subject) dto.MessageResponse {
	s.deps.Issuer.Logout(ctx, subj)
	audit.Log(ctx, audit.EventLogout, logger.UserID(subj.UserID))
	return dto.MessageResponse{Message: "Sesión cerrada. Descartá el token en el cliente."}
}
