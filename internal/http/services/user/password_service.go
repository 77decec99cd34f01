package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/email"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	tokens "github.com/dropDatabas3/authgate/internal/security/token"
)

func resetKey(token string) string { return "pwd_reset:" + tokens.SHA256Base64URL(token) }

// Recover guarda el hash de un token opaco y manda el link por mail. Un email
// inexistente o una falla de envío devuelven nil igual.
func (s *service) Recover(ctx context.Context, in dto.RecoverPasswordRequest) error {
	addr := types.NormalizeEmail(in.Email)
	if addr == "" {
		return ErrMissingFields
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.password"),
		logger.Op("Recover"),
		logger.Email(addr),
	)

	p, err := s.deps.Profiles.FindByEmail(ctx, addr)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("recover for unknown email")
			return nil
		}
		return err
	}

	tok, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.deps.Cache.Set(ctx, resetKey(tok), p.ID, s.deps.ResetTTL); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	audit.Log(ctx, audit.EventResetRequested, logger.UserID(p.ID))

	msg, err := email.ResetMessage(email.ResetVars{
		Email: p.Email,
		Link:  resetLink(s.deps.ResetURL, tok),
		TTL:   s.deps.ResetTTL.String(),
	})
	if err != nil {
		return fmt.Errorf("render reset mail: %w", err)
	}
	if err := s.deps.Mailer.Send(ctx, msg); err != nil {
		log.Error("reset mail not sent", logger.Err(err))
		return nil
	}
	log.Info("reset mail sent", logger.UserID(p.ID))
	return nil
}

// Reset consume el token y setea la nueva password (con la política).
func (s *service) Reset(ctx context.Context, in dto.ResetPasswordRequest) error {
	in.Token = strings.TrimSpace(in.Token)
	if in.Token == "" || in.NewPassword == "" {
		return ErrMissingFields
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("user.password"),
		logger.Op("Reset"),
	)

	// la política va antes de consumir el token, así un 422 no lo quema
	hash, err := s.deps.Registrar.HashNew(in.NewPassword)
	if err != nil {
		return err
	}

	uid, err := s.deps.Cache.Take(ctx, resetKey(in.Token))
	if err != nil {
		if cache.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("take reset token: %w", err)
	}

	now := s.deps.Now().UTC()
	if _, err := s.deps.Profiles.Update(ctx, uid, repository.ProfilePatch{
		PasswordHash: &hash,
		UpdatedAt:    &now,
	}); err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidResetToken
		}
		return err
	}
	log.Info("password reset", logger.UserID(uid))
	audit.Log(ctx, audit.EventPasswordChanged, logger.UserID(uid))
	return nil
}
