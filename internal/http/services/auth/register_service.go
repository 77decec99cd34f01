package auth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/reconcile"
	"github.com/dropDatabas3/authgate/internal/validation"
)

// Register da de alta un perfil password. No emite token: el cliente hace login.
func (s *service) Register(ctx context.Context, in dto.RegisterRequest) (*dto.RegisterResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = types.NormalizeEmail(in.Email)

	var missing []string
	if in.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if in.LastName == "" {
		missing = append(missing, "lastName")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, &FieldsError{Fields: missing}
	}
	if !validation.ValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.ValidAge(in.Age) {
		return nil, ErrInvalidAge
	}

	hash, err := s.deps.Registrar.HashNew(in.Password)
	if err != nil {
		log.Debug("password rejected", logger.Err(err))
		return nil, err
	}

	prof, err := s.deps.Enroller.Enroll(ctx, reconcile.Enrollment{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Age:          in.Age,
	})
	if err != nil {
		log.Debug("enroll failed", logger.Email(in.Email), logger.Err(err))
		return nil, err
	}

	log.Info("user registered", logger.UserID(prof.ID))
	audit.Log(ctx, audit.EventRegistered, logger.UserID(prof.ID), logger.Email(prof.Email))
	return &dto.RegisterResponse{UID: prof.ID, Profile: dto.ProfileFrom(prof)}, nil
}
