package auth

import (
	"context"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
)

// Login es el login por email+password.
func (s *service) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	return s.ProviderLogin(ctx, types.ProviderPassword.String(), dto.ProviderLoginRequest{
		Email:    in.Email,
		Password: in.Password,
	})
}

// ProviderLogin verifica la prueba con el adapter y abre sesión.
func (s *service) ProviderLogin(ctx context.Context, provider string, in dto.ProviderLoginRequest) (*dto.LoginResponse, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return nil, err
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("ProviderLogin"),
		logger.Provider(p.String()),
	)

	adapter, err := s.deps.Providers.Get(p)
	if err != nil {
		return nil, err
	}

	id, err := adapter.Verify(ctx, providers.Proof{
		Email:       in.Email,
		Password:    in.Password,
		Code:        in.Code,
		IDToken:     in.IDToken,
		AccessToken: in.AccessToken,
		Nonce:       in.Nonce,
	})
	if err != nil {
		metrics.RecordLogin(p.String(), "rejected")
		log.Debug("identity verification failed", logger.Err(err))
		audit.Log(ctx, audit.EventLoginFailed, logger.Provider(p.String()), logger.Email(in.Email))
		return nil, err
	}

	sess, err := s.deps.Issuer.Login(ctx, id)
	if err != nil {
		metrics.RecordLogin(p.String(), "error")
		log.Warn("session login failed", logger.Email(id.Email), logger.Err(err))
		return nil, err
	}
	metrics.RecordLogin(p.String(), "success")
	audit.Log(ctx, audit.EventLogin, logger.UserID(sess.Profile.ID), logger.Provider(p.String()), logger.Outcome(string(sess.Outcome)))
	return loginResponse(sess), nil
}
