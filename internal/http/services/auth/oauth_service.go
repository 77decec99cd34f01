package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dropDatabas3/authgate/internal/audit"
	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
	tokens "github.com/dropDatabas3/authgate/internal/security/token"
)

// stateRecord es lo que se guarda en cache por cada redirect iniciado.
type stateRecord struct {
	Provider string `json:"provider"`
	Nonce    string `json:"nonce"`
}

func stateKey(state string) string { return "oauth_state:" + tokens.SHA256Base64URL(state) }

func (s *service) BeginOAuth(ctx context.Context, provider string) (string, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return "", err
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.oauth"),
		logger.Op("BeginOAuth"),
		logger.Provider(p.String()),
	)

	rd, err := s.deps.Providers.Redirector(p)
	if err != nil {
		return "", err
	}

	state, err := tokens.GenerateOpaqueToken(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	rec, _ := json.Marshal(stateRecord{Provider: p.String(), Nonce: nonce})
	if err := s.deps.Cache.Set(ctx, stateKey(state), string(rec), s.deps.StateTTL); err != nil {
		log.Error("state store failed", logger.Err(err))
		return "", fmt.Errorf("store state: %w", err)
	}

	u, err := rd.AuthURL(ctx, state, nonce)
	if err != nil {
		_ = s.deps.Cache.Delete(ctx, stateKey(state))
		return "", err
	}
	log.Debug("oauth redirect")
	return u, nil
}

// Callback consume el state (un solo uso), canjea el code y abre sesión.
func (s *service) Callback(ctx context.Context, provider string, in CallbackInput) (string, error) {
	p, err := parseProvider(provider)
	if err != nil {
		return s.failureURL(provider), err
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.oauth"),
		logger.Op("Callback"),
		logger.Provider(p.String()),
	)

	rec, err := s.consumeState(ctx, p, in.State)
	if err != nil {
		log.Warn("oauth state rejected", logger.Err(err))
		metrics.RecordLogin(p.String(), "rejected")
		return s.failureURL(p.String()), err
	}
	if in.Error != "" {
		metrics.RecordLogin(p.String(), "rejected")
		return s.failureURL(p.String()), fmt.Errorf("%w: %s", providers.ErrProviderRejected, in.Error)
	}
	if in.Code == "" {
		metrics.RecordLogin(p.String(), "rejected")
		return s.failureURL(p.String()), providers.ErrMissingProof
	}

	adapter, err := s.deps.Providers.Get(p)
	if err != nil {
		return s.failureURL(p.String()), err
	}
	id, err := adapter.Verify(ctx, providers.Proof{Code: in.Code, Nonce: rec.Nonce})
	if err != nil {
		metrics.RecordLogin(p.String(), "rejected")
		audit.Log(ctx, audit.EventLoginFailed, logger.Provider(p.String()))
		return s.failureURL(p.String()), err
	}
	sess, err := s.deps.Issuer.Login(ctx, id)
	if err != nil {
		metrics.RecordLogin(p.String(), "error")
		return s.failureURL(p.String()), err
	}
	metrics.RecordLogin(p.String(), "success")
	audit.Log(ctx, audit.EventLogin, logger.UserID(sess.Profile.ID), logger.Provider(p.String()), logger.Outcome(string(sess.Outcome)))
	log.Debug("oauth callback ok", logger.UserID(sess.Profile.ID))

	q := url.Values{}
	q.Set("token", sess.Token)
	q.Set("uid", sess.Profile.ID)
	return s.deps.FrontendURL + "/auth/success?" + q.Encode(), nil
}

func (s *service) consumeState(ctx context.Context, p types.Provider, state string) (stateRecord, error) {
	var rec stateRecord
	if state == "" {
		return rec, ErrInvalidState
	}
	raw, err := s.deps.Cache.Take(ctx, stateKey(state))
	if err != nil {
		if cache.IsNotFound(err) {
			return rec, ErrInvalidState
		}
		return rec, fmt.Errorf("take state: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Provider != p.String() {
		return rec, ErrInvalidState
	}
	return rec, nil
}

func (s *service) failureURL(provider string) string {
	q := url.Values{}
	q.Set("error", provider+"-auth-failed")
	return s.deps.FrontendURL + "/login?" + q.Encode()
}
