// Package session orquesta el login (reconciliar + emitir token) y protege
// rutas verificando el token. Logout es stateless: no hay lista de revocación.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/reconcile"
)

// ErrUnauthenticated es lo único que ve el cliente cuando el token no sirve.
var ErrUnauthenticated = errors.New("unauthenticated")

const DefaultTTL = 2 * time.Hour

type Reconciler interface {
	Reconcile(ctx context.Context, id types.Identity) (reconcile.Result, error)
}

type Session struct {
	Profile   *repository.Profile
	Token     string
	ExpiresAt time.Time
	Outcome   reconcile.Outcome
}

type Issuer struct {
	engine Reconciler
	codec  *jwt.Codec
	ttl    time.Duration
}

func NewIssuer(engine Reconciler, codec *jwt.Codec, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{engine: engine, codec: codec, ttl: ttl}
}

// Login reconcilia la identidad y emite un token con el email como claim.
func (i *Issuer) Login(ctx context.Context, id types.Identity) (*Session, error) {
	res, err := i.engine.Reconcile(ctx, id)
	if err != nil {
		metrics.RecordReconcile("error")
		return nil, err
	}
	metrics.RecordReconcile(string(res.Outcome))

	tok, exp, err := i.codec.Issue(res.Profile.ID, map[string]any{"email": res.Profile.Email}, i.ttl)
	if err != nil {
		return nil, fmt.Errorf("session: issue token: %w", err)
	}
	logger.From(ctx).Info("session issued",
		logger.Layer("session"), logger.UserID(res.Profile.ID),
		logger.Provider(id.Provider.String()), logger.Outcome(string(res.Outcome)))
	return &Session{Profile: res.Profile, Token: tok, ExpiresAt: exp, Outcome: res.Outcome}, nil
}

// Logout sólo confirma. El cliente descarta el token.
func (i *Issuer) Logout(ctx context.Context, s Subject) {
	logger.From(ctx).Info("logout", logger.Layer("session"), logger.UserID(s.UserID))
}

// Subject es lo que el guard deja en el contexto del request.
type Subject struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type Guard struct {
	codec *jwt.Codec
}

func NewGuard(codec *jwt.Codec) *Guard { return &Guard{codec: codec} }

// Verify colapsa ErrTokenExpired y ErrTokenInvalid en ErrUnauthenticated.
// La distinción queda en logs y métricas.
func (g *Guard) Verify(ctx context.Context, raw string) (Subject, error) {
	log := logger.From(ctx).With(logger.Layer("session"), logger.Op("guard"))
	if raw == "" {
		metrics.RecordTokenRejection("missing")
		return Subject{}, ErrUnauthenticated
	}
	c, err := g.codec.Verify(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			metrics.RecordTokenRejection("expired")
			log.Info("token expired")
		} else {
			metrics.RecordTokenRejection("invalid")
			log.Warn("token rejected", logger.Err(err))
		}
		return Subject{}, ErrUnauthenticated
	}
	return Subject{UserID: c.Subject, Email: c.Email, ExpiresAt: c.ExpiresAt}, nil
}

type subjectKey struct{}

func WithSubject(ctx context.Context, s Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

func SubjectFrom(ctx context.Context) (Subject, bool) {
	s, ok := ctx.Value(subjectKey{}).(Subject)
	return s, ok
}
