// Package app arma el grafo de dependencias a partir de la config.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/authgate/internal/cache"
	"github.com/dropDatabas3/authgate/internal/config"
	"github.com/dropDatabas3/authgate/internal/email"
	authctrl "github.com/dropDatabas3/authgate/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/authgate/internal/http/controllers/health"
	userctrl "github.com/dropDatabas3/authgate/internal/http/controllers/user"
	"github.com/dropDatabas3/authgate/internal/http/router"
	authsvc "github.com/dropDatabas3/authgate/internal/http/services/auth"
	usersvc "github.com/dropDatabas3/authgate/internal/http/services/user"
	"github.com/dropDatabas3/authgate/internal/jwt"
	"github.com/dropDatabas3/authgate/internal/metrics"
	"github.com/dropDatabas3/authgate/internal/oauth"
	"github.com/dropDatabas3/authgate/internal/oauth/facebook"
	"github.com/dropDatabas3/authgate/internal/oauth/github"
	"github.com/dropDatabas3/authgate/internal/oauth/google"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/providers"
	"github.com/dropDatabas3/authgate/internal/rate"
	"github.com/dropDatabas3/authgate/internal/reconcile"
	pwd "github.com/dropDatabas3/authgate/internal/security/password"
	"github.com/dropDatabas3/authgate/internal/session"
	"github.com/dropDatabas3/authgate/internal/store"
)

// App es la aplicación cableada.
type App struct {
	Handler http.Handler
	// Metrics es no-nil sólo si hay listener aparte (metrics.addr).
	Metrics http.Handler
	Codec   *jwt.Codec

	closers []func()
}

// Close libera store y cache, en orden inverso.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build asume cfg ya validada.
// Si falla, libera lo ya abierto antes de devolver el error.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	log := logger.L().With(logger.Component("app"))
	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	cc, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.Cache.Memory.DefaultTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	a.closers = append(a.closers, func() { _ = cc.Close() })

	stores, err := store.Open(ctx, store.Config{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxConns:        cfg.Storage.Postgres.MaxConns,
		MinConns:        cfg.Storage.Postgres.MinConns,
		ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		CacheTTL:        cfg.Storage.CacheTTL,
	}, cc, logger.L())
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	a.closers = append(a.closers, stores.Close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if err := metrics.Register(reg); err != nil {
		return nil, err
	}
	if stores.Pool != nil {
		if err := metrics.RegisterPool(reg, stores.Pool); err != nil {
			return nil, err
		}
	}

	codec, err := jwt.NewCodec([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, jwt.WithLeeway(cfg.JWT.Leeway))
	if err != nil {
		return nil, err
	}
	a.Codec = codec

	policy, err := passwordPolicy(cfg)
	if err != nil {
		return nil, err
	}
	hasher := pwd.NewHasher(cfg.Auth.BcryptCost)
	registrar := providers.NewRegistrar(policy, hasher)

	engine := reconcile.NewEngine(stores.Profiles, reconcile.Options{
		RequireVerifiedEmailForMerge: cfg.Auth.RequireVerifiedEmailForMerge,
	})
	issuer := session.NewIssuer(engine, codec, cfg.JWT.TTL)
	guard := session.NewGuard(codec)

	registry := providers.NewRegistry(buildAdapters(cfg, stores, hasher)...)
	log.Info("providers enabled", logger.Any("providers", registry.Enabled()))

	var mailer email.Sender = email.LogSender{}
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPSender(email.SMTPConfig{
			Host:               cfg.SMTP.Host,
			Port:               cfg.SMTP.Port,
			From:               cfg.SMTP.From,
			User:               cfg.SMTP.Username,
			Pass:               cfg.SMTP.Password,
			TLSMode:            cfg.SMTP.TLS,
			InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
		})
	}

	auth := authsvc.New(authsvc.Deps{
		Providers:   registry,
		Registrar:   registrar,
		Enroller:    engine,
		Issuer:      issuer,
		Cache:       cc,
		StateTTL:    cfg.Auth.StateTTL,
		FrontendURL: cfg.Frontend.RedirectBaseURL,
	})
	users := usersvc.New(usersvc.Deps{
		Profiles:  stores.Profiles,
		Registrar: registrar,
		Cache:     cc,
		Mailer:    mailer,
		ResetTTL:  cfg.Auth.ResetTTL,
		ResetURL:  cfg.ResetURL(),
	})

	loginLimiter, recoverLimiter := limiters(cfg, cc)

	deps := router.Deps{
		Auth:           authctrl.NewControllers(auth),
		User:           userctrl.NewControllers(users),
		Health:         healthctrl.NewHealthController(map[string]healthctrl.Pinger{"store": stores.Profiles, "cache": cc}),
		Guard:          guard,
		LoginLimiter:   loginLimiter,
		RecoverLimiter: recoverLimiter,
	}
	if cfg.Metrics.Addr == "" {
		deps.Metrics = metrics.Handler(reg)
	} else {
		a.Metrics = metrics.Handler(reg)
	}
	a.Handler = router.New(deps)
	return a, nil
}

func passwordPolicy(cfg *config.Config) (pwd.Policy, error) {
	pp := cfg.Security.PasswordPolicy
	bl, err := pwd.LoadBlacklist(cfg.Security.PasswordBlacklistPath)
	if err != nil {
		return pwd.Policy{}, fmt.Errorf("password blacklist: %w", err)
	}
	return pwd.Policy{
		MinLength:      pp.MinLength,
		RequireUpper:   pp.RequireUpper,
		RequireLower:   pp.RequireLower,
		RequireDigit:   pp.RequireDigit,
		RequireSpecial: pp.RequireSymbol,
		Blacklist:      bl,
	}, nil
}

func buildAdapters(cfg *config.Config, stores *store.Stores, hasher *pwd.Hasher) []providers.Adapter {
	hc := oauth.NewHTTPClient(nil)
	creds := func(p config.Provider) oauth.Credentials {
		return oauth.Credentials{
			ClientID:     p.ClientID,
			ClientSecret: p.ClientSecret,
			RedirectURL:  p.RedirectURI,
			Scopes:       p.Scopes,
		}
	}

	out := []providers.Adapter{providers.NewPassword(stores.Profiles, hasher)}
	if p := cfg.Providers.Google; p.Enabled() {
		out = append(out, providers.NewGoogle(google.New(creds(p), google.WithHTTPClient(hc))))
	}
	if p := cfg.Providers.GitHub; p.Enabled() {
		out = append(out, providers.NewGitHub(github.New(creds(p), github.DefaultEndpoints, hc)))
	}
	if p := cfg.Providers.Facebook; p.Enabled() {
		out = append(out, providers.NewFacebook(facebook.New(creds(p), facebook.DefaultEndpoints, hc)))
	}
	return out
}

// limiters usa redis si el cache es redis (límites compartidos entre réplicas).
func limiters(cfg *config.Config, cc cache.Client) (rate.Limiter, rate.Limiter) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	if raw, ok := cc.(interface{ Raw() *redis.Client }); ok {
		prefix := cfg.Cache.Redis.Prefix + "rl:"
		return rate.NewRedisLimiter(raw.Raw(), prefix, cfg.Rate.Login.Limit, cfg.Rate.Login.Window),
			rate.NewRedisLimiter(raw.Raw(), prefix, cfg.Rate.Recover.Limit, cfg.Rate.Recover.Window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.Rate.Login.Window),
		rate.NewMemoryLimiter(cfg.Rate.Recover.Limit, cfg.Rate.Recover.Window)
}
