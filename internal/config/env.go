package config

import (
	"errors"
	"strings"
	"time"
)

// envSetter acumula errores de parseo para devolverlos juntos.
type envSetter struct {
	errs []error
}

func (e *envSetter) stringVar(key string, dst *string) {
	if v, ok := getEnvStr(key); ok {
		*dst = v
	}
}

func (e *envSetter) intVar(key string, dst *int) {
	v, ok, err := getEnvInt(key)
	if err != nil {
		e.errs = append(e.errs, err)
	} else if ok {
		*dst = v
	}
}

func (e *envSetter) boolVar(key string, dst *bool) {
	v, ok, err := getEnvBool(key)
	if err != nil {
		e.errs = append(e.errs, err)
	} else if ok {
		*dst = v
	}
}

func (e *envSetter) durVar(key string, dst *time.Duration) {
	v, ok, err := getEnvDur(key)
	if err != nil {
		e.errs = append(e.errs, err)
	} else if ok {
		*dst = v
	}
}

func (e *envSetter) csvVar(key string, dst *[]string) {
	if v, ok := getEnvCSV(key); ok {
		*dst = v
	}
}

func (e *envSetter) provider(prefix string, p *Provider) {
	e.stringVar(prefix+"_CLIENT_ID", &p.ClientID)
	e.stringVar(prefix+"_CLIENT_SECRET", &p.ClientSecret)
	e.stringVar(prefix+"_REDIRECT_URI", &p.RedirectURI)
	e.csvVar(prefix+"_SCOPES", &p.Scopes)
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() error {
	e := &envSetter{}

	// APP
	e.stringVar("APP_ENV", &c.App.Env)
	c.App.Env = strings.ToLower(c.App.Env)
	e.stringVar("LOG_LEVEL", &c.App.LogLevel)

	// SERVER
	e.stringVar("SERVER_ADDR", &c.Server.Addr)
	e.stringVar("METRICS_ADDR", &c.Metrics.Addr)

	// STORAGE
	e.stringVar("STORAGE_DRIVER", &c.Storage.Driver)
	e.stringVar("STORAGE_DSN", &c.Storage.DSN)
	e.intVar("POSTGRES_MAX_CONNS", &c.Storage.Postgres.MaxConns)

	// CACHE
	e.stringVar("CACHE_KIND", &c.Cache.Kind)
	e.stringVar("REDIS_ADDR", &c.Cache.Redis.Addr)
	e.stringVar("REDIS_PASSWORD", &c.Cache.Redis.Password)
	e.intVar("REDIS_DB", &c.Cache.Redis.DB)
	e.stringVar("REDIS_PREFIX", &c.Cache.Redis.Prefix)

	// JWT
	e.stringVar("JWT_SECRET", &c.JWT.Secret)
	e.stringVar("JWT_ISSUER", &c.JWT.Issuer)

	// FRONTEND
	e.stringVar("FRONTEND_URL", &c.Frontend.RedirectBaseURL)

	// AUTH
	e.boolVar("AUTH_REQUIRE_VERIFIED_EMAIL_FOR_MERGE", &c.Auth.RequireVerifiedEmailForMerge)
	e.intVar("BCRYPT_COST", &c.Auth.BcryptCost)

	// RATE
	e.boolVar("RATE_ENABLED", &c.Rate.Enabled)
	e.intVar("RATE_LOGIN_LIMIT", &c.Rate.Login.Limit)
	e.intVar("RATE_RECOVER_LIMIT", &c.Rate.Recover.Limit)

	// SMTP
	e.stringVar("SMTP_HOST", &c.SMTP.Host)
	e.intVar("SMTP_PORT", &c.SMTP.Port)
	e.stringVar("SMTP_USERNAME", &c.SMTP.Username)
	e.stringVar("SMTP_PASSWORD", &c.SMTP.Password)
	e.stringVar("SMTP_FROM", &c.SMTP.From)
	e.stringVar("SMTP_TLS", &c.SMTP.TLS)

	// SECURITY
	e.stringVar("SECURITY_PASSWORD_BLACKLIST_PATH", &c.Security.PasswordBlacklistPath)

	// PROVIDERS
	e.provider("GOOGLE", &c.Providers.Google)
	e.provider("GITHUB", &c.Providers.GitHub)
	e.provider("FACEBOOK", &c.Providers.Facebook)

	// TTLs
	e.durVar("JWT_TTL", &c.JWT.TTL)
	e.durVar("AUTH_STATE_TTL", &c.Auth.StateTTL)
	e.durVar("AUTH_RESET_TTL", &c.Auth.ResetTTL)
	e.durVar("STORAGE_CACHE_TTL", &c.Storage.CacheTTL)

	return errors.Join(e.errs...)
}
