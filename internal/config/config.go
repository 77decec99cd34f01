package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Provider struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`
}

func (p Provider) Enabled() bool { return strings.TrimSpace(p.ClientID) != "" }

type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	// Metrics.Addr vacío => /metrics se sirve en el listener principal.
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Storage struct {
		Driver   string `yaml:"driver"` // memory | postgres
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int           `yaml:"max_conns"`
			MinConns        int           `yaml:"min_conns"`
			ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
		// CacheTTL > 0 activa el read-through de perfiles sobre el cache.
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		Secret string        `yaml:"secret"`
		Issuer string        `yaml:"issuer"`
		TTL    time.Duration `yaml:"ttl"`
		Leeway time.Duration `yaml:"leeway"`
	} `yaml:"jwt"`

	Frontend struct {
		RedirectBaseURL string `yaml:"redirect_base_url"`
		ResetPath       string `yaml:"reset_path"`
	} `yaml:"frontend"`

	Auth struct {
		RequireVerifiedEmailForMerge bool          `yaml:"require_verified_email_for_merge"`
		StateTTL                     time.Duration `yaml:"state_ttl"`
		ResetTTL                     time.Duration `yaml:"reset_ttl"`
		BcryptCost                   int           `yaml:"bcrypt_cost"`
	} `yaml:"auth"`

	Rate struct {
		Enabled bool     `yaml:"enabled"`
		Login   RateRule `yaml:"login"`
		Recover RateRule `yaml:"recover"`
	} `yaml:"rate"`

	// SMTP.Host vacío => los mails van al log.
	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path"`
	} `yaml:"security"`

	// ───────── Identity Providers ─────────
	Providers struct {
		Google   Provider `yaml:"google"`
		GitHub   Provider `yaml:"github"`
		Facebook Provider `yaml:"facebook"`
	} `yaml:"providers"`
}

const DevFrontendURL = "http://localhost:5173"

// Load lee el YAML (path vacío = sin archivo), aplica env y defaults.
// No valida: eso es Validate.
func Load(path string) (*Config, error) {
	c := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := c.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := c.revealSecrets(); err != nil {
		return nil, err
	}

	// en dev el frontend por defecto es el vite local
	if c.Frontend.RedirectBaseURL == "" && c.IsDev() {
		c.Frontend.RedirectBaseURL = DevFrontendURL
	}
	c.Frontend.RedirectBaseURL = strings.TrimRight(c.Frontend.RedirectBaseURL, "/")
	return c, nil
}

func defaults() *Config {
	c := &Config{}
	c.App.Env = "dev"
	c.App.LogLevel = "info"
	c.Server.Addr = ":8080"
	c.Server.ShutdownTimeout = 15 * time.Second
	c.Storage.Driver = "memory"
	c.Storage.Postgres.MaxConns = 10
	c.Storage.Postgres.ConnMaxLifetime = 30 * time.Minute
	c.Cache.Kind = "memory"
	c.Cache.Redis.Prefix = "authgate:"
	c.Cache.Memory.DefaultTTL = 2 * time.Minute
	c.JWT.Issuer = "authgate"
	c.JWT.TTL = 2 * time.Hour
	c.JWT.Leeway = 30 * time.Second
	c.Frontend.ResetPath = "/reset-password"
	c.Auth.StateTTL = 10 * time.Minute
	c.Auth.ResetTTL = time.Hour
	c.Auth.BcryptCost = 10
	c.Rate.Enabled = true
	c.Rate.Login = RateRule{Limit: 10, Window: time.Minute}
	c.Rate.Recover = RateRule{Limit: 5, Window: 10 * time.Minute}
	c.SMTP.Port = 587
	c.SMTP.TLS = "auto"
	c.Security.PasswordPolicy.MinLength = 8
	c.Security.PasswordPolicy.RequireUpper = true
	c.Security.PasswordPolicy.RequireLower = true
	c.Security.PasswordPolicy.RequireDigit = true
	c.Security.PasswordPolicy.RequireSymbol = true
	c.Providers.Google.Scopes = []string{"openid", "email", "profile"}
	c.Providers.GitHub.Scopes = []string{"read:user", "user:email"}
	c.Providers.Facebook.Scopes = []string{"email", "public_profile"}
	return c
}

func (c *Config) IsDev() bool { return c.App.Env == "" || c.App.Env == "dev" }

// ResetURL es la página del frontend que recibe ?token=.
func (c *Config) ResetURL() string {
	p := c.Frontend.ResetPath
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return c.Frontend.RedirectBaseURL + p
}

// Validate devuelve todos los valores obligatorios faltantes juntos.
func (c *Config) Validate() error {
	var errs []error
	req := func(ok bool, key string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	req(c.JWT.Secret != "", "jwt.secret")
	if c.JWT.Secret != "" && len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("jwt.secret must be at least 32 bytes"))
	}
	req(c.Frontend.RedirectBaseURL != "", "frontend.redirect_base_url")

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		req(c.Storage.DSN != "", "storage.dsn")
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (memory|postgres)", c.Storage.Driver))
	}

	switch c.Cache.Kind {
	case "memory":
	case "redis":
		req(c.Cache.Redis.Addr != "", "cache.redis.addr")
	default:
		errs = append(errs, fmt.Errorf("cache.kind %q not supported (memory|redis)", c.Cache.Kind))
	}

	for _, np := range []struct {
		name string
		p    Provider
	}{
		{"google", c.Providers.Google},
		{"github", c.Providers.GitHub},
		{"facebook", c.Providers.Facebook},
	} {
		if !np.p.Enabled() {
			continue
		}
		req(np.p.ClientSecret != "", "providers."+np.name+".client_secret")
		req(np.p.RedirectURI != "", "providers."+np.name+".redirect_uri")
	}

	if c.SMTP.Host != "" {
		req(c.SMTP.From != "", "smtp.from")
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("jwt.ttl must be positive"))
	}
	return errors.Join(errs...)
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool, error) {
	if s, ok := getEnvStr(key); ok {
		i, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false, fmt.Errorf("config: %s: %w", key, err)
		}
		return i, true, nil
	}
	return 0, false, nil
}
func getEnvBool(key string) (bool, bool, error) {
	if s, ok := getEnvStr(key); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return false, false, fmt.Errorf("config: %s: %w", key, err)
		}
		return b, true, nil
	}
	return false, false, nil
}
func getEnvDur(key string) (time.Duration, bool, error) {
	if s, ok := getEnvStr(key); ok {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return 0, false, fmt.Errorf("config: %s: %w", key, err)
		}
		return d, true, nil
	}
	return 0, false, nil
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
