package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/authgate/internal/domain/types"
	"github.com/dropDatabas3/authgate/internal/http/errors"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
	"github.com/dropDatabas3/authgate/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey: clave por IP.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r)
}

// LoginRateKey: ip|path|email. El email sale del body JSON (si hay) para
// frenar fuerza bruta sobre una cuenta desde muchas IPs detrás del mismo NAT
// sin bloquear al resto.
func LoginRateKey(r *http.Request) string {
	email := types.NormalizeEmail(extractJSONField(r, "email", 4096))
	if email == "" {
		email = "-"
	}
	return clientIP(r) + "|" + r.URL.Path + "|" + email
}

// extractJSONField lee hasta max bytes del body para sacar un campo y repone el body.
func extractJSONField(r *http.Request, field string, max int64) string {
	if r.Method != http.MethodPost || r.Body == nil ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, max)
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(buf.Bytes()), rest), rest}

	var tmp map[string]any
	if err := json.Unmarshal(buf.Bytes(), &tmp); err == nil {
		if s, ok := tmp[field].(string); ok {
			return s
		}
	}
	return ""
}

type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc
	// Scope se antepone a la clave para separar límites entre grupos de rutas.
	Scope string
}

// WithRateLimit limita requests por clave. Si el limiter falla se deja pasar.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPOnlyRateKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)
			if cfg.Scope != "" {
				key = cfg.Scope + "|" + key
			}
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Op("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
