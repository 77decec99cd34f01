package logger

import (
	"strings"

	"go.uber.org/zap"
)

// ---- HTTP ----

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// ---- Negocio ----

func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func Provider(v string) zap.Field { return zap.String("provider", v) }
func Outcome(v string) zap.Field  { return zap.String("outcome", v) }

// Email loguea el email enmascarado ("ab***@dominio"). Nunca el valor completo.
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

// MaskEmail deja los dos primeros caracteres del local-part y el dominio.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	local, domain := email[:at], email[at+1:]
	if len(local) > 2 {
		local = local[:2]
	}
	return local + "***@" + domain
}

// ---- Sistema ----

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
