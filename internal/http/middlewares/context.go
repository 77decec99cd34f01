package middlewares

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey string

const ctxRequestIDKey ctxKey = "request_id"

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto. "" si no hay.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
