package middlewares

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/authgate/internal/metrics"
)

// WithMetrics instrumenta requests (contador, latencia, inflight). El label
// path es el patrón de chi cuando existe, para no explotar la cardinalidad.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			inflightPath := normalizePath(r.URL.Path)
			metrics.HTTPInflight.WithLabelValues(method, inflightPath).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				metrics.HTTPInflight.WithLabelValues(method, inflightPath).Dec()
				path := inflightPath
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					if p := rctx.RoutePattern(); p != "" {
						path = p
					}
				}
				metrics.HTTPDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
				metrics.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 || uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
