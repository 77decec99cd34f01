// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// Pinger lo implementan el store de perfiles y el cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController maneja /healthz (vivo) y /readyz (dependencias OK).
type HealthController struct {
	checks  map[string]Pinger
	timeout time.Duration
}

func NewHealthController(checks map[string]Pinger) *HealthController {
	return &HealthController{checks: checks, timeout: 2 * time.Second}
}

func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Readyz devuelve 503 si alguna dependencia no responde.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	sort.Strings(names)

	res := dto.HealthResponse{Status: "ready", Components: map[string]string{}}
	status := http.StatusOK
	for _, n := range names {
		if err := c.checks[n].Ping(ctx); err != nil {
			log.Warn("dependency not ready", logger.Component(n), logger.Err(err))
			res.Components[n] = "unavailable"
			res.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Components[n] = "ok"
	}
	helpers.WriteJSON(w, status, res)
}
