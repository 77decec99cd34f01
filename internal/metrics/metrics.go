// Package metrics define los collectors Prometheus del gateway. Viven en un
// paquete aparte para que http, session y reconcile los usen sin ciclos.
package metrics

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Número total de requests procesadas",
	}, []string{"method", "path", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Latencia de los requests HTTP",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "Requests en vuelo por método y ruta",
	}, []string{"method", "path"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_logins_total",
		Help: "Intentos de login por provider y resultado",
	}, []string{"provider", "result"})

	Reconciles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_reconcile_total",
		Help: "Resultados del motor de reconciliación",
	}, []string{"outcome"}) // created|merged|recovered|error

	TokenRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authgate_token_rejections_total",
		Help: "Tokens rechazados por el guard",
	}, []string{"reason"}) // expired|invalid|missing
)

// Register registra todos los collectors (DefaultRegisterer si reg es nil).
// Duplicados se ignoran para que tests y restarts en caliente no fallen.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		HTTPRequests, HTTPDuration, HTTPInflight, Logins, Reconciles, TokenRejections,
	} {
		if err := registerCollector(reg, c); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPool expone gauges del pool de Postgres.
func RegisterPool(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	if pool == nil {
		return nil
	}
	return registerCollector(reg, newPoolCollector(pool))
}

// Handler devuelve el handler de /metrics para el gatherer dado (default si nil).
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func RecordLogin(provider, result string) {
	Logins.WithLabelValues(provider, result).Inc()
}

func RecordReconcile(outcome string) {
	Reconciles.WithLabelValues(outcome).Inc()
}

func RecordTokenRejection(reason string) {
	TokenRejections.WithLabelValues(reason).Inc()
}

func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return nil
		}
		return err
	}
	return nil
}

type poolCollector struct {
	pool *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newPoolCollector(pool *pgxpool.Pool) *poolCollector {
	return &poolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	if stat == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}
