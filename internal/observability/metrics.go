// Package observability expone métricas Prometheus de la API HTTP y de los lotes.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"cartera-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics reúne las métricas del servicio en un registro propio.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	recordsTotal    *prometheus.CounterVec
	coercedTotal    *prometheus.CounterVec
	zeroRateTotal   prometheus.Counter
}

// NewMetrics crea el registro con todos los colectores.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cartera_http_requests_total",
			Help: "Solicitudes HTTP por ruta y código.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cartera_http_request_duration_seconds",
			Help:    "Duración de las solicitudes HTTP por ruta.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cartera_runs_total",
			Help: "Ejecuciones por tipo y resultado.",
		}, []string{"kind", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cartera_run_duration_seconds",
			Help:    "Duración de las ejecuciones por tipo.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cartera_records_total",
			Help: "Registros de entrada procesados por tipo.",
		}, []string{"kind"}),
		coercedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cartera_coerced_values_total",
			Help: "Valores no numéricos leídos como cero, por tipo.",
		}, []string{"kind"}),
		zeroRateTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cartera_zero_rate_conversions_total",
			Help: "Registros en divisa convertidos con TRM en cero o ausente.",
		}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.runsTotal, m.runDuration,
		m.recordsTotal, m.coercedTotal, m.zeroRateTotal,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler devuelve el handler de /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry expone el registro.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware cuenta solicitudes y latencia por ruta.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveRun registra el resultado de una ejecución.
func (m *Metrics) ObserveRun(kind string, diag domain.Diagnostics, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.runsTotal.WithLabelValues(kind, outcome).Inc()
	m.runDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	m.recordsTotal.WithLabelValues(kind).Add(float64(diag.Records))
	m.coercedTotal.WithLabelValues(kind).Add(float64(diag.CoercedValues))
	m.zeroRateTotal.Add(float64(diag.ZeroRateConversions))
}
