package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cartera-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value suma las muestras de la familia name cuyas etiquetas incluyen want.
func value(t *testing.T, m *Metrics, name string, want map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, metric := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue next
				}
			}
			switch {
			case metric.GetCounter() != nil:
				total += metric.GetCounter().GetValue()
			case metric.GetHistogram() != nil:
				total += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func TestObserveRun(t *testing.T) {
	m := NewMetrics()
	diag := domain.Diagnostics{Records: 120, CoercedValues: 3, ZeroRateConversions: 2}

	m.ObserveRun("modelo_deuda", diag, 2*time.Second, nil)
	m.ObserveRun("modelo_deuda", domain.Diagnostics{}, time.Second, errors.New("boom"))

	assert.Equal(t, 1.0, value(t, m, "cartera_runs_total", map[string]string{"kind": "modelo_deuda", "outcome": "ok"}))
	assert.Equal(t, 1.0, value(t, m, "cartera_runs_total", map[string]string{"kind": "modelo_deuda", "outcome": "error"}))
	assert.Equal(t, 2.0, value(t, m, "cartera_run_duration_seconds", map[string]string{"kind": "modelo_deuda"}))
	assert.Equal(t, 120.0, value(t, m, "cartera_records_total", nil))
	assert.Equal(t, 3.0, value(t, m, "cartera_coerced_values_total", nil))
	assert.Equal(t, 2.0, value(t, m, "cartera_zero_rate_conversions_total", nil))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	for _, path := range []string{"/health", "/health", "/nada"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, value(t, m, "cartera_http_requests_total", map[string]string{"route": "/health", "code": "200"}))
	assert.Equal(t, 1.0, value(t, m, "cartera_http_requests_total", map[string]string{"route": "unknown", "code": "404"}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "cartera_http_request_duration_seconds"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRun("cartera", domain.Diagnostics{Records: 1}, time.Second, nil)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
