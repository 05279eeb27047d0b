package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cartera-service/internal/config"
	"cartera-service/internal/core/cartera"
	"cartera-service/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AppEnv: "development", MaxUploadMB: 1, JWTSecret: "s3cr3t"}
	router := newRouter(cfg, cartera.NewService(nil), observability.NewMetrics())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP","service":"cartera-service"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trm", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Run-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `cartera_http_requests_total{code="401",route="/api/v1/trm"} 1`)
}

func TestRouterWithoutSecretServesRates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AppEnv: "development", MaxUploadMB: 1}
	router := newRouter(cfg, cartera.NewService(nil), observability.NewMetrics())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/trm", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
