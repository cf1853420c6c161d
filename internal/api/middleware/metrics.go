// metrics.go — Prometheus HTTP метрики для Lookup Service.
// Регистрирует метрики: ls_http_requests_total, ls_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики Lookup Service
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ls_http_requests_total",
			Help: "Общее количество HTTP-запросов к Lookup Service",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ls_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Lookup Service в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Имена таблиц и столбцов заменяются шаблонами
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath заменяет имена таблиц и столбцов на шаблоны:
// /api/v1/tables/teams/rows → /api/v1/tables/{table}/rows
// /api/v1/tables/teams/columns/city/distribution → /api/v1/tables/{table}/columns/{column}/distribution
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/tables", "/api/v1/lookup":
		return path
	}

	const tablesPrefix = "/api/v1/tables/"
	rest, ok := strings.CutPrefix(path, tablesPrefix)
	if !ok {
		return "other"
	}

	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 2 && parts[1] == "rows":
		return tablesPrefix + "{table}/rows"
	case len(parts) == 4 && parts[1] == "columns" && parts[3] == "distribution":
		return tablesPrefix + "{table}/columns/{column}/distribution"
	}
	return "other"
}
