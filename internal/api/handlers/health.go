// health.go — обработчики health endpoints Lookup Service.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (хранилище доступно)
// /metrics — Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Divyamm05/chatbot/internal/config"
)

// serviceName — имя сервиса в ответах health.
const serviceName = "lookup-service"

// Статусы health check.
const (
	statusOK   = "ok"
	statusFail = "fail"
)

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "fail") и сообщение.
	CheckReady() (status, message string)
}

// DependencyReporter — текущее состояние внешних зависимостей (topologymetrics).
type DependencyReporter interface {
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	storeChecker ReadinessChecker
	deps         DependencyReporter
	promHandler  http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// storeChecker — проверка хранилища (может быть nil — readiness вернёт "fail").
func NewHealthHandler(storeChecker ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		storeChecker: storeChecker,
		promHandler:  promhttp.Handler(),
	}
}

// WithDependencies добавляет в readiness состояние зависимостей.
// На статус readiness оно не влияет.
func (h *HealthHandler) WithDependencies(deps DependencyReporter) *HealthHandler {
	h.deps = deps
	return h
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status       string          `json:"status"`
	Timestamp    string          `json:"timestamp"`
	Version      string          `json:"version"`
	Service      string          `json:"service"`
	Dependencies map[string]bool `json:"dependencies,omitempty"`
	Checks       struct {
		Store healthCheckResult `json:"store"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. Проверяет хранилище.
// Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}

	if h.storeChecker != nil {
		status, msg := h.storeChecker.CheckReady()
		resp.Checks.Store = healthCheckResult{Status: status, Message: msg}
	} else {
		resp.Checks.Store = healthCheckResult{Status: statusFail, Message: "не инициализировано"}
	}
	resp.Status = resp.Checks.Store.Status
	if h.deps != nil {
		resp.Dependencies = h.deps.Health()
	}

	status := http.StatusOK
	if resp.Status == statusFail {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
