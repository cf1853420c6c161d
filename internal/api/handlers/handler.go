// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет health и бизнес-обработчики, отображает ошибки сервисного
// слоя на HTTP-ответы.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/Divyamm05/chatbot/internal/api/errors"
	"github.com/Divyamm05/chatbot/internal/api/generated"
	"github.com/Divyamm05/chatbot/internal/service"
)

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)

// APIHandler — основной обработчик API Lookup Service.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	health  *HealthHandler
	lookup  *service.LookupService
	catalog *service.CatalogService
	charts  *service.ChartService
	logger  *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	lookup *service.LookupService,
	catalog *service.CatalogService,
	charts *service.ChartService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:  health,
		lookup:  lookup,
		catalog: catalog,
		charts:  charts,
		logger:  logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// ParamErrorHandler — ErrorHandlerFunc для generated.ChiServerOptions:
// ошибки привязки параметров возвращаются как VALIDATION_ERROR.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}

// --- Вспомогательные функции ---

// writeError отображает ошибку сервисного слоя на HTTP-ответ.
// op — описание операции для лога.
func (h *APIHandler) writeError(w http.ResponseWriter, op string, err error) {
	var (
		ute *service.UnknownTableError
		uce *service.UnknownColumnError
	)

	switch {
	case errors.As(err, &ute):
		apierrors.UnknownTable(w, ute.Error())
	case errors.As(err, &uce):
		apierrors.UnknownColumn(w, uce.Error(), uce.Valid)
	case errors.Is(err, service.ErrInvalidRange), errors.Is(err, service.ErrUnsupportedChart):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrStore):
		h.logger.Error("Ошибка хранилища",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		apierrors.StoreError(w, "Ошибка хранилища: "+op)
	default:
		h.logger.Error("Внутренняя ошибка",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка: "+op)
	}
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// intValue разыменовывает необязательный параметр; nil — 0.
func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// strPtr возвращает указатель на непустую строку.
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
