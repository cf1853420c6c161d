// lookup.go — обработчик POST /api/v1/lookup.
// Десериализация LookupRequest, валидация, вызов service, сериализация LookupResponse.
// not_found и ambiguous возвращаются со статусом 200.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/Divyamm05/chatbot/internal/api/errors"
	"github.com/Divyamm05/chatbot/internal/api/generated"
	"github.com/Divyamm05/chatbot/internal/api/middleware"
	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/service"
)

// Lookup — поиск строки по значению столбца.
// Авторизация: роль reader или scope lookup:read — на уровне middleware.
func (h *APIHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	var req generated.LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON в теле запроса")
		return
	}
	if req.Table == "" || req.Column == "" {
		apierrors.ValidationError(w, "Поля table и column обязательны")
		return
	}

	exact := false
	if req.ExactMatch != nil {
		exact = *req.ExactMatch
	}

	// Субъект пуст, если аутентификация отключена
	h.logger.Debug("Запрос поиска",
		slog.String("subject", middleware.SubjectFromContext(r.Context())),
		slog.String("table", req.Table),
		slog.String("column", req.Column),
		slog.Bool("exact_match", exact),
	)

	result, err := h.lookup.Lookup(r.Context(), service.LookupRequest{
		Table:      req.Table,
		Column:     req.Column,
		Term:       req.Term,
		ExactMatch: exact,
	})
	if err != nil {
		h.writeError(w, "поиск", err)
		return
	}

	writeJSON(w, http.StatusOK, lookupResultToResponse(result))
}

// lookupResultToResponse конвертирует результат поиска в API-тип.
// Строки отдаются объектами {столбец: значение}.
func lookupResultToResponse(result *model.LookupResult) generated.LookupResponse {
	resp := generated.LookupResponse{
		Kind:        generated.LookupResponseKind(result.Kind),
		Table:       result.Table,
		Column:      result.Column,
		Term:        result.Term,
		ExactMatch:  result.Exact,
		Columns:     result.Columns,
		Listing:     strPtr(result.Listing),
		Instruction: strPtr(result.Instruction),
		Message:     strPtr(result.Message),
	}

	switch result.Kind {
	case model.ResultFound:
		resp.Row = result.Row.Map(result.Columns)
	case model.ResultAmbiguous:
		resp.Candidates = make([]map[string]any, 0, len(result.Rows))
		for _, row := range result.Rows {
			resp.Candidates = append(resp.Candidates, row.Map(result.Columns))
		}
	}

	return resp
}
