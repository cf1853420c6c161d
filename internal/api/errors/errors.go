// Пакет errors — конструкторы стандартных ошибок Lookup Service.
// Единый формат: {"error": {"code": "...", "message": "...", "details": [...]}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnknownTable    = "UNKNOWN_TABLE"
	CodeUnknownColumn   = "UNKNOWN_COLUMN"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeStoreError      = "STORE_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteErrorWithDetails(w, statusCode, code, message, nil)
}

// WriteErrorWithDetails — WriteError со списком подробностей
// (например, допустимые столбцы таблицы).
func WriteErrorWithDetails(w http.ResponseWriter, statusCode int, code, message string, details []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// UnknownTable — 404 таблицы нет в каталоге.
func UnknownTable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeUnknownTable, message)
}

// UnknownColumn — 404 столбца нет в таблице; valid — допустимые столбцы.
func UnknownColumn(w http.ResponseWriter, message string, valid []string) {
	WriteErrorWithDetails(w, http.StatusNotFound, CodeUnknownColumn, message, valid)
}

// NotFound — 404 маршрут или ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// StoreError — 502 хранилище недоступно или вернуло ошибку.
func StoreError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadGateway, CodeStoreError, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
