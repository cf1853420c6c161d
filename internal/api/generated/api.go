// Пакет generated — типы и маршрутизация API по контракту
// internal/api/openapi/openapi.yaml в формате oapi-codegen chi-server:
// ServerInterface, обёртка с привязкой параметров и HandlerFromMux.
package generated

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// --- Параметры ---

// TableName — имя таблицы в пути.
type TableName = string

// ColumnName — имя столбца в пути.
type ColumnName = string

// GetTableRowsParams — query-параметры GET /api/v1/tables/{table}/rows.
type GetTableRowsParams struct {
	Limit  *int `form:"limit,omitempty" json:"limit,omitempty"`
	Offset *int `form:"offset,omitempty" json:"offset,omitempty"`
}

// ChartKind — тип диаграммы.
type ChartKind string

// Допустимые значения ChartKind.
const (
	ChartKindPie ChartKind = "pie"
	ChartKindBar ChartKind = "bar"
)

// GetDistributionParams — query-параметры GET .../distribution.
type GetDistributionParams struct {
	Start int        `form:"start" json:"start"`
	End   int        `form:"end" json:"end"`
	Chart *ChartKind `form:"chart,omitempty" json:"chart,omitempty"`
}

// --- Тела запросов и ответов ---

// LookupRequest — тело POST /api/v1/lookup.
type LookupRequest struct {
	Table      string `json:"table"`
	Column     string `json:"column"`
	Term       string `json:"term"`
	ExactMatch *bool  `json:"exact_match,omitempty"`
}

// LookupResponseKind — вариант результата поиска.
type LookupResponseKind string

// LookupResponse — результат поиска.
type LookupResponse struct {
	Kind        LookupResponseKind `json:"kind"`
	Table       string             `json:"table"`
	Column      string             `json:"column"`
	Term        string             `json:"term"`
	ExactMatch  bool               `json:"exact_match"`
	Columns     []string           `json:"columns"`
	Row         map[string]any     `json:"row,omitempty"`
	Candidates  []map[string]any   `json:"candidates,omitempty"`
	Listing     *string            `json:"listing,omitempty"`
	Instruction *string            `json:"instruction,omitempty"`
	Message     *string            `json:"message,omitempty"`
}

// TableSchema — таблица и её столбцы.
type TableSchema struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
}

// TablesResponse — ответ GET /api/v1/tables.
type TablesResponse struct {
	Items []TableSchema `json:"items"`
}

// RowsResponse — ответ GET /api/v1/tables/{table}/rows.
type RowsResponse struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
	HasMore bool     `json:"has_more"`
}

// Bucket — количество вхождений категории.
type Bucket struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DistributionResponse — ответ GET .../distribution.
type DistributionResponse struct {
	Table       string    `json:"table"`
	Column      string    `json:"column"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	Total       int       `json:"total"`
	Chart       ChartKind `json:"chart"`
	Buckets     []Bucket  `json:"buckets"`
	Description string    `json:"description"`
}

// --- Серверный интерфейс ---

// ServerInterface — обработчики всех операций контракта.
type ServerInterface interface {
	// (GET /health/live)
	HealthLive(w http.ResponseWriter, r *http.Request)
	// (GET /health/ready)
	HealthReady(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/tables)
	ListTables(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/tables/{table}/rows)
	GetTableRows(w http.ResponseWriter, r *http.Request, table TableName, params GetTableRowsParams)
	// (POST /api/v1/lookup)
	Lookup(w http.ResponseWriter, r *http.Request)
	// (GET /api/v1/tables/{table}/columns/{column}/distribution)
	GetDistribution(w http.ResponseWriter, r *http.Request, table TableName, column ColumnName, params GetDistributionParams)
}

// MiddlewareFunc — middleware отдельной операции.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper привязывает параметры запроса и вызывает ServerInterface.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// HealthLive — обёртка операции healthLive.
func (siw *ServerInterfaceWrapper) HealthLive(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.HealthLive))
}

// HealthReady — обёртка операции healthReady.
func (siw *ServerInterfaceWrapper) HealthReady(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.HealthReady))
}

// GetMetrics — обёртка операции getMetrics.
func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.GetMetrics))
}

// ListTables — обёртка операции listTables.
func (siw *ServerInterfaceWrapper) ListTables(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.ListTables))
}

// GetTableRows — обёртка операции getTableRows.
func (siw *ServerInterfaceWrapper) GetTableRows(w http.ResponseWriter, r *http.Request) {
	var table TableName
	if err := bindPath("table", chi.URLParam(r, "table"), &table); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	var params GetTableRowsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", r.URL.Query(), &params.Offset); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "offset", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetTableRows(w, r, table, params)
	}))
}

// Lookup — обёртка операции lookup.
func (siw *ServerInterfaceWrapper) Lookup(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.Lookup))
}

// GetDistribution — обёртка операции getDistribution.
func (siw *ServerInterfaceWrapper) GetDistribution(w http.ResponseWriter, r *http.Request) {
	var table TableName
	if err := bindPath("table", chi.URLParam(r, "table"), &table); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	var column ColumnName
	if err := bindPath("column", chi.URLParam(r, "column"), &column); err != nil {
		siw.ErrorHandlerFunc(w, r, err)
		return
	}

	var params GetDistributionParams
	query := r.URL.Query()
	if !query.Has("start") {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "start"})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "start", query, &params.Start); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "start", Err: err})
		return
	}
	if !query.Has("end") {
		siw.ErrorHandlerFunc(w, r, &RequiredParamError{ParamName: "end"})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "end", query, &params.End); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "end", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "chart", query, &params.Chart); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "chart", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetDistribution(w, r, table, column, params)
	}))
}

// serve применяет middleware операции и вызывает обработчик.
func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, handler http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// bindPath привязывает обязательный path-параметр (стиль simple).
func bindPath(name, value string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, value, dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return &InvalidParamFormatError{ParamName: name, Err: err}
	}
	return nil
}

// --- Ошибки привязки параметров ---

// InvalidParamFormatError — параметр не удалось разобрать.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("некорректный формат параметра %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// RequiredParamError — отсутствует обязательный параметр.
type RequiredParamError struct {
	ParamName string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("параметр %q обязателен", e.ParamName)
}

// --- Маршрутизация ---

// ChiServerOptions — параметры построения роутера.
type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux регистрирует маршруты на существующем роутере.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{BaseRouter: r})
}

// HandlerWithOptions регистрирует маршруты с указанными параметрами.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/live", wrapper.HealthLive)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/ready", wrapper.HealthReady)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.GetMetrics)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/tables", wrapper.ListTables)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/tables/{table}/rows", wrapper.GetTableRows)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/v1/lookup", wrapper.Lookup)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/tables/{table}/columns/{column}/distribution", wrapper.GetDistribution)
	})

	return r
}
