// tables.go — обработчики каталога:
// GET /api/v1/tables и GET /api/v1/tables/{table}/rows.
package handlers

import (
	"net/http"

	"github.com/Divyamm05/chatbot/internal/api/generated"
	"github.com/Divyamm05/chatbot/internal/domain/model"
)

// ListTables — список таблиц каталога со столбцами.
func (h *APIHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.catalog.Tables(r.Context())
	if err != nil {
		h.writeError(w, "чтение каталога", err)
		return
	}

	resp := generated.TablesResponse{Items: make([]generated.TableSchema, 0, len(schemas))}
	for _, s := range schemas {
		resp.Items = append(resp.Items, generated.TableSchema{Table: s.Table, Columns: s.Columns})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTableRows — страница строк таблицы в естественном порядке хранилища.
func (h *APIHandler) GetTableRows(w http.ResponseWriter, r *http.Request, table generated.TableName, params generated.GetTableRowsParams) {
	page, err := h.catalog.Rows(r.Context(), table, intValue(params.Limit), intValue(params.Offset))
	if err != nil {
		h.writeError(w, "чтение строк таблицы", err)
		return
	}

	writeJSON(w, http.StatusOK, generated.RowsResponse{
		Table:   page.Schema.Table,
		Columns: page.Schema.Columns,
		Rows:    rowsToJSON(page.Rows),
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.HasMore,
	})
}

// rowsToJSON конвертирует строки в массивы значений; пустой результат — [].
func rowsToJSON(rows []model.Row) [][]any {
	out := make([][]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, []any(row))
	}
	return out
}
