// chart.go — обработчик GET /api/v1/tables/{table}/columns/{column}/distribution.
package handlers

import (
	"net/http"

	"github.com/Divyamm05/chatbot/internal/api/generated"
	"github.com/Divyamm05/chatbot/internal/service"
)

// GetDistribution — распределение значений столбца по категориям
// для строк start..end и описание диаграммы (по умолчанию pie).
func (h *APIHandler) GetDistribution(
	w http.ResponseWriter,
	r *http.Request,
	table generated.TableName,
	column generated.ColumnName,
	params generated.GetDistributionParams,
) {
	chart := generated.ChartKindPie
	if params.Chart != nil {
		chart = *params.Chart
	}

	// Тип диаграммы проверяется до обращения к хранилищу
	if err := service.CheckChart(string(chart)); err != nil {
		h.writeError(w, "построение диаграммы", err)
		return
	}

	d, err := h.charts.Distribution(r.Context(), table, column, params.Start, params.End)
	if err != nil {
		h.writeError(w, "построение распределения", err)
		return
	}

	description, err := service.Describe(string(chart), d)
	if err != nil {
		h.writeError(w, "построение диаграммы", err)
		return
	}

	resp := generated.DistributionResponse{
		Table:       d.Table,
		Column:      d.Column,
		Start:       d.Start,
		End:         d.End,
		Total:       d.Total,
		Chart:       chart,
		Buckets:     make([]generated.Bucket, 0, len(d.Buckets)),
		Description: description,
	}
	for _, b := range d.Buckets {
		resp.Buckets = append(resp.Buckets, generated.Bucket{Category: b.Category, Count: b.Count})
	}

	writeJSON(w, http.StatusOK, resp)
}
