// chart.go — распределение значений столбца по категориям для диапазона
// строк и его текстовое описание (круговая или столбчатая диаграмма).
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/repository"
)

// Типы диаграмм.
const (
	ChartPie = "pie"
	ChartBar = "bar"
)

// ChartService — распределения значений с кэшированием.
type ChartService struct {
	store  repository.Store
	cache  *ChartCache
	logger *slog.Logger
}

// NewChartService создаёт сервис распределений.
func NewChartService(store repository.Store, cache *ChartCache, logger *slog.Logger) *ChartService {
	return &ChartService{
		store:  store,
		cache:  cache,
		logger: logger.With(slog.String("component", "chart_service")),
	}
}

// Distribution подсчитывает вхождения каждого значения столбца в строках
// start..end (с 1, включительно, в естественном порядке хранилища).
// Если строк меньше, чем end, учитываются только имеющиеся.
// NULL не образует категорию и не входит в Total.
func (s *ChartService) Distribution(ctx context.Context, table, column string, start, end int) (*model.Distribution, error) {
	if start < 1 || end < start {
		return nil, fmt.Errorf("%w: start=%d, end=%d", ErrInvalidRange, start, end)
	}

	key := distributionKey(table, column, start, end)
	if d, ok := s.cache.Get(key); ok {
		s.logger.Debug("Кэш hit для распределения", slog.String("key", key))
		return d, nil
	}

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, storeErr("получение соединения", err)
	}
	defer sess.Release()

	if _, err := resolveColumn(ctx, sess, table, column); err != nil {
		return nil, err
	}

	values, err := sess.Values(ctx, table, column, end-start+1, start-1)
	if err != nil {
		return nil, storeErr("чтение значений столбца", err)
	}

	buckets, total := countBuckets(values)
	d := &model.Distribution{
		Table:   table,
		Column:  column,
		Start:   start,
		End:     end,
		Total:   total,
		Buckets: buckets,
	}
	s.cache.Set(key, d)

	s.logger.Debug("Распределение построено",
		slog.String("table", table),
		slog.String("column", column),
		slog.Int("total", d.Total),
		slog.Int("categories", len(d.Buckets)),
	)
	return d, nil
}

// countBuckets считает категории, пропуская NULL, и возвращает их вместе
// с числом учтённых значений. Порядок: по убыванию количества,
// при равенстве — по первому появлению.
func countBuckets(values []any) ([]model.Bucket, int) {
	index := make(map[string]int)
	buckets := make([]model.Bucket, 0)
	total := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		total++
		category := model.FormatValue(v)
		if i, ok := index[category]; ok {
			buckets[i].Count++
			continue
		}
		index[category] = len(buckets)
		buckets = append(buckets, model.Bucket{Category: category, Count: 1})
	}

	slices.SortStableFunc(buckets, func(a, b model.Bucket) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return buckets, total
}

// Describe возвращает текстовое описание распределения для типа диаграммы.
func Describe(kind string, d *model.Distribution) (string, error) {
	var parts []string
	switch kind {
	case ChartPie:
		for _, b := range d.Buckets {
			parts = append(parts, fmt.Sprintf("%s: %.1f%% (%d/%d)",
				b.Category, percent(b.Count, d.Total), b.Count, d.Total))
		}
		return describe("Круговая диаграмма: ", parts), nil
	case ChartBar:
		for _, b := range d.Buckets {
			parts = append(parts, fmt.Sprintf("%s: %d", b.Category, b.Count))
		}
		return describe("Столбчатая диаграмма: значения по категориям: ", parts), nil
	default:
		return "", CheckChart(kind)
	}
}

// CheckChart проверяет, поддерживается ли тип диаграммы.
func CheckChart(kind string) error {
	switch kind {
	case ChartPie, ChartBar:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedChart, kind)
	}
}

func describe(prefix string, parts []string) string {
	if len(parts) == 0 {
		return prefix + "нет данных"
	}
	return prefix + strings.Join(parts, ", ")
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) * 100 / float64(total)
}
