// Пакет service — бизнес-логика Lookup Service.
// lookup.go — поиск строки по значению столбца с учётом неоднозначности:
// ноль совпадений, одно совпадение или список кандидатов для уточнения.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/repository"
)

// Prometheus-метрики поиска.
var (
	lookupTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ls_lookup_total",
		Help: "Общее количество поисковых запросов по исходу.",
	}, []string{"outcome"})
	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ls_lookup_duration_seconds",
		Help:    "Длительность поисковых запросов.",
		Buckets: prometheus.DefBuckets,
	})
)

// Исходы поиска для метрик, помимо model.ResultKind.
const (
	outcomeUnknownTable  = "unknown_table"
	outcomeUnknownColumn = "unknown_column"
	outcomeStoreError    = "store_error"
)

// ambiguousInstruction — завершающая просьба сузить поиск.
const ambiguousInstruction = "Уточните запрос: укажите более точное значение или используйте точное совпадение."

// LookupRequest — параметры поиска.
type LookupRequest struct {
	// Table — имя таблицы (сверяется с каталогом)
	Table string
	// Column — столбец для сравнения (сверяется со схемой таблицы)
	Column string
	// Term — искомое значение
	Term string
	// ExactMatch — точное совпадение; по умолчанию поиск подстроки
	ExactMatch bool
}

// LookupService — поиск строк с распознаванием неоднозначности.
// Состояния между вызовами не хранит; каталог читается заново
// при каждом поиске.
type LookupService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewLookupService создаёт сервис поиска.
func NewLookupService(store repository.Store, logger *slog.Logger) *LookupService {
	return &LookupService{
		store:  store,
		logger: logger.With(slog.String("component", "lookup_service")),
	}
}

// Lookup выполняет поиск. Соединение берётся на время вызова и
// возвращается в пул на любом пути выхода.
//
// Ошибки: *UnknownTableError, *UnknownColumnError, *StoreError.
// Отсутствие совпадений и неоднозначность — не ошибки, а Kind результата.
func (s *LookupService) Lookup(ctx context.Context, req LookupRequest) (*model.LookupResult, error) {
	start := time.Now()

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, s.finish(req, start, nil, storeErr("получение соединения", err))
	}
	defer sess.Release()

	result, err := Lookup(ctx, sess, req)
	return result, s.finish(req, start, result, err)
}

// finish обновляет метрики и пишет debug-лог по итогам поиска.
func (s *LookupService) finish(req LookupRequest, start time.Time, result *model.LookupResult, err error) error {
	duration := time.Since(start)
	lookupDuration.Observe(duration.Seconds())

	outcome := outcomeOf(result, err)
	lookupTotal.WithLabelValues(outcome).Inc()

	attrs := []any{
		slog.String("table", req.Table),
		slog.String("column", req.Column),
		slog.Bool("exact", req.ExactMatch),
		slog.String("outcome", outcome),
		slog.Duration("duration", duration),
	}
	if err != nil {
		if errors.Is(err, ErrStore) {
			s.logger.Error("Ошибка хранилища при поиске", append(attrs, slog.String("error", err.Error()))...)
		} else {
			s.logger.Debug("Поиск отклонён", append(attrs, slog.String("error", err.Error()))...)
		}
		return err
	}

	s.logger.Debug("Поиск выполнен", attrs...)
	return nil
}

// outcomeOf возвращает лейбл исхода для метрик.
func outcomeOf(result *model.LookupResult, err error) string {
	switch {
	case errors.Is(err, ErrUnknownTable):
		return outcomeUnknownTable
	case errors.Is(err, ErrUnknownColumn):
		return outcomeUnknownColumn
	case err != nil:
		return outcomeStoreError
	default:
		return string(result.Kind)
	}
}

// Lookup — поиск в рамках уже взятой сессии.
// Порядок: таблица в каталоге → столбец в схеме → SELECT.
// До успешной проверки обоих идентификаторов запрос к данным не выполняется.
func Lookup(ctx context.Context, sess repository.Session, req LookupRequest) (*model.LookupResult, error) {
	schema, err := resolveColumn(ctx, sess, req.Table, req.Column)
	if err != nil {
		return nil, err
	}

	rows, err := sess.Select(ctx, repository.MatchQuery{
		Table:  req.Table,
		Column: req.Column,
		Term:   req.Term,
		Exact:  req.ExactMatch,
	})
	if err != nil {
		return nil, storeErr("поиск строк", err)
	}

	return classify(req, schema, rows), nil
}

// classify строит результат по количеству совпадений.
func classify(req LookupRequest, schema model.Schema, rows []model.Row) *model.LookupResult {
	result := &model.LookupResult{
		Table:   req.Table,
		Column:  req.Column,
		Term:    req.Term,
		Exact:   req.ExactMatch,
		Columns: schema.Columns,
	}

	switch len(rows) {
	case 0:
		result.Kind = model.ResultNotFound
		result.Message = fmt.Sprintf("По запросу %q в столбце %q таблицы %q ничего не найдено.",
			req.Term, req.Column, req.Table)
	case 1:
		result.Kind = model.ResultFound
		result.Row = rows[0]
	default:
		result.Kind = model.ResultAmbiguous
		result.Rows = rows
		result.Listing = renderListing(rows)
		result.Instruction = ambiguousInstruction
		result.Message = fmt.Sprintf("Найдено совпадений: %d для %q в столбце %q таблицы %q:\n%s\n%s",
			len(rows), req.Term, req.Column, req.Table, result.Listing, result.Instruction)
	}

	return result
}

// renderListing нумерует строки с 1 в порядке хранилища;
// значения строки склеиваются в порядке столбцов схемы.
func renderListing(rows []model.Row) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, model.JoinRow(row))
	}
	return b.String()
}
