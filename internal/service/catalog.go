// catalog.go — просмотр каталога хранилища: список таблиц со схемами
// и постраничное чтение строк таблицы.
package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/repository"
)

// Параметры пагинации строк.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// CatalogService — чтение каталога и строк таблиц.
type CatalogService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewCatalogService создаёт сервис каталога.
func NewCatalogService(store repository.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		logger: logger.With(slog.String("component", "catalog_service")),
	}
}

// Tables возвращает схемы всех таблиц каталога в порядке хранилища.
func (s *CatalogService) Tables(ctx context.Context) ([]model.Schema, error) {
	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, storeErr("получение соединения", err)
	}
	defer sess.Release()

	tables, err := sess.Tables(ctx)
	if err != nil {
		return nil, storeErr("чтение каталога", err)
	}

	schemas := make([]model.Schema, 0, len(tables))
	for _, table := range tables {
		cols, err := sess.Columns(ctx, table)
		if err != nil {
			return nil, storeErr("чтение схемы таблицы", err)
		}
		schemas = append(schemas, model.Schema{Table: table, Columns: cols})
	}

	s.logger.Debug("Каталог прочитан", slog.Int("tables", len(schemas)))
	return schemas, nil
}

// Rows возвращает страницу строк таблицы. limit вне [1, MaxPageLimit]
// заменяется значением по умолчанию или максимумом, отрицательный
// offset — нулём.
func (s *CatalogService) Rows(ctx context.Context, table string, limit, offset int) (*model.Page, error) {
	limit, offset = normalizePage(limit, offset)

	sess, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, storeErr("получение соединения", err)
	}
	defer sess.Release()

	schema, err := resolveTable(ctx, sess, table)
	if err != nil {
		return nil, err
	}

	// Запрашиваем на одну строку больше, чтобы определить HasMore
	rows, err := sess.Page(ctx, table, limit+1, offset)
	if err != nil {
		return nil, storeErr("чтение строк", err)
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	return &model.Page{
		Schema:  schema,
		Rows:    rows,
		Limit:   limit,
		Offset:  offset,
		HasMore: hasMore,
	}, nil
}

// normalizePage приводит limit/offset к допустимым значениям.
func normalizePage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// resolveTable сверяет имя таблицы с каталогом (точное сравнение,
// с учётом регистра) и возвращает её схему.
func resolveTable(ctx context.Context, sess repository.Session, table string) (model.Schema, error) {
	tables, err := sess.Tables(ctx)
	if err != nil {
		return model.Schema{}, storeErr("чтение каталога", err)
	}
	if !slices.Contains(tables, table) {
		return model.Schema{}, &UnknownTableError{Table: table}
	}

	cols, err := sess.Columns(ctx, table)
	if err != nil {
		return model.Schema{}, storeErr("чтение схемы таблицы", err)
	}
	return model.Schema{Table: table, Columns: cols}, nil
}

// resolveColumn сверяет таблицу и столбец с каталогом.
func resolveColumn(ctx context.Context, sess repository.Session, table, column string) (model.Schema, error) {
	schema, err := resolveTable(ctx, sess, table)
	if err != nil {
		return model.Schema{}, err
	}
	if !schema.HasColumn(column) {
		return model.Schema{}, &UnknownColumnError{Table: table, Column: column, Valid: schema.Columns}
	}
	return schema, nil
}
