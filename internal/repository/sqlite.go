package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Divyamm05/chatbot/internal/domain/model"
)

// sqliteDialect — SQLite: ? параметры, идентификаторы в двойных кавычках,
// сравнение по тексту столбца (CAST), LIKE нечувствителен к регистру
// только для ASCII.
var sqliteDialect = dialect{
	quoteIdent: func(name string) string {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	},
	placeholder: func(int) string { return "?" },
	textExpr:    func(column string) string { return "CAST(" + column + " AS TEXT)" },
	likeOp:      "LIKE",
}

// SQLiteStore — хранилище поверх файла SQLite (*sql.DB, драйвер modernc.org/sqlite).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore создаёт хранилище над открытым *sql.DB.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Driver возвращает имя драйвера.
func (s *SQLiteStore) Driver() string { return "sqlite" }

// Ping проверяет доступность файла БД.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Acquire берёт выделенное соединение из пула database/sql.
func (s *SQLiteStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения соединения SQLite: %w", err)
	}
	return &sqliteSession{conn: conn}, nil
}

// sqliteSession — сессия поверх *sql.Conn.
type sqliteSession struct {
	conn *sql.Conn
}

func (s *sqliteSession) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite\_%' ESCAPE '\' AND name != ?
		ORDER BY name`

	return s.queryStrings(ctx, "ошибка чтения каталога таблиц", query, migrationsTable)
}

func (s *sqliteSession) Columns(ctx context.Context, table string) ([]string, error) {
	// table_xinfo включает генерируемые столбцы (hidden 2, 3), которые
	// возвращает SELECT *; hidden 1 — скрытые столбцы виртуальных таблиц.
	query := `SELECT name FROM pragma_table_xinfo(?) WHERE hidden IN (0, 2, 3) ORDER BY cid`

	return s.queryStrings(ctx, "ошибка чтения столбцов таблицы", query, table)
}

func (s *sqliteSession) Select(ctx context.Context, q MatchQuery) ([]model.Row, error) {
	query, args := buildMatchQuery(sqliteDialect, q)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска строк: %w", err)
	}
	return scanRows(rows)
}

func (s *sqliteSession) Page(ctx context.Context, table string, limit, offset int) ([]model.Row, error) {
	rows, err := s.conn.QueryContext(ctx, buildPageQuery(sqliteDialect, table), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк таблицы: %w", err)
	}
	return scanRows(rows)
}

func (s *sqliteSession) Values(ctx context.Context, table, column string, limit, offset int) ([]any, error) {
	rows, err := s.conn.QueryContext(ctx, buildValuesQuery(sqliteDialect, table, column), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения значений столбца: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("ошибка сканирования значения: %w", err)
		}
		result = append(result, normalizeValue(v))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации значений: %w", err)
	}
	return result, nil
}

// Release возвращает соединение в пул database/sql.
func (s *sqliteSession) Release() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// queryStrings выполняет запрос с одним текстовым столбцом в результате.
func (s *sqliteSession) queryStrings(ctx context.Context, errMsg, query string, args ...any) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", errMsg, err)
		}
		result = append(result, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return result, nil
}

// scanRows читает все строки результата в model.Row, закрывая rows.
func scanRows(rows *sql.Rows) ([]model.Row, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения столбцов результата: %w", err)
	}

	var result []model.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		row := make(model.Row, len(values))
		for i, v := range values {
			row[i] = normalizeValue(v)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}
