package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Divyamm05/chatbot/internal/domain/model"
)

// postgresDialect — PostgreSQL: $n параметры, pgx.Identifier для имён,
// сравнение по тексту столбца (CAST), ILIKE для подстроки.
var postgresDialect = dialect{
	quoteIdent: func(name string) string {
		return pgx.Identifier{name}.Sanitize()
	},
	placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	textExpr:    func(column string) string { return "CAST(" + column + " AS TEXT)" },
	likeOp:      "ILIKE",
}

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется *pgxpool.Conn, *pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore — хранилище поверх пула pgxpool.
// Каталог — information_schema текущей схемы (current_schema()).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore создаёт хранилище над пулом подключений.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Driver возвращает имя драйвера.
func (s *PostgresStore) Driver() string { return "postgres" }

// Ping проверяет подключение к PostgreSQL.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Acquire берёт соединение из пула; возвращается в пул через Release.
func (s *PostgresStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения соединения PostgreSQL: %w", err)
	}
	return &postgresSession{conn: conn, db: conn}, nil
}

// postgresSession — сессия поверх одного соединения пула.
type postgresSession struct {
	conn *pgxpool.Conn
	db   DBTX
}

func (s *postgresSession) Tables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_type IN ('BASE TABLE', 'VIEW')
		  AND table_name <> $1
		ORDER BY table_name`

	return s.queryStrings(ctx, "ошибка чтения каталога таблиц", query, migrationsTable)
}

func (s *postgresSession) Columns(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`

	return s.queryStrings(ctx, "ошибка чтения столбцов таблицы", query, table)
}

func (s *postgresSession) Select(ctx context.Context, q MatchQuery) ([]model.Row, error) {
	query, args := buildMatchQuery(postgresDialect, q)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска строк: %w", err)
	}
	return collectRows(rows)
}

func (s *postgresSession) Page(ctx context.Context, table string, limit, offset int) ([]model.Row, error) {
	rows, err := s.db.Query(ctx, buildPageQuery(postgresDialect, table), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения строк таблицы: %w", err)
	}
	return collectRows(rows)
}

func (s *postgresSession) Values(ctx context.Context, table, column string, limit, offset int) ([]any, error) {
	rows, err := s.db.Query(ctx, buildValuesQuery(postgresDialect, table, column), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения значений столбца: %w", err)
	}
	collected, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	result := make([]any, 0, len(collected))
	for _, row := range collected {
		result = append(result, row[0])
	}
	return result, nil
}

// Release возвращает соединение в пул.
func (s *postgresSession) Release() {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
}

// queryStrings выполняет запрос с одним текстовым столбцом в результате.
func (s *postgresSession) queryStrings(ctx context.Context, errMsg, query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}

	result, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return result, nil
}

// collectRows читает все строки результата через rows.Values().
func collectRows(rows pgx.Rows) ([]model.Row, error) {
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Row, error) {
		values, err := row.Values()
		if err != nil {
			return nil, err
		}
		out := make(model.Row, len(values))
		for i, v := range values {
			out[i] = normalizeValue(v)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования строк: %w", err)
	}
	return result, nil
}
