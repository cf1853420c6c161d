// Пакет repository — слой доступа к реляционному хранилищу Lookup Service.
// Хранилище рассматривается только через две возможности: интроспекцию
// каталога (таблицы, столбцы таблицы) и параметризованный SELECT.
// Поддерживаются SQLite (database/sql + modernc.org/sqlite) и PostgreSQL (pgx).
// Все запросы — чистый SQL, без ORM.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Divyamm05/chatbot/internal/domain/model"
)

// migrationsTable — служебная таблица golang-migrate, скрыта из каталога.
const migrationsTable = "schema_migrations"

// MatchQuery — параметры поиска строк по значению столбца.
// Table и Column должны быть заранее сверены с каталогом.
type MatchQuery struct {
	Table  string
	Column string
	Term   string
	// Exact — точное совпадение (=) вместо поиска подстроки
	Exact bool
}

// Store — реляционное хранилище. Каждая операция поиска берёт
// собственную сессию (соединение) и обязана её освободить.
type Store interface {
	// Acquire берёт соединение из пула на время одной операции.
	Acquire(ctx context.Context) (Session, error)
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
	// Driver возвращает имя драйвера (sqlite, postgres).
	Driver() string
}

// Session — одно соединение с хранилищем, используемое ровно одной операцией.
type Session interface {
	// Tables возвращает имена таблиц каталога.
	Tables(ctx context.Context) ([]string, error)
	// Columns возвращает столбцы таблицы в порядке каталога.
	Columns(ctx context.Context, table string) ([]string, error)
	// Select возвращает строки, где столбец совпадает с термом,
	// в естественном порядке хранилища. Терм передаётся только
	// связанным параметром.
	Select(ctx context.Context, q MatchQuery) ([]model.Row, error)
	// Page возвращает строки таблицы с limit/offset.
	Page(ctx context.Context, table string, limit, offset int) ([]model.Row, error)
	// Values возвращает значения одного столбца с limit/offset.
	Values(ctx context.Context, table, column string, limit, offset int) ([]any, error)
	// Release возвращает соединение в пул. Повторный вызов безопасен.
	Release()
}

// dialect — различия SQL между хранилищами.
type dialect struct {
	// quoteIdent экранирует идентификатор (таблица, столбец)
	quoteIdent func(name string) string
	// placeholder возвращает n-й связанный параметр (с 1)
	placeholder func(n int) string
	// textExpr приводит столбец к тексту для сравнения
	textExpr func(column string) string
	// likeOp — оператор поиска подстроки без учёта регистра
	likeOp string
}

// buildMatchQuery строит SELECT для поиска по столбцу.
// Идентификаторы подставляются в текст запроса только после проверки
// по каталогу (на уровне сервиса) и всегда экранируются; терм — только
// через связанный параметр.
func buildMatchQuery(d dialect, q MatchQuery) (query string, args []any) {
	table := d.quoteIdent(q.Table)
	column := d.textExpr(d.quoteIdent(q.Column))

	if q.Exact {
		query = fmt.Sprintf(`SELECT * FROM %s WHERE %s = %s`, table, column, d.placeholder(1))
	} else {
		query = fmt.Sprintf(`SELECT * FROM %s WHERE %s %s %s ESCAPE '\'`, table, column, d.likeOp, d.placeholder(1))
	}
	return query, []any{MatchValue(q.Term, q.Exact)}
}

// buildPageQuery строит SELECT всех столбцов с LIMIT/OFFSET.
func buildPageQuery(d dialect, table string) string {
	return fmt.Sprintf(`SELECT * FROM %s LIMIT %s OFFSET %s`,
		d.quoteIdent(table), d.placeholder(1), d.placeholder(2))
}

// buildValuesQuery строит SELECT одного столбца с LIMIT/OFFSET.
func buildValuesQuery(d dialect, table, column string) string {
	return fmt.Sprintf(`SELECT %s FROM %s LIMIT %s OFFSET %s`,
		d.quoteIdent(column), d.quoteIdent(table), d.placeholder(1), d.placeholder(2))
}

// MatchValue возвращает значение связанного параметра:
// при точном совпадении — терм как есть, иначе — терм с экранированными
// метасимволами LIKE, обёрнутый в %...%.
func MatchValue(term string, exact bool) string {
	if exact {
		return term
	}
	return "%" + escapeLike(term) + "%"
}

// likeEscaper экранирует метасимволы LIKE (escape-символ — обратный слэш).
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike делает терм литеральной подстрокой для LIKE ... ESCAPE '\'.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// normalizeValue приводит значение драйвера к скаляру строки.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
