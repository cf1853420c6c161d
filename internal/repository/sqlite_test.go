package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// setupSQLite создаёт временную БД SQLite с таблицей teams.
func setupSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	return newSQLiteStore(t,
		`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL, city TEXT)`,
		`INSERT INTO teams (id, name, city) VALUES (1, 'Steel', 'Pittsburgh')`,
		`INSERT INTO teams (id, name, city) VALUES (2, 'Steelers', 'Pittsburgh')`,
		`INSERT INTO teams (id, name, city) VALUES (3, 'Bears', NULL)`,
		`INSERT INTO teams (id, name, city) VALUES (4, '50%_off', 'Nowhere')`,
		`CREATE TABLE schema_migrations (version INTEGER, dirty BOOLEAN)`,
	)
}

// newSQLiteStore создаёт временную БД SQLite и выполняет stmts.
func newSQLiteStore(t *testing.T, stmts ...string) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "lookup.db"))
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	return NewSQLiteStore(db)
}

// acquire берёт сессию и освобождает её по завершении теста.
func acquire(t *testing.T, store Store) Session {
	t.Helper()
	sess, err := store.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(sess.Release)
	return sess
}

func TestSQLite_Tables(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	tables, err := sess.Tables(context.Background())
	if err != nil {
		t.Fatalf("Tables: %v", err)
	}
	// schema_migrations скрыта из каталога
	if len(tables) != 1 || tables[0] != "teams" {
		t.Errorf("tables = %v, ожидался [teams]", tables)
	}
}

func TestSQLite_Columns(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	cols, err := sess.Columns(context.Background(), "teams")
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	want := []string{"id", "name", "city"}
	if len(cols) != len(want) {
		t.Fatalf("cols = %v, ожидался %v", cols, want)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("cols[%d] = %q, ожидался %q", i, cols[i], want[i])
		}
	}

	// Неизвестная таблица — пустой список, а не ошибка
	cols, err = sess.Columns(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Columns(missing): %v", err)
	}
	if len(cols) != 0 {
		t.Errorf("cols = %v, ожидался пустой список", cols)
	}
}

func TestSQLite_SelectExactVsPartial(t *testing.T) {
	sess := acquire(t, setupSQLite(t))
	ctx := context.Background()

	rows, err := sess.Select(ctx, MatchQuery{Table: "teams", Column: "name", Term: "Steel", Exact: true})
	if err != nil {
		t.Fatalf("Select exact: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "Steel" {
		t.Errorf("exact rows = %v, ожидалась одна строка Steel", rows)
	}

	rows, err = sess.Select(ctx, MatchQuery{Table: "teams", Column: "name", Term: "Steel"})
	if err != nil {
		t.Fatalf("Select partial: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("partial rows = %v, ожидались Steel и Steelers", rows)
	}
	// Естественный порядок хранилища
	if rows[0][1] != "Steel" || rows[1][1] != "Steelers" {
		t.Errorf("порядок строк = %v", rows)
	}
}

func TestSQLite_SelectPartialCaseInsensitive(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	rows, err := sess.Select(context.Background(), MatchQuery{Table: "teams", Column: "name", Term: "steel"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %v, поиск подстроки должен быть нечувствителен к регистру", rows)
	}
}

func TestSQLite_SelectExactCaseSensitive(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	rows, err := sess.Select(context.Background(), MatchQuery{Table: "teams", Column: "name", Term: "steel", Exact: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, точный поиск чувствителен к регистру", rows)
	}
}

func TestSQLite_SelectInjectionIsLiteral(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	for _, exact := range []bool{true, false} {
		rows, err := sess.Select(context.Background(), MatchQuery{
			Table: "teams", Column: "name", Term: `' OR '1'='1`, Exact: exact,
		})
		if err != nil {
			t.Fatalf("Select exact=%v: %v", exact, err)
		}
		if len(rows) != 0 {
			t.Errorf("exact=%v: rows = %v, терм должен трактоваться как литерал", exact, rows)
		}
	}
}

func TestSQLite_SelectLikeMetacharsAreLiteral(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	rows, err := sess.Select(context.Background(), MatchQuery{Table: "teams", Column: "name", Term: "%"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "50%_off" {
		t.Errorf("rows = %v, ожидалась только строка с литеральным %%", rows)
	}
}

func TestSQLite_SelectIntegerColumn(t *testing.T) {
	sess := acquire(t, setupSQLite(t))

	rows, err := sess.Select(context.Background(), MatchQuery{Table: "teams", Column: "id", Term: "3", Exact: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v, ожидалась одна строка", rows)
	}
	if rows[0][0] != int64(3) {
		t.Errorf("id = %#v, ожидался int64(3)", rows[0][0])
	}
	if rows[0][2] != nil {
		t.Errorf("city = %#v, ожидался NULL", rows[0][2])
	}
}

func TestSQLite_PageAndValues(t *testing.T) {
	sess := acquire(t, setupSQLite(t))
	ctx := context.Background()

	rows, err := sess.Page(ctx, "teams", 2, 1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if len(rows) != 2 || rows[0][1] != "Steelers" || rows[1][1] != "Bears" {
		t.Errorf("page = %v, ожидались Steelers, Bears", rows)
	}

	values, err := sess.Values(ctx, "teams", "city", 10, 0)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(values) != 4 {
		t.Fatalf("values = %v, ожидалось 4 значения", values)
	}
	if values[0] != "Pittsburgh" || values[2] != nil {
		t.Errorf("values = %v", values)
	}
}

func TestSQLite_ReleaseTwice(t *testing.T) {
	store := setupSQLite(t)
	sess, err := store.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	sess.Release()
	sess.Release()
}

// TestSQLite_GeneratedColumns проверяет, что генерируемые столбцы входят
// в каталог и строки выровнены по списку столбцов.
func TestSQLite_GeneratedColumns(t *testing.T) {
	sess := acquire(t, newSQLiteStore(t,
		`CREATE TABLE people (
			id INTEGER PRIMARY KEY,
			first TEXT,
			last TEXT,
			full TEXT GENERATED ALWAYS AS (first || ' ' || last) VIRTUAL,
			city TEXT,
			initials TEXT GENERATED ALWAYS AS (substr(first, 1, 1) || substr(last, 1, 1)) STORED
		)`,
		`INSERT INTO people (id, first, last, city) VALUES (1, 'Ann', 'Lee', 'Oslo')`,
	))
	ctx := context.Background()

	cols, err := sess.Columns(ctx, "people")
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	want := []string{"id", "first", "last", "full", "city", "initials"}
	if strings.Join(cols, ",") != strings.Join(want, ",") {
		t.Fatalf("cols = %v, ожидался %v", cols, want)
	}

	rows, err := sess.Select(ctx, MatchQuery{Table: "people", Column: "full", Term: "Ann Lee", Exact: true})
	if err != nil {
		t.Fatalf("Select по генерируемому столбцу: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v, ожидалась одна строка", rows)
	}
	if len(rows[0]) != len(cols) {
		t.Fatalf("в строке %d значений, в схеме %d столбцов", len(rows[0]), len(cols))
	}

	m := rows[0].Map(cols)
	if m["full"] != "Ann Lee" || m["city"] != "Oslo" || m["initials"] != "AL" {
		t.Errorf("row = %v, значения не совпадают со столбцами", m)
	}
}

// TestSQLite_SelectExactViewWithoutAffinity проверяет точный поиск по столбцу
// представления без типа: число сравнивается с термом как текст.
func TestSQLite_SelectExactViewWithoutAffinity(t *testing.T) {
	sess := acquire(t, newSQLiteStore(t,
		`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO teams (id, name) VALUES (7, 'Bears')`,
		`CREATE VIEW team_numbers AS SELECT id + 0 AS num, name FROM teams`,
	))

	rows, err := sess.Select(context.Background(), MatchQuery{Table: "team_numbers", Column: "num", Term: "7", Exact: true})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 || rows[0][1] != "Bears" {
		t.Errorf("rows = %v, ожидалась строка Bears", rows)
	}
}

// TestSQLite_SelectPartialASCIIFolding фиксирует, что LIKE в SQLite
// игнорирует регистр только для ASCII (в PostgreSQL ILIKE — для Unicode).
func TestSQLite_SelectPartialASCIIFolding(t *testing.T) {
	sess := acquire(t, newSQLiteStore(t,
		`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`,
		`INSERT INTO teams (id, name) VALUES (1, 'Стил')`,
	))
	ctx := context.Background()

	rows, err := sess.Select(ctx, MatchQuery{Table: "teams", Column: "name", Term: "Стил"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %v, совпадение в том же регистре должно находиться", rows)
	}

	rows, err = sess.Select(ctx, MatchQuery{Table: "teams", Column: "name", Term: "стил"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, кириллица в SQLite сравнивается с учётом регистра", rows)
	}
}
