package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Divyamm05/chatbot/internal/database"
)

// setupDB создаёт файл SQLite с таблицей teams и возвращает путь к нему.
func setupDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookup.db")

	db, err := database.OpenSQLite(context.Background(), path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL, city TEXT)`,
		`INSERT INTO teams (id, name, city) VALUES (1, 'Steel', 'Pittsburgh')`,
		`INSERT INTO teams (id, name, city) VALUES (2, 'Steelers', 'Pittsburgh')`,
		`INSERT INTO teams (id, name, city) VALUES (3, 'Bears', 'Chicago')`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

// run выполняет lookupctl с аргументами и возвращает stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestLookupCmd_Text(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, "--db", db, "lookup", "teams", "name", "Steel", "--exact")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	for _, want := range []string{"id: 1\n", "name: Steel\n", "city: Pittsburgh\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("вывод %q не содержит %q", out, want)
		}
	}

	out, err = run(t, "--db", db, "lookup", "teams", "name", "steel")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !strings.Contains(out, "1. 1, Steel, Pittsburgh") || !strings.Contains(out, "2. 2, Steelers, Pittsburgh") {
		t.Errorf("ожидался нумерованный список, вывод: %q", out)
	}
}

func TestLookupCmd_JSON(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, "--db", db, "-o", "json", "lookup", "teams", "city", "Boston")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	var view lookupView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("некорректный JSON %q: %v", out, err)
	}
	if view.Kind != "not_found" || view.Message == "" {
		t.Errorf("view = %+v", view)
	}
}

func TestLookupCmd_Errors(t *testing.T) {
	db := setupDB(t)

	if _, err := run(t, "--db", db, "lookup", "players", "name", "x"); err == nil {
		t.Error("ожидалась ошибка для неизвестной таблицы")
	}
	if _, err := run(t, "--db", db, "lookup", "teams", "coach", "x"); err == nil {
		t.Error("ожидалась ошибка для неизвестного столбца")
	}
	if _, err := run(t, "--db", filepath.Join(t.TempDir(), "missing.db"), "tables"); err == nil {
		t.Error("ожидалась ошибка для отсутствующего файла")
	}
	if _, err := run(t, "--db", db, "-o", "xml", "tables"); err == nil {
		t.Error("ожидалась ошибка для неизвестного формата")
	}
}

func TestTablesCmd_YAML(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, "--db", db, "-o", "yaml", "tables")
	if err != nil {
		t.Fatalf("tables: %v", err)
	}

	var schemas []struct {
		Table   string   `yaml:"table"`
		Columns []string `yaml:"columns"`
	}
	if err := yaml.Unmarshal([]byte(out), &schemas); err != nil {
		t.Fatalf("некорректный YAML %q: %v", out, err)
	}
	if len(schemas) != 1 || schemas[0].Table != "teams" || len(schemas[0].Columns) != 3 {
		t.Errorf("schemas = %+v", schemas)
	}
}

func TestRowsCmd(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, "--db", db, "rows", "teams", "--limit", "2")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("ожидались заголовок, 2 строки и подсказка, вывод: %q", out)
	}
	if lines[0] != "id, name, city" || !strings.Contains(lines[3], "--offset 2") {
		t.Errorf("вывод: %q", out)
	}
}

func TestChartCmd(t *testing.T) {
	db := setupDB(t)

	out, err := run(t, "--db", db, "chart", "teams", "city", "--start", "1", "--end", "3", "--kind", "bar")
	if err != nil {
		t.Fatalf("chart: %v", err)
	}
	if !strings.Contains(out, "Категории: Pittsburgh, Chicago") {
		t.Errorf("вывод %q: ожидались категории по убыванию", out)
	}
	if !strings.Contains(out, "Столбчатая диаграмма") {
		t.Errorf("вывод %q: ожидалось описание bar", out)
	}

	if _, err := run(t, "--db", db, "chart", "teams", "city", "--kind", "scatter"); err == nil {
		t.Error("ожидалась ошибка для неизвестного типа диаграммы")
	}
	if _, err := run(t, "--db", db, "chart", "teams", "city", "--start", "3", "--end", "1"); err == nil {
		t.Error("ожидалась ошибка для пустого диапазона")
	}
}
