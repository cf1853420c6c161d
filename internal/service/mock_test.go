package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/Divyamm05/chatbot/internal/domain/model"
	"github.com/Divyamm05/chatbot/internal/repository"
)

// testLogger — logger без вывода.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock store ---

// mockStore — мок repository.Store. Считает выданные и освобождённые сессии.
type mockStore struct {
	sess       *mockSession
	acquireErr error
	acquired   int
}

func (m *mockStore) Acquire(context.Context) (repository.Session, error) {
	if m.acquireErr != nil {
		return nil, m.acquireErr
	}
	m.acquired++
	return m.sess, nil
}

func (m *mockStore) Ping(context.Context) error { return nil }
func (m *mockStore) Driver() string             { return "mock" }

// mockSession — мок repository.Session с фиксированным каталогом.
// Записывает вызовы Select/Page/Values для проверки порядка операций.
type mockSession struct {
	tables  []string
	columns map[string][]string
	rows    []model.Row
	values  []any

	tablesErr  error
	columnsErr error
	selectErr  error
	valuesErr  error

	selects  []repository.MatchQuery
	pages    [][2]int
	valuesAt [][2]int
	released int
}

func (m *mockSession) Tables(context.Context) ([]string, error) {
	return m.tables, m.tablesErr
}

func (m *mockSession) Columns(_ context.Context, table string) ([]string, error) {
	return m.columns[table], m.columnsErr
}

func (m *mockSession) Select(_ context.Context, q repository.MatchQuery) ([]model.Row, error) {
	m.selects = append(m.selects, q)
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	return m.rows, nil
}

func (m *mockSession) Page(_ context.Context, _ string, limit, offset int) ([]model.Row, error) {
	m.pages = append(m.pages, [2]int{limit, offset})
	if offset >= len(m.rows) {
		return nil, nil
	}
	end := min(offset+limit, len(m.rows))
	return m.rows[offset:end], nil
}

func (m *mockSession) Values(_ context.Context, _, _ string, limit, offset int) ([]any, error) {
	m.valuesAt = append(m.valuesAt, [2]int{limit, offset})
	if m.valuesErr != nil {
		return nil, m.valuesErr
	}
	if offset >= len(m.values) {
		return nil, nil
	}
	end := min(offset+limit, len(m.values))
	return m.values[offset:end], nil
}

func (m *mockSession) Release() { m.released++ }

// teamsSession — каталог с таблицей teams(id, name, city).
func teamsSession(rows ...model.Row) *mockSession {
	return &mockSession{
		tables:  []string{"teams", "user_details"},
		columns: map[string][]string{"teams": {"id", "name", "city"}},
		rows:    rows,
	}
}
