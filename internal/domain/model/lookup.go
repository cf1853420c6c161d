// Пакет model — доменные модели Lookup Service.
package model

import (
	"fmt"
	"strings"
)

// Schema — дескриптор схемы таблицы из каталога хранилища.
// Columns упорядочены так же, как в каталоге.
type Schema struct {
	// Table — имя таблицы
	Table string `json:"table" yaml:"table"`
	// Columns — имена столбцов в порядке каталога
	Columns []string `json:"columns" yaml:"columns"`
}

// HasColumn проверяет, есть ли столбец в схеме (точное сравнение).
func (s Schema) HasColumn(column string) bool {
	for _, c := range s.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Row — строка таблицы: скалярные значения, позиционно выровненные
// по столбцам дескриптора схемы.
type Row []any

// Strings возвращает значения строки в текстовом виде, NULL — как "NULL".
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = FormatValue(v)
	}
	return out
}

// Map сопоставляет значения строки именам столбцов.
func (r Row) Map(columns []string) map[string]any {
	m := make(map[string]any, len(columns))
	for i, c := range columns {
		if i < len(r) {
			m[c] = r[i]
		}
	}
	return m
}

// FormatValue приводит скалярное значение к строке для отображения.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// ResultKind — вариант результата поиска.
type ResultKind string

const (
	// ResultFound — найдена ровно одна строка.
	ResultFound ResultKind = "found"
	// ResultNotFound — совпадений нет.
	ResultNotFound ResultKind = "not_found"
	// ResultAmbiguous — совпадений несколько, требуется уточнение.
	ResultAmbiguous ResultKind = "ambiguous"
)

// LookupResult — результат поиска. Поля заполняются в зависимости от Kind:
//   - found: Row
//   - not_found: Message
//   - ambiguous: Rows, Listing, Instruction, Message
//
// NotFound и Ambiguous — нормальные исходы поиска, а не ошибки.
type LookupResult struct {
	Kind    ResultKind
	Table   string
	Column  string
	Term    string
	Exact   bool
	Columns []string

	Row  Row
	Rows []Row

	// Listing — нумерованный (с 1) список совпадений
	Listing string
	// Instruction — просьба сузить поиск
	Instruction string
	// Message — текст для показа пользователю
	Message string
}

// Page — страница строк таблицы в естественном порядке хранилища.
type Page struct {
	Schema  Schema
	Rows    []Row
	Limit   int
	Offset  int
	HasMore bool
}

// Bucket — количество вхождений одной категории.
type Bucket struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// Distribution — распределение значений столбца по категориям
// для диапазона строк Start..End (с 1, включительно).
type Distribution struct {
	Table   string   `json:"table" yaml:"table"`
	Column  string   `json:"column" yaml:"column"`
	Start   int      `json:"start" yaml:"start"`
	End     int      `json:"end" yaml:"end"`
	Total   int      `json:"total" yaml:"total"`
	Buckets []Bucket `json:"buckets" yaml:"buckets"`
}

// Categories возвращает имена категорий в порядке Buckets.
func (d *Distribution) Categories() []string {
	out := make([]string, len(d.Buckets))
	for i, b := range d.Buckets {
		out[i] = b.Category
	}
	return out
}

// JoinRow склеивает значения строки в порядке столбцов схемы.
func JoinRow(r Row) string {
	return strings.Join(r.Strings(), ", ")
}
