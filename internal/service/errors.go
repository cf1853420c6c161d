package service

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки сервисного слоя. Проверяются через errors.Is;
// детали — через errors.As на соответствующий тип.
var (
	// ErrUnknownTable — таблицы нет в каталоге хранилища.
	ErrUnknownTable = errors.New("неизвестная таблица")
	// ErrUnknownColumn — столбца нет в таблице.
	ErrUnknownColumn = errors.New("неизвестный столбец")
	// ErrStore — ошибка хранилища (соединение, запрос, сканирование).
	ErrStore = errors.New("ошибка хранилища")
	// ErrInvalidRange — некорректный диапазон строк.
	ErrInvalidRange = errors.New("некорректный диапазон строк")
	// ErrUnsupportedChart — неподдерживаемый тип диаграммы.
	ErrUnsupportedChart = errors.New("тип диаграммы не поддерживается")
)

// UnknownTableError — запрошенной таблицы нет в каталоге.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("таблица %q не найдена в базе данных", e.Table)
}

func (e *UnknownTableError) Is(target error) bool {
	return target == ErrUnknownTable
}

// UnknownColumnError — столбца нет в таблице. Valid — допустимые
// столбцы таблицы в порядке каталога, для подсказки пользователю.
type UnknownColumnError struct {
	Table  string
	Column string
	Valid  []string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("столбец %q не найден в таблице %q, доступные столбцы: %s",
		e.Column, e.Table, strings.Join(e.Valid, ", "))
}

func (e *UnknownColumnError) Is(target error) bool {
	return target == ErrUnknownColumn
}

// StoreError — ошибка хранилища с исходным сообщением.
type StoreError struct {
	// Op — операция, на которой произошла ошибка
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// storeErr оборачивает ошибку репозитория в StoreError.
func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
