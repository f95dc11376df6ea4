package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery: пустой запрос или только пробелы; разрешение не выполняется.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound: нет уверенного совпадения по названию или ни одного фильма в жанре.
	ErrNotFound = errors.New("not found")
	// ErrNotReady: каталог/матрица ещё строятся или сборка не удалась.
	ErrNotReady = errors.New("service not ready")
	// ErrEmptyCatalog: после фильтрации не осталось ни одной записи.
	ErrEmptyCatalog = errors.New("empty catalog")
)

// DataError describes a source record dropped by the loader.
type DataError struct {
	Row    int // позиция в исходных данных (0-based, после обрезки MaxRows)
	Reason string
}

func (e DataError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Reason) }

// NotFoundError carries did-you-mean candidates for a failed title lookup.
type NotFoundError struct {
	Query       string
	BestScore   int
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no confident match for %q (best score %d)", e.Query, e.BestScore)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
