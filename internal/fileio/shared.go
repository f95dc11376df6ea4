package fileio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadAnyMaps выбирает парсер по расширению (.csv/.xls/.xlsx) и возвращает строки
// как срез map[заголовок]значение. headerRow: строка заголовков, 1-based.
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = readXLSX(r)
	case ".xls":
		rows, err = readXLS(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported file: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return toMaps(rows, headerRow), nil
}

// ReadFile opens path and parses it with ReadAnyMaps.
func ReadFile(path string, headerRow int) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAnyMaps(f, path, headerRow)
}

// toMaps: строки после заголовка → map по именам колонок. Пустые строки и
// повторы шапки (склеенные выгрузки) пропускаются.
func toMaps(rows [][]string, headerRow int) []map[string]string {
	if len(rows) == 0 {
		return nil
	}
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	headers := headerNames(rows[idx])

	out := make([]map[string]string, 0, len(rows)-idx-1)
	for _, rec := range rows[idx+1:] {
		m := make(map[string]string, len(headers))
		empty, repeat := true, len(rec) > 0
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			m[h] = v
			if v != "" {
				empty = false
			}
			if c < len(rec) && !strings.EqualFold(v, normalizeCell(rows[idx][c])) {
				repeat = false
			}
		}
		if empty || repeat {
			continue
		}
		out = append(out, m)
	}
	return out
}

// headerNames: пустые заголовки → "Column N", повторяющиеся получают суффикс " (2)", " (3)"...
func headerNames(row []string) []string {
	out := make([]string, len(row))
	seen := make(map[string]int, len(row))
	for i, v := range row {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		if n := seen[v]; n > 0 {
			seen[v] = n + 1
			v = fmt.Sprintf("%s (%d)", v, n+1)
		} else {
			seen[v] = 1
		}
		out[i] = v
	}
	return out
}

// normalizeCell: NBSP → пробел, обрезка; BOM и "\x00"-хвосты из старых xls убираются.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\uFEFF", "", "\x00", "").Replace(s)
	return strings.TrimSpace(s)
}
