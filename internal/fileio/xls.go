package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

// кодировки, в которых пробуем открыть книгу .xls
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

const (
	xlsProbeRows = 50  // по скольким первым строкам определяем ширину
	xlsProbeCols = 256 // Row.LastCol() в старых файлах врёт
)

// xlsWidth: индекс последней непустой колонки +1 среди первых строк листа.
func xlsWidth(sheet *xls.WorkSheet) int {
	width := 1
	for i := 0; i <= int(sheet.MaxRow) && i < xlsProbeRows; i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := xlsProbeCols - 1; j >= width; j-- {
			if normalizeCell(row.Col(j)) != "" {
				width = j + 1
				break
			}
		}
	}
	return width
}

func readXLS(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wb *xls.WorkBook
	lastErr := errors.New("xls: failed to open workbook")
	for _, cs := range xlsCharsets {
		wb, err = xls.OpenReader(bytes.NewReader(b), cs)
		if err == nil && wb != nil {
			break
		}
		if err != nil {
			lastErr = err
		}
	}
	if wb == nil {
		return nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := xlsWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		cols := make([]string, width)
		if row := sheet.Row(i); row != nil {
			for j := 0; j < width; j++ {
				cols[j] = row.Col(j)
			}
		}
		rows = append(rows, cols)
	}
	return rows, nil
}
