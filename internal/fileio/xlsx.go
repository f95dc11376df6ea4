package fileio

import (
	"io"
	"strings"

	excelize "github.com/xuri/excelize/v2"
)

// readXLSX читает лист "movies" (если есть), иначе первый лист книги.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(name, "movies") {
			sheet = name
			break
		}
	}
	return f.GetRows(sheet)
}
