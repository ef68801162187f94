package sheetcalc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// cellAxis builds the 1-based A1 axis for 0-based coordinates.
func cellAxis(row, col int) string {
	return ColToName(col) + strconv.Itoa(row+1)
}

// LoadXLSX reads an xlsx workbook into a new Workbook. Cells carrying a
// stored formula register as formulas; excelize keeps formula text
// without the leading "=", so it is restored here. Everything else goes
// through the usual literal typing. Options pass through to the
// workbook.
func LoadXLSX(path string, opts ...Option) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()

	w := NewWorkbook(opts...)
	for _, name := range f.GetSheetList() {
		s, err := w.AddSheet(name)
		if err != nil {
			return nil, err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		for rowIdx, row := range rows {
			for colIdx, cellVal := range row {
				formula, err := f.GetCellFormula(name, cellAxis(rowIdx, colIdx))
				if err == nil && formula != "" {
					s.SetCell(rowIdx, colIdx, "="+formula)
					continue
				}
				if cellVal != "" {
					s.SetCell(rowIdx, colIdx, cellVal)
				}
			}
		}
	}
	return w, nil
}

// SaveXLSX writes the workbook to an xlsx file. Formula cells store
// their formula text, literal cells their typed value. Sheet names pass
// through SafeSheetName; the default Sheet1 of a fresh file is dropped
// unless a sheet claims that name.
func SaveXLSX(w *Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	names := w.SheetNames()
	for _, name := range names {
		s := w.Sheet(name)
		safe := SafeSheetName(name)
		if _, err := f.NewSheet(safe); err != nil {
			return fmt.Errorf("create sheet %q: %w", safe, err)
		}
		var outErr error
		s.EachCell(func(row, col int, raw string) {
			if outErr != nil {
				return
			}
			axis := cellAxis(row, col)
			if s.IsFormula(row, col) {
				text := strings.TrimPrefix(strings.TrimSpace(raw), "=")
				outErr = f.SetCellFormula(safe, axis, text)
				return
			}
			outErr = setXLSXValue(f, safe, axis, s.Value(row, col))
		})
		if outErr != nil {
			return fmt.Errorf("write sheet %q: %w", safe, outErr)
		}
	}

	if len(names) > 0 && !hasDefaultSheet(names) {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

func hasDefaultSheet(names []string) bool {
	for _, name := range names {
		if SafeSheetName(name) == "Sheet1" {
			return true
		}
	}
	return false
}

func setXLSXValue(f *excelize.File, sheet, axis string, v Value) error {
	switch v.Kind {
	case KindNumber:
		return f.SetCellValue(sheet, axis, v.Num)
	case KindBool:
		return f.SetCellValue(sheet, axis, v.Bool)
	case KindText:
		return f.SetCellValue(sheet, axis, v.Str)
	}
	return nil
}
