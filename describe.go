package sheetcalc

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable summary of a workbook: each sheet
// with its extent and cell counts, every formula with its stored text,
// and the number of cells awaiting recomputation. Useful for debugging
// workbook state during development.
func Describe(w *Workbook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %d sheets\n", len(w.order))
	for _, name := range w.order {
		describeSheet(&b, w.sheets[name], name)
	}
	if dirty := len(w.DirtyCells()); dirty > 0 {
		fmt.Fprintf(&b, "Dirty: %d cells\n", dirty)
	}
	return b.String()
}

func describeSheet(b *strings.Builder, s *Sheet, name string) {
	rows, cols := s.Bounds()
	if rows == 0 {
		fmt.Fprintf(b, "%s (empty)\n", name)
		return
	}
	formulas := formulaCells(s)
	fmt.Fprintf(b, "%s!A1:%s (%d cells, %d formulas)\n",
		name, cellAxis(rows-1, cols-1), len(s.cells), len(formulas))
	if len(formulas) == 0 {
		return
	}
	b.WriteString("  Formulas:\n")
	for _, fc := range formulas {
		ref := NewCellRef("", fc.row, fc.col)
		fmt.Fprintf(b, "    %s: %s\n", ref.CellName(), fc.raw)
	}
}
