package sheetcalc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// cell is one stored sheet cell: the raw text as entered, the typed
// value for literals, and the parsed tree for formulas.
type cell struct {
	raw    string
	value  Value
	parsed *Parsed
}

// Sheet is one named grid of cells inside a Workbook. Cell addressing
// is 0-based throughout the API; only formula text uses 1-based A1
// notation.
type Sheet struct {
	book  *Workbook
	name  string
	cells map[CellKey]*cell // bare "row:col" keys, sheet implied
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// SetCell stores raw text into a cell. Text starting with "=" is
// registered as a formula: parsed at its home cell, its dependencies
// entered into the workbook graph, and its dependents invalidated. A
// formula that fails to parse is kept and logged; it evaluates to empty
// text. Empty input clears the cell. Anything else is typed as a
// number, TRUE/FALSE boolean, or text.
func (s *Sheet) SetCell(row, col int, raw string) {
	key := SheetKey(s.name, row, col)
	bare := Key(row, col)
	w := s.book

	w.graph.RemoveFormula(key)

	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		delete(s.cells, bare)
	case strings.HasPrefix(trimmed, "="):
		p := Parse(trimmed, row, col)
		if p.Err != nil {
			w.logger.Printf("parse %s: %v", key, p.Err)
		}
		deps := make(map[CellKey]struct{}, len(p.Deps))
		for dep := range p.Deps {
			deps[s.qualify(dep)] = struct{}{}
		}
		s.cells[bare] = &cell{raw: raw, parsed: &p}
		w.graph.AddFormula(key, trimmed, deps)
	default:
		s.cells[bare] = &cell{raw: raw, value: literalValue(raw)}
	}

	w.graph.Invalidate(key)
}

// qualify prefixes a bare dependency key with this sheet's name.
func (s *Sheet) qualify(dep CellKey) CellKey {
	if strings.IndexByte(string(dep), '!') >= 0 {
		return dep
	}
	return CellKey(s.name) + "!" + dep
}

// literalValue types non-formula input: a float, a case-insensitive
// TRUE/FALSE, or the text itself.
func literalValue(raw string) Value {
	t := strings.TrimSpace(raw)
	if n, err := strconv.ParseFloat(t, 64); err == nil {
		return Number(n)
	}
	switch strings.ToUpper(t) {
	case "TRUE":
		return Boolean(true)
	case "FALSE":
		return Boolean(false)
	}
	return Text(raw)
}

// Value returns the current value of a cell, computing a formula cell
// if it is dirty. Unset cells read as Empty.
func (s *Sheet) Value(row, col int) Value {
	return s.book.cellValue(SheetKey(s.name, row, col))
}

// Raw returns the text as entered into a cell, "" when unset.
func (s *Sheet) Raw(row, col int) string {
	if c, ok := s.cells[Key(row, col)]; ok {
		return c.raw
	}
	return ""
}

// IsFormula reports whether the cell holds a formula.
func (s *Sheet) IsFormula(row, col int) bool {
	c, ok := s.cells[Key(row, col)]
	return ok && c.parsed != nil
}

// EachCell calls fn for every set cell, in no particular order.
func (s *Sheet) EachCell(fn func(row, col int, raw string)) {
	for key, c := range s.cells {
		_, row, col, err := ParseKey(key)
		if err != nil {
			continue
		}
		fn(row, col, c.raw)
	}
}

// Bounds returns the exclusive row and column extents of the populated
// area, (0, 0) for an empty sheet.
func (s *Sheet) Bounds() (rows, cols int) {
	for key := range s.cells {
		_, row, col, err := ParseKey(key)
		if err != nil {
			continue
		}
		if row+1 > rows {
			rows = row + 1
		}
		if col+1 > cols {
			cols = col + 1
		}
	}
	return rows, cols
}

// SortRows stably reorders the rows start..end (inclusive) by the
// current values in the given column, ascending unless desc is set.
// Comparison uses the same total ordering as formula comparisons. Every
// moved formula is textually rewritten so relative row references keep
// following the rows they named; a formula that cannot be rewritten is
// logged and moved with its text unchanged.
func (s *Sheet) SortRows(start, end, col int, desc bool) error {
	if start < 0 || start > end {
		return fmt.Errorf("sort rows %d..%d: invalid window", start, end)
	}
	w := s.book

	// Pull every sort key first so comparisons see settled values.
	rows := make([]int, 0, end-start+1)
	sortKeys := make(map[int]Value, end-start+1)
	for r := start; r <= end; r++ {
		rows = append(rows, r)
		sortKeys[r] = s.Value(r, col)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		c := Compare(sortKeys[rows[i]], sortKeys[rows[j]])
		if desc {
			return c > 0
		}
		return c < 0
	})

	order := make(map[int]int, len(rows))
	moved := false
	for idx, oldRow := range rows {
		newRow := start + idx
		order[newRow] = oldRow
		if newRow != oldRow {
			moved = true
		}
	}
	if !moved {
		return nil
	}

	// Snapshot the raw text of the window, clear it, then rebuild each
	// row from the row that sorted into its place.
	old := make(map[int]map[int]string, len(rows))
	for r := start; r <= end; r++ {
		old[r] = map[int]string{}
	}
	cols := map[int]struct{}{}
	for key, c := range s.cells {
		_, r, cc, err := ParseKey(key)
		if err != nil || r < start || r > end {
			continue
		}
		old[r][cc] = c.raw
		cols[cc] = struct{}{}
	}

	for r := start; r <= end; r++ {
		for cc := range old[r] {
			w.graph.RemoveFormula(SheetKey(s.name, r, cc))
			delete(s.cells, Key(r, cc))
		}
	}

	for idx, oldRow := range rows {
		newRow := start + idx
		for cc, raw := range old[oldRow] {
			text := raw
			if trimmed := strings.TrimSpace(raw); strings.HasPrefix(trimmed, "=") {
				rewritten, err := RewriteRows(trimmed, start, end, order)
				if err != nil {
					w.logger.Printf("rewrite %s: %v", SheetKey(s.name, newRow, cc), err)
					rewritten = trimmed
				}
				text = rewritten
			}
			s.SetCell(newRow, cc, text)
		}
	}

	// Vacated positions also changed for anyone reading them.
	for r := start; r <= end; r++ {
		for cc := range cols {
			w.graph.Invalidate(SheetKey(s.name, r, cc))
		}
	}
	return nil
}
