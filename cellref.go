package sheetcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// CellKey is the canonical "row:col" identity of a cell, 0-indexed,
// optionally prefixed "SheetName!" for cross-sheet dependencies.
type CellKey string

// Key builds a CellKey from 0-based row and column indices.
func Key(row, col int) CellKey {
	return CellKey(strconv.Itoa(row) + ":" + strconv.Itoa(col))
}

// SheetKey builds a sheet-qualified CellKey. An empty sheet name yields
// the bare "row:col" form.
func SheetKey(sheet string, row, col int) CellKey {
	if sheet == "" {
		return Key(row, col)
	}
	return CellKey(sheet) + "!" + Key(row, col)
}

// ParseKey splits a CellKey back into its sheet, row, and column parts.
func ParseKey(k CellKey) (sheet string, row, col int, err error) {
	s := string(k)
	if idx := strings.LastIndexByte(s, '!'); idx >= 0 {
		sheet = s[:idx]
		s = s[idx+1:]
	}
	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		return "", 0, 0, fmt.Errorf("invalid cell key: %q", k)
	}
	row, err = strconv.Atoi(s[:colon])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid cell key %q: %w", k, err)
	}
	col, err = strconv.Atoi(s[colon+1:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid cell key %q: %w", k, err)
	}
	return sheet, row, col, nil
}

// CellRef represents a single cell reference in a workbook.
// Row and Col are absolute 0-based indices as parsed; once a reference is
// embedded in a formula AST, any component with a false absolute flag is
// re-stored as an offset from the formula's home cell.
type CellRef struct {
	Sheet  string // sheet name (empty = current sheet)
	Row    int    // 0-based row index
	Col    int    // 0-based column index
	RowAbs bool   // "$" before the row digits
	ColAbs bool   // "$" before the column letters
}

// NewCellRef creates a relative CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Sheet1!B5",
// "'My Sheet'!C3", or "$A$1". The sheet prefix is either a single-quoted
// string or a bare run of non-"!" characters; the cell part is strictly
// optional "$", uppercase letters, optional "$", digits. Any structural
// mismatch or a row below 1 is an error so callers can fall through to
// literal parsing.
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	rest := s

	if rest[0] == '\'' {
		end := strings.IndexByte(rest[1:], '\'')
		if end < 0 || end+2 >= len(rest) || rest[end+2] != '!' {
			return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
		}
		sheet = rest[1 : end+1]
		rest = rest[end+3:]
	} else if idx := strings.IndexByte(rest, '!'); idx >= 0 {
		if idx == 0 {
			return CellRef{}, fmt.Errorf("invalid cell reference: %q", s)
		}
		sheet = rest[:idx]
		rest = rest[idx+1:]
	}

	col, row, colAbs, rowAbs, err := parseCellName(rest)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}

	return CellRef{Sheet: sheet, Row: row, Col: col, RowAbs: rowAbs, ColAbs: colAbs}, nil
}

// parseCellName parses "$A$1" into col=0, row=0 with both flags set.
func parseCellName(name string) (col, row int, colAbs, rowAbs bool, err error) {
	if name == "" {
		return 0, 0, false, false, fmt.Errorf("empty cell name")
	}

	i := 0
	if name[i] == '$' {
		colAbs = true
		i++
	}
	j := i
	for j < len(name) && name[j] >= 'A' && name[j] <= 'Z' {
		j++
	}
	if j == i {
		return 0, 0, false, false, fmt.Errorf("invalid cell name: %q", name)
	}
	col, err = NameToCol(name[i:j])
	if err != nil {
		return 0, 0, false, false, err
	}

	k := j
	if k < len(name) && name[k] == '$' {
		rowAbs = true
		k++
	}
	d := k
	for d < len(name) && name[d] >= '0' && name[d] <= '9' {
		d++
	}
	if d == k || d != len(name) {
		return 0, 0, false, false, fmt.Errorf("invalid cell name: %q", name)
	}

	rowNum, err := strconv.Atoi(name[k:d])
	if err != nil {
		return 0, 0, false, false, fmt.Errorf("invalid row in cell name %q: %w", name, err)
	}
	if rowNum < 1 {
		return 0, 0, false, false, fmt.Errorf("invalid row number in cell name: %q", name)
	}

	return col, rowNum - 1, colAbs, rowAbs, nil // convert 1-based row to 0-based
}

// Key returns the CellKey for this reference, sheet-qualified if the
// reference names a sheet.
func (c CellRef) Key() CellKey {
	return SheetKey(c.Sheet, c.Row, c.Col)
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	name := c.CellName()
	if c.Sheet != "" {
		return c.Sheet + "!" + name
	}
	return name
}

// CellName returns just the cell part like "$A$1" without sheet name,
// reproducing the absolute markers.
func (c CellRef) CellName() string {
	var b strings.Builder
	if c.ColAbs {
		b.WriteByte('$')
	}
	b.WriteString(ColToName(c.Col))
	if c.RowAbs {
		b.WriteByte('$')
	}
	b.WriteString(strconv.Itoa(c.Row + 1))
	return b.String()
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA", 702→"AAA"
func ColToName(col int) string {
	result := ""
	col++ // convert to 1-based for algorithm
	for col > 0 {
		col-- // adjust for 0-indexed letter
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "AA"→26
func NameToCol(name string) (int, error) {
	name = strings.ToUpper(name)
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	col := 0
	for _, ch := range name {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	return col - 1, nil
}

// RangeRef represents a rectangular range defined by two cell references.
// There is no ordering invariant between Start and End; consumers call
// Normalize to obtain the bounding box.
type RangeRef struct {
	Start CellRef
	End   CellRef
}

// NewRangeRef creates a RangeRef from two cell references.
func NewRangeRef(start, end CellRef) RangeRef {
	return RangeRef{Start: start, End: end}
}

// ParseRangeRef parses a range reference string like "A1:C5",
// "Sheet1!A1:C5", or "'My Sheet'!A1:C5". A sheet prefix before the range
// is stripped first and propagated onto both ends; each end may also carry
// its own prefix.
func ParseRangeRef(s string) (RangeRef, error) {
	s = strings.TrimSpace(s)

	var shared string
	rest := s
	if rest != "" && rest[0] == '\'' {
		if end := strings.IndexByte(rest[1:], '\''); end >= 0 && end+2 < len(rest) && rest[end+2] == '!' {
			shared = rest[1 : end+1]
			rest = rest[end+3:]
		}
	} else if idx := strings.IndexByte(rest, '!'); idx > 0 {
		if colon := strings.IndexByte(rest, ':'); colon < 0 || idx < colon {
			shared = rest[:idx]
			rest = rest[idx+1:]
		}
	}

	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return RangeRef{}, fmt.Errorf("invalid range reference (missing ':'): %q", s)
	}

	start, err := ParseCellRef(rest[:colon])
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range reference %q: %w", s, err)
	}

	end, err := ParseCellRef(rest[colon+1:])
	if err != nil {
		return RangeRef{}, fmt.Errorf("invalid range reference %q: %w", s, err)
	}

	if shared != "" {
		start.Sheet = shared
		end.Sheet = shared
	} else if end.Sheet == "" && start.Sheet != "" {
		// Inherit sheet name from the start cell if the end doesn't have one
		end.Sheet = start.Sheet
	}

	return RangeRef{Start: start, End: end}, nil
}

// String formats the RangeRef as "Sheet1!A1:C5" or "A1:C5".
func (r RangeRef) String() string {
	if r.Start.Sheet != "" && r.Start.Sheet == r.End.Sheet {
		return r.Start.Sheet + "!" + r.Start.CellName() + ":" + r.End.CellName()
	}
	return r.Start.String() + ":" + r.End.String()
}

// Normalize returns an equivalent RangeRef with Start at the top-left and
// End at the bottom-right of the bounding box. Absolute flags travel with
// their end, not with the coordinate.
func (r RangeRef) Normalize() RangeRef {
	n := r
	if n.Start.Row > n.End.Row {
		n.Start.Row, n.End.Row = n.End.Row, n.Start.Row
	}
	if n.Start.Col > n.End.Col {
		n.Start.Col, n.End.Col = n.End.Col, n.Start.Col
	}
	return n
}

// Contains returns true if the given cell reference is within this range.
func (r RangeRef) Contains(ref CellRef) bool {
	n := r.Normalize()
	if n.Start.Sheet != "" && n.Start.Sheet != ref.Sheet {
		return false
	}
	return ref.Row >= n.Start.Row && ref.Row <= n.End.Row &&
		ref.Col >= n.Start.Col && ref.Col <= n.End.Col
}

// Rows returns the number of rows covered by the range.
func (r RangeRef) Rows() int {
	n := r.Normalize()
	return n.End.Row - n.Start.Row + 1
}

// Cols returns the number of columns covered by the range.
func (r RangeRef) Cols() int {
	n := r.Normalize()
	return n.End.Col - n.Start.Col + 1
}

// SheetName returns the sheet name of this range (from the start cell).
func (r RangeRef) SheetName() string {
	return r.Start.Sheet
}

// SafeSheetName sanitizes a string for use as a workbook sheet name.
// It replaces forbidden characters ([]*?/\:) with underscore and truncates to 31 chars.
func SafeSheetName(name string) string {
	forbidden := []rune{'/', '\\', ':', '*', '?', '[', ']'}
	runes := []rune(name)
	for i, r := range runes {
		for _, f := range forbidden {
			if r == f {
				runes[i] = '_'
				break
			}
		}
	}
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
