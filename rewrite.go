package sheetcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// RewriteRows rewrites the row numbers of cell references in a formula
// after the rows start..end (0-indexed, inclusive) have been reordered.
// order maps each new row index to the row originally at that position,
// exactly the permutation a sort produces. References with an absolute
// row marker or a sheet qualifier keep their text, as do rows outside
// the window. The rewrite is textual: everything around the row digits,
// including $ markers, spacing and case, survives verbatim.
func RewriteRows(formula string, start, end int, order map[int]int) (string, error) {
	inverse := make(map[int]int, len(order))
	for newRow, oldRow := range order {
		if newRow < start || newRow > end || oldRow < start || oldRow > end {
			return "", fmt.Errorf("row order entry %d:%d outside rows %d..%d", newRow, oldRow, start, end)
		}
		if _, dup := inverse[oldRow]; dup {
			return "", fmt.Errorf("row order lists row %d twice", oldRow)
		}
		inverse[oldRow] = newRow
	}

	type edit struct {
		start, end int
		text       string
	}
	var edits []edit
	for _, tok := range scanRefs(formula) {
		if tok.hasSheet {
			continue // rows on other sheets did not move
		}
		for _, part := range tok.parts {
			if part.rowAbs || part.row < start || part.row > end {
				continue
			}
			newRow, ok := inverse[part.row]
			if !ok || newRow == part.row {
				continue
			}
			edits = append(edits, edit{part.rowStart, part.rowEnd, strconv.Itoa(newRow + 1)})
		}
	}
	if len(edits) == 0 {
		return formula, nil
	}

	// Edits arrive in ascending text order, so the result assembles in
	// one forward pass.
	var b strings.Builder
	b.Grow(len(formula) + len(edits)*2)
	pos := 0
	for _, e := range edits {
		b.WriteString(formula[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(formula[pos:])
	return b.String(), nil
}
