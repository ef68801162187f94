package sheetcalc

// RangeKind tells single cell references apart from rectangular ranges
// in extraction results.
type RangeKind int

const (
	RangeKindCell RangeKind = iota
	RangeKindRange
)

func (k RangeKind) String() string {
	if k == RangeKindRange {
		return "range"
	}
	return "cell"
}

// FormulaRange is one referenced area found in a formula: a single cell
// (start == end) or a normalized range. Sheet is empty for references on
// the formula's own sheet. Coordinates are 0-based and inclusive.
type FormulaRange struct {
	Kind     RangeKind
	Sheet    string
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// ExtractRanges scans a formula and returns every referenced cell and
// range: cross-sheet references first, then same-sheet ones, each group
// in text order. Repeated references are repeated in the result. The
// scan is purely lexical, so it also works on formulas the parser
// rejects.
func ExtractRanges(formulaText string) []FormulaRange {
	toks := scanRefs(formulaText)
	if len(toks) == 0 {
		return nil
	}
	out := make([]FormulaRange, 0, len(toks))
	for _, tok := range toks {
		if tok.hasSheet {
			out = append(out, tokenRange(tok))
		}
	}
	for _, tok := range toks {
		if !tok.hasSheet {
			out = append(out, tokenRange(tok))
		}
	}
	return out
}

func tokenRange(tok refToken) FormulaRange {
	p := tok.parts[0]
	fr := FormulaRange{
		Sheet:    tok.sheet,
		StartRow: p.row,
		StartCol: p.col,
		EndRow:   p.row,
		EndCol:   p.col,
	}
	if tok.isRange() {
		q := tok.parts[1]
		fr.Kind = RangeKindRange
		fr.StartRow = min(p.row, q.row)
		fr.EndRow = max(p.row, q.row)
		fr.StartCol = min(p.col, q.col)
		fr.EndCol = max(p.col, q.col)
	}
	return fr
}
