package sheetcalc

import "strconv"

// refPart is one cell endpoint inside a scanned reference token.
type refPart struct {
	row, col int
	rowAbs   bool
	colAbs   bool
	rowStart int // offset of the first row digit within the scanned text
	rowEnd   int // offset just past the last row digit
}

// refToken is one cell or range occurrence found in formula text.
type refToken struct {
	start, end int    // byte offsets of the whole occurrence
	sheet      string // unquoted sheet name, when prefixed
	hasSheet   bool
	parts      []refPart // one part for a cell, two for a range
}

func (t refToken) isRange() bool { return len(t.parts) == 2 }

// scanRefs finds every A1-style cell and range occurrence in formula text.
// Double-quoted string spans are skipped. A sheet prefix is either a
// single-quoted span or a bare name run before "!"; a match that is itself
// followed by "!" is treated as a sheet name, not a cell. A letter-digit
// run followed by "(" or by further name characters is part of a longer
// identifier (a function name like LOG10) and is not reported; names that
// only a human could tell apart from references stay ambiguous.
func scanRefs(text string) []refToken {
	var tokens []refToken
	i := 0
	for i < len(text) {
		switch c := text[i]; {
		case c == '"':
			j := i + 1
			for j < len(text) && text[j] != '"' {
				j++
			}
			i = j + 1
		case c == '\'':
			j := i + 1
			for j < len(text) && text[j] != '\'' {
				j++
			}
			if j+1 < len(text) && text[j+1] == '!' {
				if part, next, ok := scanCellPart(text, j+2); ok && !followedByBang(text, next) {
					tok := refToken{start: i, end: next, sheet: text[i+1 : j], hasSheet: true, parts: []refPart{part}}
					i = joinRange(&tok, text, next)
					tokens = append(tokens, tok)
					continue
				}
			}
			i = j + 1
		case c == '$' || (c >= 'A' && c <= 'Z'):
			if i > 0 && isNameByte(text[i-1]) {
				i = skipName(text, i)
				continue
			}
			part, next, ok := scanCellPart(text, i)
			if !ok {
				if c == '$' {
					i++
				} else {
					i = skipName(text, i)
				}
				continue
			}
			if followedByBang(text, next) {
				// the match is a sheet name; rescan after the separator
				i = next + 1
				continue
			}
			tok := refToken{start: i, end: next, parts: []refPart{part}}
			if i > 0 && text[i-1] == '!' {
				// bare sheet name behind the separator
				q := i - 1
				for q > 0 && isNameByte(text[q-1]) {
					q--
				}
				if q < i-1 {
					tok.sheet = text[q : i-1]
					tok.hasSheet = true
					tok.start = q
				}
			}
			i = joinRange(&tok, text, next)
			tokens = append(tokens, tok)
		default:
			i++
		}
	}
	return tokens
}

// joinRange extends tok with a ":" continuation when one follows,
// returning the scan position after the token.
func joinRange(tok *refToken, text string, next int) int {
	if next < len(text) && text[next] == ':' {
		if part, after, ok := scanCellPart(text, next+1); ok && !followedByBang(text, after) {
			tok.parts = append(tok.parts, part)
			tok.end = after
			return after
		}
	}
	return next
}

// scanCellPart matches optional "$", uppercase letters, optional "$",
// digits at position start, returning the parsed part and the position
// after it.
func scanCellPart(text string, start int) (refPart, int, bool) {
	var p refPart
	i := start
	if i < len(text) && text[i] == '$' {
		p.colAbs = true
		i++
	}
	j := i
	for j < len(text) && text[j] >= 'A' && text[j] <= 'Z' {
		j++
	}
	if j == i {
		return refPart{}, 0, false
	}
	col, err := NameToCol(text[i:j])
	if err != nil {
		return refPart{}, 0, false
	}
	p.col = col

	k := j
	if k < len(text) && text[k] == '$' {
		p.rowAbs = true
		k++
	}
	d := k
	for d < len(text) && text[d] >= '0' && text[d] <= '9' {
		d++
	}
	if d == k {
		return refPart{}, 0, false
	}
	row, err := strconv.Atoi(text[k:d])
	if err != nil || row < 1 {
		return refPart{}, 0, false
	}
	p.row = row - 1
	p.rowStart, p.rowEnd = k, d

	// a following name byte or "(" means this run is part of a longer
	// identifier, not a reference
	if d < len(text) && (isNameByte(text[d]) || text[d] == '(') {
		return refPart{}, 0, false
	}
	return p, d, true
}

func followedByBang(text string, pos int) bool {
	return pos < len(text) && text[pos] == '!'
}

// isNameByte reports whether b can appear in a bare sheet or function name.
func isNameByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_' || b == '.'
}

func skipName(text string, i int) int {
	for i < len(text) && isNameByte(text[i]) {
		i++
	}
	return i
}
