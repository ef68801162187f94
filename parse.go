package sheetcalc

import (
	"fmt"
	"strconv"
	"strings"
)

// Parsed is the result of parsing one formula. Root is always usable:
// when Err is set the tree falls back to an empty string literal so the
// host can keep rendering. Deps holds the absolute key of every cell the
// formula reads, with ranges expanded to each covered cell.
type Parsed struct {
	Root Node
	Deps map[CellKey]struct{}
	Err  error
}

// Parse parses formula text homed at the given 0-based cell. A leading
// "=" is stripped. References with relative components are stored in the
// tree as offsets from the home cell, while Deps records their absolute
// coordinates at parse time; the tree therefore survives relocation of
// its home cell and the dependency set stays exact.
func Parse(formulaText string, homeRow, homeCol int) Parsed {
	p := &parser{homeRow: homeRow, homeCol: homeCol, deps: map[CellKey]struct{}{}}
	text := strings.TrimSpace(formulaText)
	text = strings.TrimPrefix(text, "=")
	root, err := p.parseExpr(text)
	if err != nil {
		return Parsed{
			Root: &StringNode{},
			Deps: map[CellKey]struct{}{},
			Err:  fmt.Errorf("parse %q: %w", formulaText, err),
		}
	}
	return Parsed{Root: root, Deps: p.deps}
}

type parser struct {
	homeRow, homeCol int
	deps             map[CellKey]struct{}
}

// parseExpr parses one expression by locating the weakest-binding
// operator outside parentheses and quotes and splitting there. The
// rightmost occurrence wins a tie, which preserves left associativity
// across the recursive split.
func (p *parser) parseExpr(s string) (Node, error) {
	s = strings.TrimSpace(s)

	op, pos, width, err := splitPoint(s)
	if err != nil {
		return nil, err
	}
	if pos >= 0 {
		left, err := p.parseExpr(s[:pos])
		if err != nil {
			return nil, err
		}
		right, err := p.parseExpr(s[pos+width:])
		if err != nil {
			return nil, err
		}
		return &BinaryNode{Op: op, Left: left, Right: right}, nil
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && isWholeGroup(s) {
		return p.parseExpr(s[1 : len(s)-1])
	}

	return p.parseAtom(s)
}

// parseAtom parses an operator-free expression. Reference forms are
// tried first, then a function call, then numeric and quoted string
// literals; any remaining text becomes an opaque string literal rather
// than a failure.
func (p *parser) parseAtom(s string) (Node, error) {
	if s == "" {
		return &StringNode{}, nil
	}

	if ref, err := ParseCellRef(s); err == nil {
		p.deps[ref.Key()] = struct{}{}
		return &CellNode{Ref: p.relativize(ref)}, nil
	}

	if r, err := ParseRangeRef(s); err == nil {
		p.addRangeDeps(r)
		return &RangeNode{Ref: RangeRef{Start: p.relativize(r.Start), End: p.relativize(r.End)}}, nil
	}

	if name, args, ok := splitCall(s); ok {
		node := &FuncNode{Name: strings.ToUpper(name)}
		for _, arg := range args {
			child, err := p.parseExpr(arg)
			if err != nil {
				return nil, err
			}
			node.Args = append(node.Args, child)
		}
		return node, nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &NumberNode{Value: f}, nil
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return &StringNode{Value: strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)}, nil
	}

	return &StringNode{Value: s}, nil
}

// relativize converts the relative components of a parsed reference to
// offsets from the home cell; absolute components keep their coordinates.
func (p *parser) relativize(ref CellRef) CellRef {
	if !ref.RowAbs {
		ref.Row -= p.homeRow
	}
	if !ref.ColAbs {
		ref.Col -= p.homeCol
	}
	return ref
}

// addRangeDeps expands a range to every cell of its bounding box and
// records each absolute key.
func (p *parser) addRangeDeps(r RangeRef) {
	n := r.Normalize()
	for row := n.Start.Row; row <= n.End.Row; row++ {
		for col := n.Start.Col; col <= n.End.Col; col++ {
			p.deps[SheetKey(n.Start.Sheet, row, col)] = struct{}{}
		}
	}
}

// splitPoint finds the operator to split s at: the candidate with the
// lowest precedence, rightmost on ties. It reports pos -1 when s holds
// no top-level operator and an error when parentheses or quotes do not
// balance.
func splitPoint(s string) (op Operator, pos, width int, err error) {
	pos = -1
	bestPrec := 3
	depth := 0
	inStr := false
	inSheet := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			if c == '"' {
				inStr = false
			}
			continue
		}
		if inSheet {
			if c == '\'' {
				inSheet = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
			continue
		case '\'':
			inSheet = true
			continue
		case '(':
			depth++
			continue
		case ')':
			depth--
			if depth < 0 {
				return 0, -1, 0, fmt.Errorf("unbalanced parentheses")
			}
			continue
		}
		if depth > 0 {
			continue
		}
		cand, w, ok := operatorAt(s, i)
		if !ok {
			continue
		}
		if prec := cand.Precedence(); prec <= bestPrec {
			op, pos, width, bestPrec = cand, i, w, prec
		}
		i += w - 1
	}
	if depth != 0 {
		return 0, -1, 0, fmt.Errorf("unbalanced parentheses")
	}
	if inStr {
		return 0, -1, 0, fmt.Errorf("unterminated string literal")
	}
	if inSheet {
		return 0, -1, 0, fmt.Errorf("unterminated sheet name quote")
	}
	return op, pos, width, nil
}

// operatorAt matches an operator at position i. Two-character forms are
// tried first so a lone "<" or ">" never splits ">=", "<=", or "<>"; a
// "+" or "-" sitting right after a digit-backed exponent marker is part
// of a scientific literal, not an operator.
func operatorAt(s string, i int) (Operator, int, bool) {
	switch {
	case strings.HasPrefix(s[i:], ">="):
		return OpGe, 2, true
	case strings.HasPrefix(s[i:], "<="):
		return OpLe, 2, true
	case strings.HasPrefix(s[i:], "<>"):
		return OpNe, 2, true
	}
	switch s[i] {
	case '>':
		return OpGt, 1, true
	case '<':
		return OpLt, 1, true
	case '=':
		return OpEq, 1, true
	case '+', '-':
		if isExponentSign(s, i) {
			return 0, 0, false
		}
		if s[i] == '+' {
			return OpAdd, 1, true
		}
		return OpSub, 1, true
	case '*':
		return OpMul, 1, true
	case '/':
		return OpDiv, 1, true
	}
	return 0, 0, false
}

// isExponentSign reports whether the sign at i continues a scientific
// literal such as 1.5e+3.
func isExponentSign(s string, i int) bool {
	if i < 2 || i+1 >= len(s) {
		return false
	}
	if e := s[i-1]; e != 'e' && e != 'E' {
		return false
	}
	if prev := s[i-2]; prev != '.' && (prev < '0' || prev > '9') {
		return false
	}
	next := s[i+1]
	return next >= '0' && next <= '9'
}

// isWholeGroup reports whether all of s is one parenthesized group, as
// opposed to adjacent groups like "(a)(b)".
func isWholeGroup(s string) bool {
	depth := 0
	inStr := false
	inSheet := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inStr:
			if c == '"' {
				inStr = false
			}
		case inSheet:
			if c == '\'' {
				inSheet = false
			}
		case c == '"':
			inStr = true
		case c == '\'':
			inSheet = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}

// splitCall recognizes "NAME(args)" with the parentheses closing at the
// very end, splitting the arguments on top-level commas. Quotes and
// nesting are respected; an empty argument list yields no args.
func splitCall(s string) (name string, args []string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || s[len(s)-1] != ')' {
		return "", nil, false
	}
	name = s[:open]
	if name[0] >= '0' && name[0] <= '9' {
		return "", nil, false
	}
	for i := 0; i < len(name); i++ {
		if !isNameByte(name[i]) {
			return "", nil, false
		}
	}

	body := s[open+1 : len(s)-1]
	if strings.TrimSpace(body) == "" {
		return name, nil, true
	}

	depth := 0
	inStr := false
	inSheet := false
	last := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case inStr:
			if c == '"' {
				inStr = false
			}
		case inSheet:
			if c == '\'' {
				inSheet = false
			}
		case c == '"':
			inStr = true
		case c == '\'':
			inSheet = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return "", nil, false
			}
		case c == ',' && depth == 0:
			args = append(args, body[last:i])
			last = i + 1
		}
	}
	if depth != 0 || inStr || inSheet {
		return "", nil, false
	}
	args = append(args, body[last:])
	return name, args, true
}
