package sheetcalc

// Node is a parsed formula expression. The variant set is closed: the
// evaluator switches over exactly these types.
type Node interface {
	formulaNode()
}

// NumberNode is a numeric literal.
type NumberNode struct {
	Value float64
}

// StringNode is a string literal, quoted or opaque.
type StringNode struct {
	Value string
}

// CellNode references a single cell. Components with a false absolute
// flag hold offsets from the formula's home cell; absolute components
// hold absolute coordinates.
type CellNode struct {
	Ref CellRef
}

// RangeNode references a rectangular range, with the same offset
// convention as CellNode on both ends.
type RangeNode struct {
	Ref RangeRef
}

// FuncNode is a function call by name over argument expressions.
type FuncNode struct {
	Name string
	Args []Node
}

// BinaryNode applies an infix operator to two subexpressions.
type BinaryNode struct {
	Op    Operator
	Left  Node
	Right Node
}

func (*NumberNode) formulaNode() {}
func (*StringNode) formulaNode() {}
func (*CellNode) formulaNode()   {}
func (*RangeNode) formulaNode()  {}
func (*FuncNode) formulaNode()   {}
func (*BinaryNode) formulaNode() {}

// Operator enumerates the infix operators.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
)

func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpGt:
		return ">"
	case OpLe:
		return "<="
	case OpGe:
		return ">="
	}
	return "?"
}

// Precedence returns the binding strength used when splitting an
// expression: comparisons bind loosest, then additive, then
// multiplicative.
func (o Operator) Precedence() int {
	switch o {
	case OpEq, OpNe, OpLt, OpGt, OpLe, OpGe:
		return 0
	case OpAdd, OpSub:
		return 1
	}
	return 2
}
