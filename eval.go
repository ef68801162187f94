package sheetcalc

// EvalContext supplies live cell data during evaluation. An empty sheet
// name addresses the formula's own sheet; lookups outside the populated
// area return Empty.
type EvalContext interface {
	CellValue(row, col int, sheet string) Value
	RangeValues(r RangeRef, sheet string) [][]Value
}

// Arg is one evaluated function argument: a scalar, or the matrix a
// range produced.
type Arg struct {
	Value  Value
	Values [][]Value
	Range  bool
}

// Scalar collapses the argument to a single value: a 1x1 matrix reads as
// its only element, a larger one has no scalar reading.
func (a Arg) Scalar() (Value, bool) {
	if !a.Range {
		return a.Value, true
	}
	if len(a.Values) == 1 && len(a.Values[0]) == 1 {
		return a.Values[0][0], true
	}
	return Empty, false
}

// Function implements one spreadsheet function over already-evaluated
// arguments.
type Function func(args []Arg) (Value, error)

// Evaluator walks parsed formula trees against an EvalContext. The
// function table is fixed at construction; evaluation never mutates it.
type Evaluator struct {
	funcs map[string]Function
}

// NewEvaluator builds an evaluator carrying the built-in functions plus
// any additions supplied through options. Later options win name
// collisions; names are case-insensitive.
func NewEvaluator(opts ...Option) *Evaluator {
	o := applyOptions(opts)
	funcs := builtinFunctions()
	for name, fn := range o.funcs {
		funcs[name] = fn
	}
	return &Evaluator{funcs: funcs}
}

// Evaluate computes the value of a parsed tree homed at the given cell.
// Failures are *EvalError sentinels carrying their display code. A range
// spanning more than one cell has no scalar reading at the root and
// yields #VALUE!.
func (e *Evaluator) Evaluate(root Node, ctx EvalContext, homeRow, homeCol int) (Value, error) {
	arg, err := e.eval(root, ctx, homeRow, homeCol)
	if err != nil {
		return Empty, err
	}
	v, ok := arg.Scalar()
	if !ok {
		return Empty, evalErrorf(ErrValue, "range used as a scalar")
	}
	return v, nil
}

func (e *Evaluator) eval(n Node, ctx EvalContext, homeRow, homeCol int) (Arg, error) {
	switch node := n.(type) {
	case *NumberNode:
		return Arg{Value: Number(node.Value)}, nil
	case *StringNode:
		return Arg{Value: Text(node.Value)}, nil
	case *CellNode:
		row, col := resolveCoord(node.Ref, homeRow, homeCol)
		return Arg{Value: ctx.CellValue(row, col, node.Ref.Sheet)}, nil
	case *RangeNode:
		r := resolveRange(node.Ref, homeRow, homeCol)
		return Arg{Values: ctx.RangeValues(r, node.Ref.Start.Sheet), Range: true}, nil
	case *FuncNode:
		// Arguments evaluate eagerly, both arms of IF included; an
		// error in any argument fails the call before dispatch.
		args := make([]Arg, 0, len(node.Args))
		for _, child := range node.Args {
			arg, err := e.eval(child, ctx, homeRow, homeCol)
			if err != nil {
				return Arg{}, err
			}
			args = append(args, arg)
		}
		fn, ok := e.funcs[node.Name]
		if !ok {
			return Arg{}, evalErrorf(ErrName, "unknown function %q", node.Name)
		}
		v, err := fn(args)
		if err != nil {
			return Arg{}, err
		}
		return Arg{Value: v}, nil
	case *BinaryNode:
		left, err := e.eval(node.Left, ctx, homeRow, homeCol)
		if err != nil {
			return Arg{}, err
		}
		right, err := e.eval(node.Right, ctx, homeRow, homeCol)
		if err != nil {
			return Arg{}, err
		}
		v, err := applyOperator(node.Op, left, right)
		if err != nil {
			return Arg{}, err
		}
		return Arg{Value: v}, nil
	}
	return Arg{}, evalErrorf(ErrEval, "unknown node type %T", n)
}

// resolveCoord turns a tree reference into absolute coordinates for the
// home cell: relative components add the home coordinate, absolute ones
// pass through.
func resolveCoord(ref CellRef, homeRow, homeCol int) (row, col int) {
	row, col = ref.Row, ref.Col
	if !ref.RowAbs {
		row += homeRow
	}
	if !ref.ColAbs {
		col += homeCol
	}
	return row, col
}

// resolveRange resolves both ends against the home cell and normalizes
// the bounding box.
func resolveRange(r RangeRef, homeRow, homeCol int) RangeRef {
	sr, sc := resolveCoord(r.Start, homeRow, homeCol)
	er, ec := resolveCoord(r.End, homeRow, homeCol)
	res := RangeRef{
		Start: CellRef{Sheet: r.Start.Sheet, Row: sr, Col: sc},
		End:   CellRef{Sheet: r.End.Sheet, Row: er, Col: ec},
	}
	return res.Normalize()
}

// applyOperator evaluates one infix operation. Comparisons use the total
// Compare ordering and cannot fail; arithmetic needs numeric readings on
// both sides and reports division by a coerced zero as #DIV/0!.
func applyOperator(op Operator, left, right Arg) (Value, error) {
	a, ok := left.Scalar()
	if !ok {
		return Empty, evalErrorf(ErrValue, "range used as a scalar")
	}
	b, ok := right.Scalar()
	if !ok {
		return Empty, evalErrorf(ErrValue, "range used as a scalar")
	}

	switch op {
	case OpEq:
		return Boolean(Compare(a, b) == 0), nil
	case OpNe:
		return Boolean(Compare(a, b) != 0), nil
	case OpLt:
		return Boolean(Compare(a, b) < 0), nil
	case OpGt:
		return Boolean(Compare(a, b) > 0), nil
	case OpLe:
		return Boolean(Compare(a, b) <= 0), nil
	case OpGe:
		return Boolean(Compare(a, b) >= 0), nil
	}

	an, ok := a.AsNumber()
	if !ok {
		return Empty, evalErrorf(ErrValue, "%q has no numeric reading", a.AsText())
	}
	bn, ok := b.AsNumber()
	if !ok {
		return Empty, evalErrorf(ErrValue, "%q has no numeric reading", b.AsText())
	}

	switch op {
	case OpAdd:
		return Number(an + bn), nil
	case OpSub:
		return Number(an - bn), nil
	case OpMul:
		return Number(an * bn), nil
	case OpDiv:
		if bn == 0 {
			return Empty, evalErrorf(ErrDiv0, "division by zero")
		}
		return Number(an / bn), nil
	}
	return Empty, evalErrorf(ErrEval, "unknown operator %s", op)
}
