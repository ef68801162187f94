package sheetcalc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_Range(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(1),
		"1:0": Number(2),
		"2:0": Number(3),
	}}
	v, err := evalAt(t, ctx, "=SUM(A1:A3)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(6), v)
}

func TestSum_SkipsNonNumeric(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(1),
		"1:0": Text("abc"),  // no numeric reading, skipped
		"2:0": Text("4"),    // numeric text counts
		"3:0": Boolean(true), // reads as 1
	}}
	v, err := evalAt(t, ctx, "=SUM(A1:A4)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(6), v)
}

func TestSum_MixedArguments(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(1),
		"1:0": Number(2),
		"0:1": Number(10),
	}}
	v, err := evalAt(t, ctx, "=SUM(A1:A2,B1,5)", 5, 5)
	require.NoError(t, err)
	assert.Equal(t, Number(18), v)
}

func TestAverage(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(2),
		"1:0": Number(4),
	}}
	v, err := evalAt(t, ctx, "=AVERAGE(A1:A2)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(3), v)
}

func TestAverage_EmptyCellsCoerceToZero(t *testing.T) {
	// An empty cell has a numeric reading of 0, so it joins the average.
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(2),
	}}
	v, err := evalAt(t, ctx, "=AVERAGE(A1:A2)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(1), v)
}

func TestAverage_NoNumericValues(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Text("abc"),
	}}
	_, err := evalAt(t, ctx, "=AVERAGE(A1)", 0, 1)
	requireCode(t, err, ErrDiv0)
}

func TestCount(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(1),
		"1:0": Text(""), // empty text is not counted
		"2:0": Text("x"),
		// A4 left unset
	}}
	v, err := evalAt(t, ctx, "=COUNT(A1:A4)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(2), v)
}

func TestMaxMin(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Number(5),
		"1:0": Number(-2),
		"2:0": Number(3),
	}}
	v, err := evalAt(t, ctx, "=MAX(A1:A3)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(5), v)

	v, err = evalAt(t, ctx, "=MIN(A1:A3)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(-2), v)

	v, err = evalAt(t, ctx, "=MAX(1,9,4)", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Number(9), v)
}

func TestMaxMin_NoNumericValues(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Text("abc"),
	}}
	v, err := evalAt(t, ctx, "=MAX(A1)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(0), v)

	v, err = evalAt(t, ctx, "=MIN(A1)", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Number(0), v)
}

func TestIf_Truthiness(t *testing.T) {
	ctx := &mapContext{cells: map[CellKey]Value{
		"0:0": Text("0"), // nonempty text is truthy
	}}
	v, err := evalAt(t, ctx, `=IF(A1,"yes","no")`, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Text("yes"), v)

	ctx.cells["0:0"] = Number(0)
	v, err = evalAt(t, ctx, `=IF(A1,"yes","no")`, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, Text("no"), v)
}

func TestUserFunction_ExpressionBody(t *testing.T) {
	eval := NewEvaluator(WithUserFunction("DOUBLE", []string{"x"}, "x * 2"))
	p := Parse("=DOUBLE(21)", 0, 0)
	require.NoError(t, p.Err)
	v, err := eval.Evaluate(p.Root, &mapContext{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Number(42), v)
}

func TestUserFunction_TextResult(t *testing.T) {
	eval := NewEvaluator(WithUserFunction("GREET", []string{"name"}, `"hello " + name`))
	p := Parse(`=GREET("ada")`, 0, 0)
	require.NoError(t, p.Err)
	v, err := eval.Evaluate(p.Root, &mapContext{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Text("hello ada"), v)
}

func TestUserFunction_BadBody(t *testing.T) {
	eval := NewEvaluator(WithUserFunction("BROKEN", []string{"x"}, "x +* 2"))
	p := Parse("=BROKEN(1)", 0, 0)
	require.NoError(t, p.Err)
	_, err := eval.Evaluate(p.Root, &mapContext{}, 0, 0)
	requireCode(t, err, ErrEval)
}

func TestFunctionPack_Load(t *testing.T) {
	const doc = `
functions:
  - name: DOUBLE
    params: [x]
    body: x * 2
  - name: HYPOT
    params: [a, b]
    body: (a*a + b*b) ^ 0.5
`
	pack, err := LoadFunctionPack(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, pack.Functions, 2)
	assert.Equal(t, "DOUBLE", pack.Functions[0].Name)

	eval := NewEvaluator(WithFunctionPack(pack))
	p := Parse("=DOUBLE(21)", 0, 0)
	require.NoError(t, p.Err)
	v, err := eval.Evaluate(p.Root, &mapContext{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Number(42), v)

	p = Parse("=HYPOT(3,4)", 0, 0)
	require.NoError(t, p.Err)
	v, err = eval.Evaluate(p.Root, &mapContext{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Number(5), v)
}

func TestFunctionPack_Validation(t *testing.T) {
	_, err := LoadFunctionPack(strings.NewReader("functions:\n  - params: [x]\n    body: x\n"))
	require.Error(t, err)

	_, err = LoadFunctionPack(strings.NewReader("functions:\n  - name: NOBODY\n"))
	require.Error(t, err)

	_, err = LoadFunctionPack(strings.NewReader("unknown: true\n"))
	require.Error(t, err)
}

func TestFunctionPack_UnknownNameStillFails(t *testing.T) {
	eval := NewEvaluator()
	p := Parse("=DOUBLE(21)", 0, 0)
	require.NoError(t, p.Err)
	_, err := eval.Evaluate(p.Root, &mapContext{}, 0, 0)
	requireCode(t, err, ErrName)
}
