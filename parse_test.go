package sheetcalc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func depSet(keys ...CellKey) map[CellKey]struct{} {
	s := map[CellKey]struct{}{}
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func requireTree(t *testing.T, want Node, got Node) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Number(t *testing.T) {
	p := Parse("=42", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &NumberNode{Value: 42}, p.Root)
	assert.Empty(t, p.Deps)
}

func TestParse_QuotedString(t *testing.T) {
	p := Parse(`="hi there"`, 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &StringNode{Value: "hi there"}, p.Root)

	p = Parse(`="a""b"`, 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &StringNode{Value: `a"b`}, p.Root)
}

func TestParse_OpaqueLiteral(t *testing.T) {
	// Unrecognized atoms never hard-fail; they become string literals.
	p := Parse("=hello world", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &StringNode{Value: "hello world"}, p.Root)
}

func TestParse_Precedence(t *testing.T) {
	p := Parse("=1+2*3", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &BinaryNode{
		Op:   OpAdd,
		Left: &NumberNode{Value: 1},
		Right: &BinaryNode{
			Op:    OpMul,
			Left:  &NumberNode{Value: 2},
			Right: &NumberNode{Value: 3},
		},
	}, p.Root)
}

func TestParse_LeftAssociativity(t *testing.T) {
	// The rightmost weakest operator splits first: 5-3-1 = (5-3)-1.
	p := Parse("=5-3-1", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &BinaryNode{
		Op: OpSub,
		Left: &BinaryNode{
			Op:    OpSub,
			Left:  &NumberNode{Value: 5},
			Right: &NumberNode{Value: 3},
		},
		Right: &NumberNode{Value: 1},
	}, p.Root)
}

func TestParse_ComparisonOperators(t *testing.T) {
	p := Parse("=A1>=5", 0, 0)
	require.NoError(t, p.Err)
	node, ok := p.Root.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, OpGe, node.Op)

	p = Parse("=2<>3", 0, 0)
	require.NoError(t, p.Err)
	node, ok = p.Root.(*BinaryNode)
	require.True(t, ok)
	assert.Equal(t, OpNe, node.Op)
}

func TestParse_ScientificNotation(t *testing.T) {
	p := Parse("=1e+5", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &NumberNode{Value: 1e5}, p.Root)

	// The exponent sign is not an operator; the trailing + is.
	p = Parse("=1.5E-2+1", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &BinaryNode{
		Op:    OpAdd,
		Left:  &NumberNode{Value: 0.015},
		Right: &NumberNode{Value: 1},
	}, p.Root)
}

func TestParse_SumRangeDependencies(t *testing.T) {
	// Homed at B1: the range stays relative in the tree while the
	// dependency set records the absolute cells.
	p := Parse("=SUM(A1:A3)", 0, 1)
	require.NoError(t, p.Err)
	assert.Equal(t, depSet("0:0", "1:0", "2:0"), p.Deps)

	requireTree(t, &FuncNode{
		Name: "SUM",
		Args: []Node{&RangeNode{Ref: RangeRef{
			Start: CellRef{Row: 0, Col: -1},
			End:   CellRef{Row: 2, Col: -1},
		}}},
	}, p.Root)
}

func TestParse_RelativeOffsets(t *testing.T) {
	p := Parse("=B2", 2, 2) // homed at C3
	require.NoError(t, p.Err)
	requireTree(t, &CellNode{Ref: CellRef{Row: -1, Col: -1}}, p.Root)
	assert.Equal(t, depSet("1:1"), p.Deps)
}

func TestParse_AbsoluteReference(t *testing.T) {
	p := Parse("=$A$1", 5, 5)
	require.NoError(t, p.Err)
	requireTree(t, &CellNode{Ref: CellRef{Row: 0, Col: 0, RowAbs: true, ColAbs: true}}, p.Root)
	assert.Equal(t, depSet("0:0"), p.Deps)
}

func TestParse_MixedAbsolute(t *testing.T) {
	p := Parse("=A$1", 3, 2)
	require.NoError(t, p.Err)
	requireTree(t, &CellNode{Ref: CellRef{Row: 0, Col: -2, RowAbs: true}}, p.Root)
}

func TestParse_CrossSheetDependency(t *testing.T) {
	p := Parse("=Sheet2!B2", 0, 0)
	require.NoError(t, p.Err)
	assert.Equal(t, depSet("Sheet2!1:1"), p.Deps)

	p = Parse("='My Sheet'!A1+A1", 0, 0)
	require.NoError(t, p.Err)
	assert.Equal(t, depSet("My Sheet!0:0", "0:0"), p.Deps)
}

func TestParse_FunctionArguments(t *testing.T) {
	p := Parse(`=IF(A1>0,"yes","no")`, 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &FuncNode{
		Name: "IF",
		Args: []Node{
			&BinaryNode{
				Op:    OpGt,
				Left:  &CellNode{Ref: CellRef{Row: 0, Col: 0}},
				Right: &NumberNode{Value: 0},
			},
			&StringNode{Value: "yes"},
			&StringNode{Value: "no"},
		},
	}, p.Root)
}

func TestParse_NestedCalls(t *testing.T) {
	p := Parse("=SUM(A1,MAX(B1,C1))", 0, 0)
	require.NoError(t, p.Err)
	root, ok := p.Root.(*FuncNode)
	require.True(t, ok)
	assert.Equal(t, "SUM", root.Name)
	require.Len(t, root.Args, 2)
	inner, ok := root.Args[1].(*FuncNode)
	require.True(t, ok)
	assert.Equal(t, "MAX", inner.Name)
	assert.Equal(t, depSet("0:0", "0:1", "0:2"), p.Deps)
}

func TestParse_LowercaseFunctionName(t *testing.T) {
	p := Parse("=sum(A1)", 0, 0)
	require.NoError(t, p.Err)
	root, ok := p.Root.(*FuncNode)
	require.True(t, ok)
	assert.Equal(t, "SUM", root.Name)
}

func TestParse_ParenGroup(t *testing.T) {
	p := Parse("=(1+2)*3", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &BinaryNode{
		Op: OpMul,
		Left: &BinaryNode{
			Op:    OpAdd,
			Left:  &NumberNode{Value: 1},
			Right: &NumberNode{Value: 2},
		},
		Right: &NumberNode{Value: 3},
	}, p.Root)
}

func TestParse_LeadingMinus(t *testing.T) {
	// A leading sign splits with an empty left operand, which reads as 0.
	p := Parse("=-5", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &BinaryNode{
		Op:    OpSub,
		Left:  &StringNode{},
		Right: &NumberNode{Value: 5},
	}, p.Root)
}

func TestParse_BrokenInputFallsBack(t *testing.T) {
	p := Parse("=SUM(A1", 0, 0)
	require.Error(t, p.Err)
	requireTree(t, &StringNode{}, p.Root)
	assert.Empty(t, p.Deps)

	p = Parse(`="abc`, 0, 0)
	require.Error(t, p.Err)
	requireTree(t, &StringNode{}, p.Root)
}

func TestParse_EmptyFormula(t *testing.T) {
	p := Parse("=", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &StringNode{}, p.Root)

	p = Parse("", 0, 0)
	require.NoError(t, p.Err)
	requireTree(t, &StringNode{}, p.Root)
}

func TestParse_RangeAtRoot(t *testing.T) {
	p := Parse("=B2:C3", 1, 1)
	require.NoError(t, p.Err)
	requireTree(t, &RangeNode{Ref: RangeRef{
		Start: CellRef{Row: 0, Col: 0},
		End:   CellRef{Row: 1, Col: 1},
	}}, p.Root)
	assert.Equal(t, depSet("1:1", "1:2", "2:1", "2:2"), p.Deps)
}
