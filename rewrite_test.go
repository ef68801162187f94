package sheetcalc

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRewriteRows_FollowsMovedRow(t *testing.T) {
	// Rows 1..3 reordered: the row originally at index 1 now sits at
	// index 2, so =A2 must become =A3.
	got, err := RewriteRows("=A2", 1, 3, map[int]int{1: 3, 2: 1, 3: 2})
	require.NoError(t, err)
	assert.Equal(t, "=A3", got)
}

func TestRewriteRows_AbsoluteRowPinned(t *testing.T) {
	got, err := RewriteRows("=$A$2", 1, 3, map[int]int{1: 3, 2: 1, 3: 2})
	require.NoError(t, err)
	assert.Equal(t, "=$A$2", got)
}

func TestRewriteRows_AbsoluteColumnStillMoves(t *testing.T) {
	got, err := RewriteRows("=$A2", 1, 3, map[int]int{1: 3, 2: 1, 3: 2})
	require.NoError(t, err)
	assert.Equal(t, "=$A3", got)
}

func TestRewriteRows_SheetQualifiedUntouched(t *testing.T) {
	got, err := RewriteRows("=Data!A2+A2", 1, 3, map[int]int{1: 3, 2: 1, 3: 2})
	require.NoError(t, err)
	assert.Equal(t, "=Data!A2+A3", got)
}

func TestRewriteRows_RangeEndpoints(t *testing.T) {
	got, err := RewriteRows("=SUM(A2:A4)", 1, 3, map[int]int{1: 3, 2: 1, 3: 2})
	require.NoError(t, err)
	// Endpoints rewrite independently; no reordering of the range text.
	assert.Equal(t, "=SUM(A3:A2)", got)
}

func TestRewriteRows_OutsideWindowUntouched(t *testing.T) {
	got, err := RewriteRows("=A1+A5", 1, 3, map[int]int{1: 3, 2: 1, 3: 2})
	require.NoError(t, err)
	assert.Equal(t, "=A1+A5", got)
}

func TestRewriteRows_QuotedTextUntouched(t *testing.T) {
	got, err := RewriteRows(`=IF(A2>0,"A2",A2)`, 1, 3, map[int]int{1: 2, 2: 1, 3: 3})
	require.NoError(t, err)
	assert.Equal(t, `=IF(A3>0,"A2",A3)`, got)
}

func TestRewriteRows_MultiDigitRows(t *testing.T) {
	got, err := RewriteRows("=A10+A11", 9, 10, map[int]int{9: 10, 10: 9})
	require.NoError(t, err)
	assert.Equal(t, "=A11+A10", got)
}

func TestRewriteRows_IdentityOrder(t *testing.T) {
	got, err := RewriteRows("=A2*2", 1, 3, map[int]int{1: 1, 2: 2, 3: 3})
	require.NoError(t, err)
	assert.Equal(t, "=A2*2", got)
}

func TestRewriteRows_OrderOutsideWindow(t *testing.T) {
	_, err := RewriteRows("=A2", 1, 3, map[int]int{1: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside rows 1..3")
}

func TestRewriteRows_DuplicateSourceRow(t *testing.T) {
	_, err := RewriteRows("=A2", 1, 3, map[int]int{1: 2, 3: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "twice")
}
