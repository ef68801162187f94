package sheetcalc

import (
	"fmt"
	"testing"
)

func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Parse("=SUM(A1:A10)*2+IF(B1>0,B1,C1)", 4, 4)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	p := Parse("=SUM(A1:A10)*2+IF(B1>0,B1,C1)", 4, 4)
	if p.Err != nil {
		b.Fatal(p.Err)
	}
	ctx := &mapContext{cells: map[CellKey]Value{}}
	for row := 0; row < 10; row++ {
		ctx.cells[Key(row, 0)] = Number(float64(row))
	}
	ctx.cells[Key(0, 1)] = Number(7)
	eval := NewEvaluator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := eval.Evaluate(p.Root, ctx, 4, 4); err != nil {
			b.Fatal(err)
		}
	}
}

// benchRecalc measures a full dirty-set drain over a chain of formulas
// each reading the row above.
func benchRecalc(b *testing.B, rows int) {
	w := NewWorkbook()
	s, err := w.AddSheet("Main")
	if err != nil {
		b.Fatal(err)
	}
	s.SetCell(0, 0, "1")
	for r := 1; r < rows; r++ {
		s.SetCell(r, 0, fmt.Sprintf("=A%d+1", r))
	}
	w.Recalculate()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetCell(0, 0, "2")
		w.Recalculate()
	}
}

func BenchmarkRecalc_100Rows(b *testing.B)  { benchRecalc(b, 100) }
func BenchmarkRecalc_1000Rows(b *testing.B) { benchRecalc(b, 1000) }

func BenchmarkExtractRanges(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ExtractRanges("=SUM(Data!A1:C10)+B2*Other!D4")
	}
}

func BenchmarkRewriteRows(b *testing.B) {
	order := map[int]int{1: 3, 2: 1, 3: 2}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := RewriteRows("=SUM(A2:A4)+B3*$C$2", 1, 3, order); err != nil {
			b.Fatal(err)
		}
	}
}
