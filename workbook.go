// Package sheetcalc implements a spreadsheet formula engine: A1-style
// reference handling, a precedence-splitting parser, an evaluator with
// spreadsheet coercions, an incremental dependency graph, and the
// workbook machinery that ties them to stored cells.
package sheetcalc

import (
	"fmt"
	"log"
)

// Workbook owns a set of named sheets, the dependency graph spanning
// them, and the evaluator for their formulas. Graph keys are always
// sheet-qualified; bare dependency keys coming out of a parse are
// qualified with the formula's home sheet before registration.
//
// Formula values are pulled: reading a dirty cell computes it (and,
// transitively, the dirty cells it reads) and caches the result until
// the next invalidation.
type Workbook struct {
	sheets     map[string]*Sheet
	order      []string
	graph      *Graph
	eval       *Evaluator
	logger     *log.Logger
	inProgress map[CellKey]struct{}
}

// NewWorkbook creates an empty workbook. Options register user
// functions and replace the logger, as with NewEvaluator.
func NewWorkbook(opts ...Option) *Workbook {
	o := applyOptions(opts)
	return &Workbook{
		sheets:     map[string]*Sheet{},
		graph:      NewGraph(),
		eval:       NewEvaluator(opts...),
		logger:     o.logger,
		inProgress: map[CellKey]struct{}{},
	}
}

// AddSheet creates a named empty sheet.
func (w *Workbook) AddSheet(name string) (*Sheet, error) {
	if name == "" {
		return nil, fmt.Errorf("empty sheet name")
	}
	if _, ok := w.sheets[name]; ok {
		return nil, fmt.Errorf("sheet %q already exists", name)
	}
	s := &Sheet{book: w, name: name, cells: map[CellKey]*cell{}}
	w.sheets[name] = s
	w.order = append(w.order, name)
	return s, nil
}

// Sheet returns the named sheet, or nil when absent.
func (w *Workbook) Sheet(name string) *Sheet {
	return w.sheets[name]
}

// SheetNames returns the sheet names in creation order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// DirtyCells returns the sheet-qualified keys of every formula cell
// awaiting recomputation.
func (w *Workbook) DirtyCells() []CellKey {
	return w.graph.DirtyCells()
}

// Recalculate computes every dirty formula cell and returns how many
// were computed. Reading a cell recalculates on demand anyway; this
// drains the dirty set eagerly, for hosts that want a settled workbook
// before saving or display.
func (w *Workbook) Recalculate() int {
	n := 0
	for _, key := range w.graph.DirtyCells() {
		if !w.graph.IsDirty(key) {
			continue // settled while computing an earlier cell
		}
		w.cellValue(key)
		n++
	}
	return n
}

// cellValue resolves a sheet-qualified key to its current value,
// computing and caching formula cells as needed. A cell that is already
// being computed further up the pull chain reads as the #ERROR! marker,
// which is what breaks reference cycles.
func (w *Workbook) cellValue(key CellKey) Value {
	sheetName, row, col, err := ParseKey(key)
	if err != nil {
		return Empty
	}
	sh, ok := w.sheets[sheetName]
	if !ok {
		return Empty
	}
	c, ok := sh.cells[Key(row, col)]
	if !ok {
		return Empty
	}
	if c.parsed == nil {
		return c.value
	}
	if v, ok := w.graph.Cached(key); ok {
		return v
	}
	if _, busy := w.inProgress[key]; busy {
		return Text(string(ErrEval))
	}
	w.inProgress[key] = struct{}{}
	defer delete(w.inProgress, key)

	ctx := &sheetContext{book: w, sheet: sheetName}
	v, err := w.eval.Evaluate(c.parsed.Root, ctx, row, col)
	if err != nil {
		w.logger.Printf("evaluate %s: %v", key, err)
		v = Text(string(CodeOf(err)))
	}
	w.graph.MarkClean(key, v)
	return v
}

// sheetContext adapts a workbook to EvalContext for formulas homed on
// one sheet.
type sheetContext struct {
	book  *Workbook
	sheet string
}

func (c *sheetContext) CellValue(row, col int, sheet string) Value {
	if sheet == "" {
		sheet = c.sheet
	}
	return c.book.cellValue(SheetKey(sheet, row, col))
}

func (c *sheetContext) RangeValues(r RangeRef, sheet string) [][]Value {
	if sheet == "" {
		sheet = c.sheet
	}
	n := r.Normalize()
	rows := make([][]Value, 0, n.End.Row-n.Start.Row+1)
	for row := n.Start.Row; row <= n.End.Row; row++ {
		line := make([]Value, 0, n.End.Col-n.Start.Col+1)
		for col := n.Start.Col; col <= n.End.Col; col++ {
			line = append(line, c.book.cellValue(SheetKey(sheet, row, col)))
		}
		rows = append(rows, line)
	}
	return rows
}
