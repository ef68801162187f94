package sheetcalc

import (
	"fmt"
	"sort"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // the cell cannot produce a useful value
	SeverityWarning                 // the cell evaluates, possibly not as intended
)

// ValidationIssue represents a single problem found in a workbook's
// formulas.
type ValidationIssue struct {
	Severity Severity
	CellRef  CellRef
	Message  string
}

// String formats the issue as "[ERROR] Sheet1!A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.CellRef, v.Message)
}

// Validate statically checks every formula in the workbook: text that
// does not parse, calls to functions the evaluator does not know,
// references to sheets the workbook does not have, and reference
// cycles. Evaluation never fails on any of these; they surface here so
// callers can report them before values are read. Issues come out
// ordered by sheet, then row, then column.
func Validate(w *Workbook) []ValidationIssue {
	var issues []ValidationIssue
	for _, name := range w.SheetNames() {
		s := w.sheets[name]
		for _, fc := range formulaCells(s) {
			issues = append(issues, validateFormula(w, name, fc)...)
		}
	}
	return issues
}

// formulaCell pairs a formula cell's coordinates with its stored state,
// for deterministic walks over a sheet.
type formulaCell struct {
	row, col int
	raw      string
	parsed   *Parsed
}

// formulaCells lists a sheet's formula cells in row, column order.
func formulaCells(s *Sheet) []formulaCell {
	var cells []formulaCell
	for key, c := range s.cells {
		if c.parsed == nil {
			continue
		}
		_, row, col, err := ParseKey(key)
		if err != nil {
			continue
		}
		cells = append(cells, formulaCell{row: row, col: col, raw: c.raw, parsed: c.parsed})
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].row != cells[j].row {
			return cells[i].row < cells[j].row
		}
		return cells[i].col < cells[j].col
	})
	return cells
}

func validateFormula(w *Workbook, sheet string, fc formulaCell) []ValidationIssue {
	ref := NewCellRef(sheet, fc.row, fc.col)
	if fc.parsed.Err != nil {
		return []ValidationIssue{{
			Severity: SeverityError,
			CellRef:  ref,
			Message:  fmt.Sprintf("formula does not parse: %v", fc.parsed.Err),
		}}
	}

	var issues []ValidationIssue

	unknown := map[string]struct{}{}
	walkFuncNames(fc.parsed.Root, func(name string) {
		if _, ok := w.eval.funcs[name]; !ok {
			unknown[name] = struct{}{}
		}
	})
	for _, name := range sortedNames(unknown) {
		issues = append(issues, ValidationIssue{
			Severity: SeverityError,
			CellRef:  ref,
			Message:  fmt.Sprintf("calls unknown function %s", name),
		})
	}

	missing := map[string]struct{}{}
	for dep := range fc.parsed.Deps {
		name, _, _, err := ParseKey(dep)
		if err != nil || name == "" {
			continue
		}
		if w.sheets[name] == nil {
			missing[name] = struct{}{}
		}
	}
	for _, name := range sortedNames(missing) {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  ref,
			Message:  fmt.Sprintf("references missing sheet %q, reads as empty", name),
		})
	}

	if inCycle(w.graph, SheetKey(sheet, fc.row, fc.col)) {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  ref,
			Message:  "participates in a reference cycle",
		})
	}
	return issues
}

func sortedNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// walkFuncNames visits every function call in a tree.
func walkFuncNames(n Node, fn func(name string)) {
	switch node := n.(type) {
	case *FuncNode:
		fn(node.Name)
		for _, arg := range node.Args {
			walkFuncNames(arg, fn)
		}
	case *BinaryNode:
		walkFuncNames(node.Left, fn)
		walkFuncNames(node.Right, fn)
	}
}

// inCycle reports whether the key can reach itself through dependency
// edges.
func inCycle(g *Graph, key CellKey) bool {
	visited := map[CellKey]struct{}{}
	work := g.Dependencies(key)
	for len(work) > 0 {
		k := work[len(work)-1]
		work = work[:len(work)-1]
		if k == key {
			return true
		}
		if _, seen := visited[k]; seen {
			continue
		}
		visited[k] = struct{}{}
		work = append(work, g.Dependencies(k)...)
	}
	return false
}
