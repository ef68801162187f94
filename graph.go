package sheetcalc

// GraphNode tracks one cell in the dependency graph. A node carries a
// formula, or exists only as an anchor for the dependents of a plain
// data cell.
type GraphNode struct {
	Key          CellKey
	FormulaText  string
	Dependencies map[CellKey]struct{}
	Dependents   map[CellKey]struct{}
	Dirty        bool
	Cached       Value
	HasCached    bool
	hasFormula   bool
}

// Graph is the incremental dependency graph over formula cells, an arena
// of nodes indexed by CellKey. It is pure bookkeeping: nothing here
// evaluates formulas or schedules work, and the traversal order of the
// dirty set is the host's concern.
type Graph struct {
	nodes map[CellKey]*GraphNode
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{nodes: map[CellKey]*GraphNode{}}
}

func (g *Graph) getOrCreate(key CellKey) *GraphNode {
	if n, ok := g.nodes[key]; ok {
		return n
	}
	n := &GraphNode{
		Key:        key,
		Dependents: map[CellKey]struct{}{},
	}
	g.nodes[key] = n
	return n
}

// cleanupIfEmpty drops a node that carries no formula and anchors no
// dependents.
func (g *Graph) cleanupIfEmpty(n *GraphNode) {
	if !n.hasFormula && len(n.Dependents) == 0 {
		delete(g.nodes, n.Key)
	}
}

// AddFormula registers a formula cell with its dependency set. Replacing
// an existing formula performs the removal path first so no stale
// reverse edge survives. Dependency endpoints are materialized as anchor
// nodes so that invalidating a plain data cell reaches the formulas
// reading it. The new node starts dirty.
func (g *Graph) AddFormula(key CellKey, formulaText string, deps map[CellKey]struct{}) {
	if n, ok := g.nodes[key]; ok && n.hasFormula {
		g.RemoveFormula(key)
	}
	n := g.getOrCreate(key)
	n.hasFormula = true
	n.FormulaText = formulaText
	n.Dirty = true
	n.Cached = Empty
	n.HasCached = false
	n.Dependencies = make(map[CellKey]struct{}, len(deps))
	for dep := range deps {
		n.Dependencies[dep] = struct{}{}
		g.getOrCreate(dep).Dependents[key] = struct{}{}
	}
}

// RemoveFormula strips the cell from each dependency's dependents and
// clears the formula. The node itself survives as an anchor while other
// formulas still depend on it.
func (g *Graph) RemoveFormula(key CellKey) {
	n, ok := g.nodes[key]
	if !ok || !n.hasFormula {
		return
	}
	for dep := range n.Dependencies {
		if dn, ok := g.nodes[dep]; ok {
			delete(dn.Dependents, key)
			if dn != n {
				g.cleanupIfEmpty(dn)
			}
		}
	}
	n.hasFormula = false
	n.FormulaText = ""
	n.Dependencies = nil
	n.Dirty = false
	n.Cached = Empty
	n.HasCached = false
	g.cleanupIfEmpty(n)
}

// Invalidate marks the cell and every transitive dependent dirty,
// clearing their cached values. The walk is an explicit worklist with a
// visited set, so it terminates after touching each node at most once
// even when formulas form a cycle. Nodes are never created or destroyed
// here.
func (g *Graph) Invalidate(key CellKey) {
	visited := map[CellKey]struct{}{}
	work := []CellKey{key}
	for len(work) > 0 {
		k := work[len(work)-1]
		work = work[:len(work)-1]
		if _, seen := visited[k]; seen {
			continue
		}
		visited[k] = struct{}{}
		n, ok := g.nodes[k]
		if !ok {
			continue
		}
		if n.hasFormula {
			n.Dirty = true
			n.Cached = Empty
			n.HasCached = false
		}
		for dep := range n.Dependents {
			work = append(work, dep)
		}
	}
}

// DirtyCells returns the keys of every dirty formula cell, in no
// particular order.
func (g *Graph) DirtyCells() []CellKey {
	var dirty []CellKey
	for key, n := range g.nodes {
		if n.hasFormula && n.Dirty {
			dirty = append(dirty, key)
		}
	}
	return dirty
}

// MarkClean stores a freshly computed value and clears the dirty flag.
func (g *Graph) MarkClean(key CellKey, v Value) {
	n, ok := g.nodes[key]
	if !ok || !n.hasFormula {
		return
	}
	n.Dirty = false
	n.Cached = v
	n.HasCached = true
}

// Cached returns the cached value of a clean formula cell.
func (g *Graph) Cached(key CellKey) (Value, bool) {
	n, ok := g.nodes[key]
	if !ok || !n.HasCached {
		return Empty, false
	}
	return n.Cached, true
}

// IsDirty reports whether the key names a dirty formula cell.
func (g *Graph) IsDirty(key CellKey) bool {
	n, ok := g.nodes[key]
	return ok && n.hasFormula && n.Dirty
}

// HasFormula reports whether the key names a registered formula cell.
func (g *Graph) HasFormula(key CellKey) bool {
	n, ok := g.nodes[key]
	return ok && n.hasFormula
}

// Formula returns the stored formula text of a formula cell.
func (g *Graph) Formula(key CellKey) (string, bool) {
	n, ok := g.nodes[key]
	if !ok || !n.hasFormula {
		return "", false
	}
	return n.FormulaText, true
}

// Dependents returns the keys of the formulas that read the given cell.
func (g *Graph) Dependents(key CellKey) []CellKey {
	n, ok := g.nodes[key]
	if !ok {
		return nil
	}
	out := make([]CellKey, 0, len(n.Dependents))
	for k := range n.Dependents {
		out = append(out, k)
	}
	return out
}

// Dependencies returns the keys a formula cell reads.
func (g *Graph) Dependencies(key CellKey) []CellKey {
	n, ok := g.nodes[key]
	if !ok {
		return nil
	}
	out := make([]CellKey, 0, len(n.Dependencies))
	for k := range n.Dependencies {
		out = append(out, k)
	}
	return out
}
