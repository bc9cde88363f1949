package scheme

// connection is one concrete (source_port, sink_port) pair multiplexed
// onto a data-flow edge between two blocks.
type connection struct {
	SourcePort string
	SinkPort   string
}

// dfgEdge is the property bag of one Data-Flow Graph edge: the
// possibly-multiplexed list of port connections between the same pair
// of blocks, and whether the edge is latched (feedback). The ESG, when
// it mirrors this edge, references this same struct rather than
// copying it (spec: "carries a back-reference to the data-flow edge").
type dfgEdge struct {
	connections []connection
	latched     bool
}

// hasConnection reports whether (src,sink) is already recorded,
// de-duplicating regenerate()'s repeated channel scans.
func (e *dfgEdge) hasConnection(c connection) bool {
	for _, existing := range e.connections {
		if existing == c {
			return true
		}
	}
	return false
}

// graphModel holds the DFG, the derived ESG, and the derived RCG, all
// keyed by the dense block indices owned by blockTable. No graph holds
// a pointer into another graph's storage or into blockTable; every
// cross-reference goes through an integer index (spec §9).
type graphModel struct {
	dfgOut map[int]map[int]*dfgEdge // source -> sink -> edge
	dfgIn  map[int]map[int]*dfgEdge // sink -> source -> edge (mirror, for conflict analysis & removal)

	esgOut map[int]map[int]*dfgEdge // subset of dfgOut where !latched
	esgIn  map[int]map[int]*dfgEdge

	rcg map[int]map[int]struct{} // undirected, stored symmetrically

	// order caches the last successful topological sort of the ESG, as
	// block names. nil when the ESG is not currently a DAG.
	order []string
}

func newGraphModel() *graphModel {
	return &graphModel{
		dfgOut: make(map[int]map[int]*dfgEdge),
		dfgIn:  make(map[int]map[int]*dfgEdge),
		esgOut: make(map[int]map[int]*dfgEdge),
		esgIn:  make(map[int]map[int]*dfgEdge),
		rcg:    make(map[int]map[int]struct{}),
		order:  []string{},
	}
}

// reset clears all graph content but keeps the maps allocated, ready
// to be rebuilt for a fresh set of n vertices.
func (g *graphModel) reset() {
	for k := range g.dfgOut {
		delete(g.dfgOut, k)
	}
	for k := range g.dfgIn {
		delete(g.dfgIn, k)
	}
	for k := range g.esgOut {
		delete(g.esgOut, k)
	}
	for k := range g.esgIn {
		delete(g.esgIn, k)
	}
	for k := range g.rcg {
		delete(g.rcg, k)
	}
	g.order = nil
}

// ensureVertex makes sure vertex i has (possibly empty) adjacency
// buckets in every graph, so range loops never need a presence check.
func (g *graphModel) ensureVertex(i int) {
	if g.dfgOut[i] == nil {
		g.dfgOut[i] = make(map[int]*dfgEdge)
	}
	if g.dfgIn[i] == nil {
		g.dfgIn[i] = make(map[int]*dfgEdge)
	}
	if g.esgOut[i] == nil {
		g.esgOut[i] = make(map[int]*dfgEdge)
	}
	if g.esgIn[i] == nil {
		g.esgIn[i] = make(map[int]*dfgEdge)
	}
	if g.rcg[i] == nil {
		g.rcg[i] = make(map[int]struct{})
	}
}

// dfgEdgeBetween returns the DFG edge from src to sink, or nil.
func (g *graphModel) dfgEdgeBetween(src, sink int) *dfgEdge {
	return g.dfgOut[src][sink]
}

// putDFGEdge records (or augments) the DFG edge src->sink with
// connection c, and returns the edge (new or existing).
func (g *graphModel) putDFGEdge(src, sink int, c connection) *dfgEdge {
	g.ensureVertex(src)
	g.ensureVertex(sink)

	e := g.dfgOut[src][sink]
	if e == nil {
		e = &dfgEdge{}
		g.dfgOut[src][sink] = e
		g.dfgIn[sink][src] = e
	}
	if !e.hasConnection(c) {
		e.connections = append(e.connections, c)
	}
	return e
}

// syncESGEdge makes the ESG mirror of src->sink match e.latched: present
// (referencing e) when not latched, absent when latched. Returns true
// if the ESG edge set actually changed (added or removed).
func (g *graphModel) syncESGEdge(src, sink int, e *dfgEdge) bool {
	_, existed := g.esgOut[src][sink]
	if e.latched {
		if existed {
			delete(g.esgOut[src], sink)
			delete(g.esgIn[sink], src)
			return true
		}
		return false
	}
	if !existed {
		g.esgOut[src][sink] = e
		g.esgIn[sink][src] = e
		return true
	}
	return false
}

// addConflict records an undirected conflict edge; a no-op if already
// present or if a and b are the same block (spec I4).
func (g *graphModel) addConflict(a, b int) {
	if a == b {
		return
	}
	g.ensureVertex(a)
	g.ensureVertex(b)
	g.rcg[a][b] = struct{}{}
	g.rcg[b][a] = struct{}{}
}

// conflictNeighbors returns the indices conflicting with i.
func (g *graphModel) conflictNeighbors(i int) []int {
	neighbors := make([]int, 0, len(g.rcg[i]))
	for n := range g.rcg[i] {
		neighbors = append(neighbors, n)
	}
	return neighbors
}
