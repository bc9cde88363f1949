package scheme

import "sort"

// MaxCycleSearchVertices caps how many blocks GetFlowCycles and
// GetExecutionCycles will search before giving up with
// ErrCycleSearchTruncated. Tiernan's algorithm is worst-case
// exponential in the number of simple cycles, and an unbounded search
// over a large, densely cyclic flow graph is not something a control
// loop can afford to block on.
const MaxCycleSearchVertices = 2048

// GetFlowCycles enumerates every simple cycle in the full Data-Flow
// Graph (including latched edges), each as an ordered list of block
// names starting and ending at the same (implicit) vertex. Flow cycles
// are expected in a working scheme: a feedback connection is exactly a
// latched edge closing a flow cycle. Returns ErrCycleSearchTruncated if
// the scheme currently holds more than MaxCycleSearchVertices blocks.
func (s *Scheme) GetFlowCycles() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCyclesLocked(s.graph.dfgOut)
}

// GetExecutionCycles enumerates every simple cycle in the Execution
// Scheduling Graph (latched edges excluded). A non-empty result means
// the ESG is not currently a DAG and Executable reports false; the
// cycle paths are meant to help a caller decide which edge to latch.
func (s *Scheme) GetExecutionCycles() ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCyclesLocked(s.graph.esgOut)
}

// findCyclesLocked runs Tiernan's algorithm over adj: for each vertex v
// in ascending index order, depth-first search the subgraph induced by
// vertices with index >= v for simple paths from v back to v. Searching
// only vertices >= the start on each outer iteration is what keeps each
// cycle from being reported once per vertex it passes through, rather
// than deduping after the fact.
func (s *Scheme) findCyclesLocked(adj map[int]map[int]*dfgEdge) ([][]string, error) {
	n := s.blocks.size()
	if n > MaxCycleSearchVertices {
		return nil, ErrCycleSearchTruncated
	}

	sortedNeighbors := func(i int) []int {
		out := make([]int, 0, len(adj[i]))
		for to := range adj[i] {
			out = append(out, to)
		}
		sort.Ints(out)
		return out
	}

	var cycles [][]int
	for start := 0; start < n; start++ {
		path := []int{start}
		onPath := make(map[int]bool, n)
		onPath[start] = true

		var dfs func(current int)
		dfs = func(current int) {
			for _, next := range sortedNeighbors(current) {
				if next < start {
					continue
				}
				if next == start {
					cyc := make([]int, len(path))
					copy(cyc, path)
					cycles = append(cycles, cyc)
					continue
				}
				if onPath[next] {
					continue
				}
				onPath[next] = true
				path = append(path, next)
				dfs(next)
				path = path[:len(path)-1]
				onPath[next] = false
			}
		}
		dfs(start)
	}

	out := make([][]string, len(cycles))
	for i, cyc := range cycles {
		names := make([]string, len(cyc))
		for j, idx := range cyc {
			names[j] = s.blocks.verts[idx].name
		}
		out[i] = names
	}
	return out, nil
}
