package scheme

import (
	"fmt"
	"sort"
)

// edgeKey names a data-flow edge by block name pair, used to persist
// explicit per-edge latch flags (set by LatchConnection) across the
// full DFG/ESG rebuilds that regenerate performs on every topology
// change.
type edgeKey struct {
	source string
	sink   string
}

// regenerate rebuilds the DFG and ESG from the current port
// connections of every block, following the six numbered steps of
// spec §4.3:
//
//  1. enumerate output ports and their active channels
//  2. skip connections whose sink is not a current scheme vertex
//  3. merge connections into one DFG edge per (source,sink) block pair
//  4. compute the edge's latched flag
//  5. mirror into the ESG
//  6. (recomputing the topological order is the caller's job, in
//     recomputeAllLocked, once conflicts are also up to date)
func (s *Scheme) regenerateLocked() {
	for _, v := range s.blocks.verts {
		for _, port := range v.peer.Ports() {
			if port.Direction != PortOutput || port.Channels == nil {
				continue
			}
			for _, endpoint := range port.Channels() {
				sinkVertex := s.blocks.lookup(endpoint.BlockName)
				if sinkVertex == nil {
					// Sink is not currently a scheme vertex; skip (step 2).
					continue
				}

				conn := connection{SourcePort: port.Name, SinkPort: endpoint.PortName}
				e := s.graph.putDFGEdge(v.index, sinkVertex.index, conn)

				key := edgeKey{source: v.name, sink: sinkVertex.name}
				e.latched = s.explicitLatch[key] || v.latchedOutput || sinkVertex.latchedInput

				s.graph.syncESGEdge(v.index, sinkVertex.index, e)
			}
		}
	}
}

// recomputeAllLocked rebuilds the DFG, ESG and RCG from scratch and
// recomputes the cached topological ordering. Called after every
// add/remove/latch mutation. Returns ErrCyclicSchedule, leaving the
// graphs populated but the cached order cleared, when the ESG has no
// topological ordering; callers that must not leave a cyclic schedule
// in place are responsible for rolling back their own mutation and
// calling this again.
func (s *Scheme) recomputeAllLocked() error {
	s.graph.reset()
	s.regenerateLocked()
	s.computeConflictsAllLocked()

	order, err := s.topologicalSortLocked()
	if err != nil {
		s.graph.order = nil
		return err
	}
	s.graph.order = order
	return nil
}

// topologicalSortLocked computes a topological sort of the ESG via
// recursive DFS with three-color marking, visiting vertices and their
// out-neighbors in ascending index order and returning the reverse
// post-order, so that identical inputs always yield identical orderings
// (spec P5). Ties between valid orderings are not broken by ascending
// index: the result is in general not the lexicographically-by-index
// smallest ordering, and blocks with no ESG edges at all come out in
// descending index order.
func (s *Scheme) topologicalSortLocked() ([]string, error) {
	const white, gray, black = 0, 1, 2

	n := s.blocks.size()
	state := make([]int, n)
	order := make([]int, 0, n)

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: cycle through %q", ErrCyclicSchedule, s.blocks.verts[i].name)
		}
		state[i] = gray

		neighbors := make([]int, 0, len(s.graph.esgOut[i]))
		for to := range s.graph.esgOut[i] {
			neighbors = append(neighbors, to)
		}
		sort.Ints(neighbors)
		for _, to := range neighbors {
			if err := visit(to); err != nil {
				return err
			}
		}

		state[i] = black
		order = append(order, i)
		return nil
	}

	for i := 0; i < n; i++ {
		if state[i] == white {
			if err := visit(i); err != nil {
				return nil, err
			}
		}
	}

	// Reverse post-order to obtain the topological order.
	names := make([]string, n)
	for pos, idx := range order {
		names[n-1-pos] = s.blocks.verts[idx].name
	}
	return names, nil
}

// Executable reports whether the ESG currently has a topological
// ordering (invariant I6). It never logs at error level: this is the
// "quiet" mode of the original implementation's computeSchedule.
func (s *Scheme) Executable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.topologicalSortLocked()
	if err != nil {
		s.logger.Debug("executable check: esg is cyclic")
		return false
	}
	return true
}
