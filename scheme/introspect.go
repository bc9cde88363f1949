package scheme

// LatchCount returns how many edges along path are latched. path is an
// ordered walk of block names; LatchCount counts the positions i where
// the Data-Flow Graph edge path[i]->path[i+1] exists and is latched. A
// path shorter than two names has no edges and returns 0. Names that
// don't resolve to a block, or consecutive names with no DFG edge
// between them, simply don't contribute — LatchCount is a query, never
// an error.
func (s *Scheme) LatchCount(path []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latchCountLocked(path)
}

func (s *Scheme) latchCountLocked(path []string) int {
	if len(path) < 2 {
		return 0
	}
	count := 0
	for i := 0; i < len(path)-1; i++ {
		src := s.blocks.lookup(path[i])
		sink := s.blocks.lookup(path[i+1])
		if src == nil || sink == nil {
			continue
		}
		if e := s.graph.dfgEdgeBetween(src.index, sink.index); e != nil && e.latched {
			count++
		}
	}
	return count
}

// MinLatchCount returns the smallest LatchCount found over every simple
// flow cycle (GetFlowCycles), i.e. the fewest latched edges any single
// feedback loop currently closes through. 0 if the scheme has no flow
// cycles at all.
func (s *Scheme) MinLatchCount() (int, error) {
	cycles, err := s.GetFlowCycles()
	if err != nil {
		return 0, err
	}
	if len(cycles) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	min := -1
	for _, cycle := range cycles {
		c := s.latchCountLocked(closeCycle(cycle))
		if min == -1 || c < min {
			min = c
		}
	}
	return min, nil
}

// MaxLatchCount returns the largest LatchCount found over every simple
// flow cycle (GetFlowCycles). 0 if the scheme has no flow cycles at
// all.
func (s *Scheme) MaxLatchCount() (int, error) {
	cycles, err := s.GetFlowCycles()
	if err != nil {
		return 0, err
	}
	if len(cycles) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	max := 0
	for _, cycle := range cycles {
		if c := s.latchCountLocked(closeCycle(cycle)); c > max {
			max = c
		}
	}
	return max, nil
}

// closeCycle turns the open vertex list GetFlowCycles returns for one
// cycle into the closed walk LatchCount expects, by repeating the
// starting name at the end.
func closeCycle(cycle []string) []string {
	closed := make([]string, len(cycle)+1)
	copy(closed, cycle)
	closed[len(cycle)] = cycle[0]
	return closed
}
