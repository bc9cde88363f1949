package scheme

// computeConflictsAllLocked derives the full Resource Conflict Graph
// from the current DFG and each sink port's exclusivity, following
// spec §4.4: for every block B, for every outgoing DFG edge B->S, for
// every connection on that edge whose sink port is EXCLUSIVE, every
// other distinct source block feeding that same sink port conflicts
// with B.
//
// Called as part of recomputeAllLocked, after regenerateLocked has
// rebuilt the DFG, so this always starts from an empty RCG (graph.reset
// already cleared it) and is a pure function of the current DFG plus
// each hook's GetInputExclusivity.
func (s *Scheme) computeConflictsAllLocked() {
	for _, v := range s.blocks.verts {
		s.graph.ensureVertex(v.index)
	}

	for _, v := range s.blocks.verts {
		for sinkIdx, edge := range s.graph.dfgOut[v.index] {
			sinkVertex := s.blocks.verts[sinkIdx]

			for _, conn := range edge.connections {
				mode, err := sinkVertex.hook.GetInputExclusivity(conn.SinkPort)
				if err != nil || mode != Exclusive {
					continue
				}

				for otherSrc, otherEdge := range s.graph.dfgIn[sinkIdx] {
					if otherSrc == v.index {
						continue
					}
					if !edgeFeedsPort(otherEdge, conn.SinkPort) {
						continue
					}
					s.graph.addConflict(v.index, otherSrc)
				}
			}
		}
	}
}

// edgeFeedsPort reports whether e carries at least one connection
// whose sink port is sinkPort.
func edgeFeedsPort(e *dfgEdge, sinkPort string) bool {
	for _, c := range e.connections {
		if c.SinkPort == sinkPort {
			return true
		}
	}
	return false
}
