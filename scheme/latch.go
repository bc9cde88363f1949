package scheme

import "fmt"

// cloneLatchMap copies the explicit per-edge latch table, used to snapshot
// state before a cartesian latch attempt that might have to be undone.
func cloneLatchMap(m map[edgeKey]bool) map[edgeKey]bool {
	out := make(map[edgeKey]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LatchInputs marks every input port of sinkSpec (a block name or a
// group name, expanded via C5) as latched or unlatched. A latched input
// breaks any DFG edge feeding it out of the ESG, regardless of what
// LatchConnection/Latch say about the specific edge (spec §4.6: a
// port-level latch and an edge-level latch both contribute to whether
// an edge is latched overall). Returns ErrNotInScheme if sinkSpec names
// neither a block nor a group.
func (s *Scheme) LatchInputs(sinkSpec string, latch bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, ok := s.resolveNamesLocked(sinkSpec)
	if !ok {
		return fmt.Errorf("scheme: LatchInputs(%q): %w", sinkSpec, ErrNotInScheme)
	}
	var flipped []string
	for _, name := range names {
		if v := s.blocks.lookup(name); v.latchedInput != latch {
			v.latchedInput = latch
			flipped = append(flipped, name)
		}
	}
	// Flipping a port-level latch can only add or remove ESG edges; it
	// cannot make the underlying DFG topology itself inconsistent, but
	// it can still turn an acyclic ESG cyclic or vice versa, so the
	// ordering must be recomputed and failures rolled back.
	return s.applyLatchWithRollback(flipped, nil)
}

// LatchOutputs is LatchInputs' mirror for output ports of sourceSpec.
func (s *Scheme) LatchOutputs(sourceSpec string, latch bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, ok := s.resolveNamesLocked(sourceSpec)
	if !ok {
		return fmt.Errorf("scheme: LatchOutputs(%q): %w", sourceSpec, ErrNotInScheme)
	}
	var flipped []string
	for _, name := range names {
		if v := s.blocks.lookup(name); v.latchedOutput != latch {
			v.latchedOutput = latch
			flipped = append(flipped, name)
		}
	}
	return s.applyLatchWithRollback(nil, flipped)
}

// applyLatchWithRollback recomputes the graphs after a port-level latch
// flip, undoing the flip on every name in inputs/outputs (the names
// whose flag the caller actually changed) and recomputing again if the
// result would be cyclic.
func (s *Scheme) applyLatchWithRollback(inputs, outputs []string) error {
	if err := s.recomputeAllLocked(); err != nil {
		for _, name := range inputs {
			s.blocks.lookup(name).latchedInput = !s.blocks.lookup(name).latchedInput
		}
		for _, name := range outputs {
			s.blocks.lookup(name).latchedOutput = !s.blocks.lookup(name).latchedOutput
		}
		_ = s.recomputeAllLocked()
		return fmt.Errorf("scheme: latch: %w", err)
	}
	return nil
}

// LatchConnection sets the explicit latch flag on the data-flow edge(s)
// from source to sink, where either may be a block or a group name
// (expanded via C5, cartesian across both expansions). A self-reference
// (source == sink, checked before expansion) is implicitly latched and
// this call is a no-op success, mirroring the spec's self-loop
// short-circuit. Missing edges are silently skipped (non-strict); use
// Latch with strict=true to reject on a missing edge instead.
func (s *Scheme) LatchConnection(source, sink string, latch bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if source == sink {
		return nil
	}

	sources, ok := s.resolveNamesLocked(source)
	if !ok {
		return fmt.Errorf("scheme: LatchConnection(%q, %q): %w", source, sink, ErrNotInScheme)
	}
	sinks, ok := s.resolveNamesLocked(sink)
	if !ok {
		return fmt.Errorf("scheme: LatchConnection(%q, %q): %w", source, sink, ErrNotInScheme)
	}

	return s.latchCartesianLocked(sources, sinks, latch, false)
}

// Latch latches or unlatches every edge in the cartesian product of
// sources x sinks (each name a block or a group, expanded via C5).
// Self-pairs (a source equal to a sink after expansion) are implicitly
// latched already and are skipped. In strict mode, any pair with no
// underlying DFG edge rejects the whole call with ErrNoSuchEdge and
// leaves every explicit latch flag unchanged; in non-strict mode such
// pairs are silently skipped.
func (s *Scheme) Latch(sources, sinks []string, latch, strict bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcNames, err := s.expandAllLocked(sources)
	if err != nil {
		return fmt.Errorf("scheme: Latch: %w", err)
	}
	sinkNames, err := s.expandAllLocked(sinks)
	if err != nil {
		return fmt.Errorf("scheme: Latch: %w", err)
	}

	return s.latchCartesianLocked(srcNames, sinkNames, latch, strict)
}

// expandAllLocked resolves and unions a list of block-or-group names,
// rejecting the whole list with ErrNotInScheme on the first name that
// resolves to neither.
func (s *Scheme) expandAllLocked(names []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, name := range names {
		expanded, ok := s.resolveNamesLocked(name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrNotInScheme)
		}
		for _, m := range expanded {
			seen[m] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	return out, nil
}

// latchCartesianLocked sets the explicit latch flag to latch for every
// (src,snk) pair in sources x sinks (skipping src==snk pairs, which are
// self-loops and already implicitly latched), honoring strict as
// described on Latch, then recomputes the schedule. On any rejection or
// a resulting cyclic schedule, every explicit latch flag is restored to
// its value from before this call.
func (s *Scheme) latchCartesianLocked(sources, sinks []string, latch, strict bool) error {
	snapshot := cloneLatchMap(s.explicitLatch)
	changed := false

	for _, src := range sources {
		for _, snk := range sinks {
			if src == snk {
				continue
			}
			ok, err := s.latchSinglePairLocked(src, snk, latch, strict)
			if err != nil {
				s.explicitLatch = snapshot
				return fmt.Errorf("scheme: latch(%q, %q): %w", src, snk, err)
			}
			if ok {
				changed = true
			}
		}
	}

	if !changed {
		return nil
	}
	if err := s.recomputeAllLocked(); err != nil {
		s.explicitLatch = snapshot
		_ = s.recomputeAllLocked()
		return fmt.Errorf("scheme: latch: %w", err)
	}
	return nil
}

// latchSinglePairLocked sets or clears the explicit latch flag on the
// DFG edge src->snk. Returns false without error if the flag was
// already set to latch (idempotent no-op) or, in non-strict mode, if no
// such DFG edge exists. Returns ErrNoSuchEdge in strict mode when the
// edge doesn't exist.
func (s *Scheme) latchSinglePairLocked(src, snk string, latch, strict bool) (bool, error) {
	srcVertex := s.blocks.lookup(src)
	snkVertex := s.blocks.lookup(snk)
	if srcVertex == nil || snkVertex == nil || s.graph.dfgEdgeBetween(srcVertex.index, snkVertex.index) == nil {
		if strict {
			return false, ErrNoSuchEdge
		}
		return false, nil
	}

	key := edgeKey{source: src, sink: snk}
	if s.explicitLatch[key] == latch {
		return false, nil
	}
	if latch {
		s.explicitLatch[key] = true
	} else {
		delete(s.explicitLatch, key)
	}
	return true, nil
}
