package scheme

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// EnableBlock starts the named block. A block already in StateRunning
// is a no-op success; otherwise the block must be in StateConfigured
// (ErrNotConfigured otherwise). If any block conflicting
// with it (an RCG neighbor) is currently running, EnableBlock fails with
// ErrConflict unless force is true, in which case every running
// conflicting neighbor is disabled first (spec §4.7: a forced enable
// cascades disable across the conflict graph before starting). Returns
// ErrStartFailed if the peer's Start hook itself reports failure.
func (s *Scheme) EnableBlock(name string, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enableOneLocked(name, force)
}

// DisableBlock stops the named block. Stopping a block that is not
// currently running is a no-op success. Returns ErrStopFailed if the
// peer's Stop hook reports failure.
func (s *Scheme) DisableBlock(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disableOneLocked(name)
}

// EnableBlocks enables every name in names (each a block or group,
// expanded via C5), in list order. Unless force is true, the call first
// checks every target and returns ErrConflict, before enabling anything,
// if any block conflicting with a target is currently running. In
// strict mode the whole call is all-or-nothing: if
// any block cannot be enabled, every block this call already started is
// stopped again and the first error is returned. In non-strict mode
// every name is attempted regardless of earlier failures and all
// failures are returned joined together (errors.Join), leaving
// whichever blocks did start running.
func (s *Scheme) EnableBlocks(names []string, force, strict bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.expandAllNotInSchemeLocked(names)
	if err != nil {
		return fmt.Errorf("scheme: EnableBlocks: %w", err)
	}
	s.logger.Info("enabling blocks", namesField("blocks", targets))

	if !force {
		for _, name := range targets {
			for _, otherIdx := range s.graph.conflictNeighbors(s.blocks.lookup(name).index) {
				other := s.blocks.verts[otherIdx]
				if other.peer.State() == StateRunning {
					return fmt.Errorf("scheme: EnableBlocks(%q): conflicts with running block %q: %w", name, other.name, ErrConflict)
				}
			}
		}
	}

	var started []string
	var errs []error
	for _, name := range targets {
		if err := s.enableOneLocked(name, force); err != nil {
			if strict {
				for _, done := range started {
					_ = s.disableOneLocked(done)
				}
				return fmt.Errorf("scheme: EnableBlocks(%q): %w", name, err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		started = append(started, name)
	}
	return errors.Join(errs...)
}

// DisableBlocks disables every name in names (each a block or group,
// expanded via C5). Unlike EnableBlocks there is no conflict to reject
// on, so strict only controls whether a mid-batch Stop failure aborts
// the remaining names (strict) or the batch continues and joins every
// failure (non-strict).
func (s *Scheme) DisableBlocks(names []string, strict bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets, err := s.expandAllNotInSchemeLocked(names)
	if err != nil {
		return fmt.Errorf("scheme: DisableBlocks: %w", err)
	}
	s.logger.Info("disabling blocks", namesField("blocks", targets))

	var errs []error
	for _, name := range targets {
		if err := s.disableOneLocked(name); err != nil {
			if strict {
				return fmt.Errorf("scheme: DisableBlocks(%q): %w", name, err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// SwitchBlocks disables every name in disable, then enables every name
// in enable (each a block or group, expanded via C5), in that order, so
// that a resource the disabled set frees up is available to the enabled
// set without requiring force. strict controls both phases
// independently of the other: in strict mode the first failure in a
// phase aborts the rest of that phase's names immediately; in
// non-strict mode every name in both sets is attempted and every
// failure is joined into the returned error.
func (s *Scheme) SwitchBlocks(disable, enable []string, strict, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	disableTargets, err := s.expandAllNotInSchemeLocked(disable)
	if err != nil {
		return fmt.Errorf("scheme: SwitchBlocks: %w", err)
	}
	enableTargets, err := s.expandAllNotInSchemeLocked(enable)
	if err != nil {
		return fmt.Errorf("scheme: SwitchBlocks: %w", err)
	}
	s.logger.Info("switching blocks", namesField("disable", disableTargets), namesField("enable", enableTargets))

	var errs []error
	for _, name := range disableTargets {
		if err := s.disableOneLocked(name); err != nil {
			errs = append(errs, fmt.Errorf("disable %s: %w", name, err))
			if strict {
				break
			}
		}
	}
	for _, name := range enableTargets {
		if err := s.enableOneLocked(name, force); err != nil {
			errs = append(errs, fmt.Errorf("enable %s: %w", name, err))
			if strict {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// SetEnabledBlocks makes running exactly the blocks named (expanded via
// C5): every currently-running block not in the set is disabled first,
// then every named block not already running is enabled, never forced
// — two blocks that conflict cannot both land in the requested set via
// this call. strict controls both phases: in strict mode the first
// failure aborts the rest of that phase's names immediately; in
// non-strict mode every name is attempted regardless and every failure
// is joined into the returned error.
func (s *Scheme) SetEnabledBlocks(names []string, strict bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	want, err := s.expandAllNotInSchemeLocked(names)
	if err != nil {
		return fmt.Errorf("scheme: SetEnabledBlocks: %w", err)
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, name := range want {
		wantSet[name] = struct{}{}
	}
	s.logger.Info("setting enabled blocks", namesField("blocks", want))

	var errs []error
	for _, name := range s.blocks.names() {
		v := s.blocks.lookup(name)
		if _, keep := wantSet[name]; keep {
			continue
		}
		if v.peer.State() != StateRunning {
			continue
		}
		if err := s.disableOneLocked(name); err != nil {
			errs = append(errs, fmt.Errorf("disable %s: %w", name, err))
			if strict {
				break
			}
		}
	}
	for _, name := range want {
		if s.blocks.lookup(name).peer.State() == StateRunning {
			continue
		}
		if err := s.enableOneLocked(name, false); err != nil {
			errs = append(errs, fmt.Errorf("enable %s: %w", name, err))
			if strict {
				break
			}
		}
	}
	return errors.Join(errs...)
}

// enableOneLocked is the single-block enable primitive shared by
// EnableBlock and the bulk operations. Once the conflict check clears,
// hook.Init(lastUpdate) always runs before peer.Start() is attempted,
// regardless of what Start reports (spec §4.7 steps 6-7).
func (s *Scheme) enableOneLocked(name string, force bool) error {
	v := s.blocks.lookup(name)
	if v == nil {
		return fmt.Errorf("scheme: EnableBlock(%q): %w", name, ErrNotInScheme)
	}
	if v.peer.State() == StateRunning {
		return nil
	}
	if v.peer.State() != StateConfigured {
		return fmt.Errorf("scheme: EnableBlock(%q): %w", name, ErrNotConfigured)
	}

	for _, otherIdx := range s.graph.conflictNeighbors(v.index) {
		other := s.blocks.verts[otherIdx]
		if other.peer.State() != StateRunning {
			continue
		}
		if !force {
			return fmt.Errorf("scheme: EnableBlock(%q): conflicts with running block %q: %w", name, other.name, ErrConflict)
		}
		if err := s.disableOneLocked(other.name); err != nil {
			return fmt.Errorf("scheme: EnableBlock(%q): forced disable of %q: %w", name, other.name, err)
		}
	}

	if err := v.hook.Init(s.lastUpdate); err != nil {
		s.logger.Warn("block init hook failed", blockField(name), zap.Error(err))
	}
	if !v.peer.Start() {
		s.logger.Error("block start failed", blockField(name))
		if s.metrics != nil {
			s.metrics.enableFailuresTotal.Inc()
		}
		return fmt.Errorf("scheme: EnableBlock(%q): %w", name, ErrStartFailed)
	}
	s.logger.Info("block enabled", blockField(name))
	return nil
}

// disableOneLocked is the single-block disable primitive shared by
// DisableBlock and the bulk operations.
func (s *Scheme) disableOneLocked(name string) error {
	v := s.blocks.lookup(name)
	if v == nil {
		return fmt.Errorf("scheme: DisableBlock(%q): %w", name, ErrNotInScheme)
	}
	if v.peer.State() != StateRunning {
		return nil
	}
	if !v.peer.Stop() {
		s.logger.Error("block stop failed", blockField(name))
		if s.metrics != nil {
			s.metrics.disableFailuresTotal.Inc()
		}
		return fmt.Errorf("scheme: DisableBlock(%q): %w", name, ErrStopFailed)
	}
	s.logger.Info("block disabled", blockField(name))
	return nil
}

// expandAllNotInSchemeLocked is expandAllLocked for the enable-policy
// bulk operations: it rejects the list with ErrNotInScheme in the same
// way, but keeps the expanded blocks in list order (each group's members
// sorted by name), dropping repeats, so bulk operations act in the
// order the caller gave.
func (s *Scheme) expandAllNotInSchemeLocked(names []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range names {
		expanded, ok := s.resolveNamesLocked(name)
		if !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrNotInScheme)
		}
		for _, m := range expanded {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}
