package scheme

import (
	"fmt"
	"sort"
)

// isGroupLocked reports whether name is a known group.
func (s *Scheme) isGroupLocked(name string) bool {
	_, ok := s.groups[name]
	return ok
}

// HasGroup reports whether name is a known group.
func (s *Scheme) HasGroup(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isGroupLocked(name)
}

// AddGroup creates an empty group named name. Idempotent: adding an
// existing group is a no-op success. Returns ErrNameCollision if name
// is already a block name.
func (s *Scheme) AddGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocks.has(name) {
		return fmt.Errorf("scheme: AddGroup(%q): %w", name, ErrNameCollision)
	}
	if _, ok := s.groups[name]; !ok {
		s.groups[name] = make(map[string]struct{})
	}
	return nil
}

// SetGroup replaces the membership of group name, validating every
// proposed member resolves to a known block, a known group, or name
// itself (self-reference, to allow a group to be defined in terms of
// itself — the reference is broken at expansion time, spec §4.5/§9).
// On validation failure the group is left unchanged and
// ErrUnknownMember is returned. Returns ErrNameCollision if name is
// already a block name.
func (s *Scheme) SetGroup(name string, members []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocks.has(name) {
		return fmt.Errorf("scheme: SetGroup(%q): %w", name, ErrNameCollision)
	}

	validated := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == name || s.blocks.has(m) || s.isGroupLocked(m) {
			validated[m] = struct{}{}
			continue
		}
		return fmt.Errorf("scheme: SetGroup(%q): member %q: %w", name, m, ErrUnknownMember)
	}

	s.groups[name] = validated
	return nil
}

// AddToGroup adds member to the existing group name. Returns
// ErrUnknownName if name is not a known group, or ErrUnknownMember if
// member resolves to neither a block nor a group (and isn't name
// itself).
func (s *Scheme) AddToGroup(name, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isGroupLocked(name) {
		return fmt.Errorf("scheme: AddToGroup(%q): %w", name, ErrUnknownName)
	}
	if member != name && !s.blocks.has(member) && !s.isGroupLocked(member) {
		return fmt.Errorf("scheme: AddToGroup(%q, %q): %w", name, member, ErrUnknownMember)
	}
	s.groups[name][member] = struct{}{}
	return nil
}

// RemoveFromGroup removes member from group name. Idempotent: removing
// an absent member is a no-op success. Returns ErrUnknownName if name
// is not a known group.
func (s *Scheme) RemoveFromGroup(name, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isGroupLocked(name) {
		return fmt.Errorf("scheme: RemoveFromGroup(%q): %w", name, ErrUnknownName)
	}
	delete(s.groups[name], member)
	return nil
}

// DisbandGroup removes group name entirely. Always succeeds, even if
// name was not a known group.
func (s *Scheme) DisbandGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.groups, name)
	return nil
}

// GetGroupMembers recursively expands name into the set of block names
// it denotes: {name} if name is a block, or the union of the expansion
// of each member if name is a group. Returns ErrUnknownName if name is
// neither. Expansion tolerates group-membership cycles (a visited set
// threaded through the whole recursion breaks them, returning ∅ for
// the repeated path) and silently drops any nested member that no
// longer resolves to a block or group.
func (s *Scheme) GetGroupMembers(name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.blocks.has(name) && !s.isGroupLocked(name) {
		return nil, fmt.Errorf("scheme: GetGroupMembers(%q): %w", name, ErrUnknownName)
	}

	visited := make(map[string]struct{})
	set := s.expandLocked(name, visited)

	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// expandLocked is the unguarded recursive expansion used internally by
// GetGroupMembers, LatchInputs/LatchOutputs and the enable policy.
// Unlike GetGroupMembers it never errors: an unresolved nested name is
// simply excluded from the result (spec: "if a referenced member
// vanishes, expansion skips it silently").
func (s *Scheme) expandLocked(name string, visited map[string]struct{}) map[string]struct{} {
	if s.blocks.has(name) {
		return map[string]struct{}{name: {}}
	}

	members, isGroup := s.groups[name]
	if !isGroup {
		return map[string]struct{}{}
	}
	if _, seen := visited[name]; seen {
		return map[string]struct{}{}
	}
	visited[name] = struct{}{}

	out := make(map[string]struct{})
	for member := range members {
		for m := range s.expandLocked(member, visited) {
			out[m] = struct{}{}
		}
	}
	return out
}

// resolveNamesLocked expands name (block or group) into a sorted list
// of block names. Used by enable/latch operations that accept either
// kind of name; the bool reports whether name resolved to a known
// block or group at all (false means neither — callers surface their
// own sentinel, since latch ops and enable ops disagree on which one:
// ErrNotInScheme vs ErrUnknownName).
func (s *Scheme) resolveNamesLocked(name string) ([]string, bool) {
	if !s.blocks.has(name) && !s.isGroupLocked(name) {
		return nil, false
	}
	set := s.expandLocked(name, make(map[string]struct{}))
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, true
}
