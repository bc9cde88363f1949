package scheme

// blockVertex is the vertex record shared by the DFG, ESG and RCG: one
// record per block, referenced by all three graphs through its dense
// index rather than by pointer, so no graph holds a back-pointer into
// another (spec §9 design note).
type blockVertex struct {
	index         int
	name          string
	peer          Peer
	hook          Hook
	latchedInput  bool
	latchedOutput bool
}

// blockTable is the arena: it owns the only copy of each blockVertex
// and assigns the dense, contiguous indices ([0,N)) that the DFG, ESG
// and RCG adjacency maps key off of. Removing a block reindexes every
// surviving vertex so the index space never has holes (invariant I5).
type blockTable struct {
	byName []string       // insertion order, for GetBlocks
	index  map[string]int // name -> index into verts
	verts  []*blockVertex // dense, index == verts[i].index
}

func newBlockTable() *blockTable {
	return &blockTable{
		index: make(map[string]int),
	}
}

// lookup returns the vertex for name, or nil if absent.
func (t *blockTable) lookup(name string) *blockVertex {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.verts[i]
}

// has reports whether name is a known block.
func (t *blockTable) has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// add inserts a new vertex at the next dense index. Caller guarantees
// name is not already present.
func (t *blockTable) add(v *blockVertex) {
	v.index = len(t.verts)
	t.verts = append(t.verts, v)
	t.index[v.name] = v.index
	t.byName = append(t.byName, v.name)
}

// remove deletes the vertex named name and reindexes every survivor so
// indices remain the dense range [0,N). Returns the removed vertex's
// original index, or -1 if name was unknown.
func (t *blockTable) remove(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}

	removedIndex := i
	t.verts = append(t.verts[:i], t.verts[i+1:]...)
	delete(t.index, name)

	for pos := range t.byName {
		if t.byName[pos] == name {
			t.byName = append(t.byName[:pos], t.byName[pos+1:]...)
			break
		}
	}

	// Reindex survivors starting at the removed slot.
	for pos := i; pos < len(t.verts); pos++ {
		t.verts[pos].index = pos
		t.index[t.verts[pos].name] = pos
	}

	return removedIndex
}

// size reports the number of blocks currently held.
func (t *blockTable) size() int {
	return len(t.verts)
}

// names returns block names in insertion order (spec C9 GetBlocks).
func (t *blockTable) names() []string {
	out := make([]string, len(t.byName))
	copy(out, t.byName)
	return out
}
