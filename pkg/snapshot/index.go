package snapshot

// Index is an address-keyed view over a snapshot's blocks.
//
// Addresses are unique per snapshot by contract; when duplicates occur the
// later block wins and the collision is counted rather than silently
// dropped, so callers can surface the data-quality issue.
type Index struct {
	byAddr map[string]Block
	addrs  []string // insertion order of first occurrence
	// Collisions counts blocks that were overwritten by a later block
	// with the same address.
	Collisions int
}

// NewIndex flattens a snapshot into an address-keyed index.
// Iteration follows canonical block-type order, then source order.
func NewIndex(s *ParsedSnapshot) *Index {
	idx := &Index{byAddr: make(map[string]Block)}
	if s == nil {
		return idx
	}
	for _, b := range s.All() {
		addr := b.Addr()
		if _, exists := idx.byAddr[addr]; exists {
			idx.Collisions++
		} else {
			idx.addrs = append(idx.addrs, addr)
		}
		idx.byAddr[addr] = b
	}
	return idx
}

// Get returns the block at addr.
func (idx *Index) Get(addr string) (Block, bool) {
	b, ok := idx.byAddr[addr]
	return b, ok
}

// Has reports whether addr is present.
func (idx *Index) Has(addr string) bool {
	_, ok := idx.byAddr[addr]
	return ok
}

// Addresses returns all addresses in first-seen order.
func (idx *Index) Addresses() []string {
	out := make([]string, len(idx.addrs))
	copy(out, idx.addrs)
	return out
}

// Len returns the number of distinct addresses.
func (idx *Index) Len() int { return len(idx.byAddr) }
