package headerstore

// index holds the two membership maps described in spec §3/§4.2. Every
// entry is in exactly one of active or orphans (invariant P1). All methods
// here assume the store's lock is already held by the caller (spec §5
// Reentrancy).
type index struct {
	active  map[Hash]*BlockEntry
	orphans map[Hash]*BlockEntry
}

func newIndex() *index {
	return &index{
		active:  make(map[Hash]*BlockEntry),
		orphans: make(map[Hash]*BlockEntry),
	}
}

// lookup consults orphans first, then active. Orphan-first matters during
// reorg, when an entry is transiently in orphans while its ancestors are
// being re-parented (spec §4.2).
func (ix *index) lookup(hash Hash) *BlockEntry {
	if e, ok := ix.orphans[hash]; ok {
		return e
	}
	if e, ok := ix.active[hash]; ok {
		return e
	}
	return nil
}

func (ix *index) insertActive(e *BlockEntry) {
	ix.active[e.Hash] = e
}

func (ix *index) insertOrphan(e *BlockEntry) {
	ix.orphans[e.Hash] = e
}

// promote moves e from orphans to active. The caller must set e.Height
// before calling.
func (ix *index) promote(e *BlockEntry) {
	delete(ix.orphans, e.Hash)
	ix.active[e.Hash] = e
}

// demote moves e from active to orphans and sets Height = -1.
func (ix *index) demote(e *BlockEntry) {
	delete(ix.active, e.Hash)
	e.Height = -1
	ix.orphans[e.Hash] = e
}

func (ix *index) hasActive(hash Hash) bool {
	_, ok := ix.active[hash]
	return ok
}

func (ix *index) hasOrphan(hash Hash) bool {
	_, ok := ix.orphans[hash]
	return ok
}
