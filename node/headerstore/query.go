package headerstore

// maxNextHashes bounds NextHashes (spec §4.6: "emit up to 1,000 successor
// hashes").
const maxNextHashes = 1000

// maxLocatorHashes bounds LocatorHashes (spec §4.6: "Maximum 64 entries").
const maxLocatorHashes = 64

// BestHash returns the tip's hash, or the zero hash if no genesis has been
// ingested yet.
func (s *BlockStore) BestHash() Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestHash
}

// Height returns the current chain height, 0 before genesis (spec §4.6:
// "height() -> store.height (0 before first block)", matching the source's
// blockstore_get_height returning 0 when best_chain is NULL). The internal
// height field stays -1 pre-genesis so checkpoint/extend-tip arithmetic
// elsewhere does not need a special case; only this external accessor
// remaps it.
func (s *BlockStore) Height() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tip == nil {
		return 0
	}
	return s.height
}

// Timestamp returns the tip header's timestamp, or the network genesis
// constant if no tip exists yet.
func (s *BlockStore) Timestamp() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tip == nil {
		return genesisTimestamp
	}
	return s.tip.Header.Timestamp
}

// HeightOf returns the height of an active entry identified by hash. It
// panics if hash is not active -- this is the MissingParentInActive fatal
// case spec §7 names ("height_of called on unknown hash").
func (s *BlockStore) HeightOf(hash Hash) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ix.active[hash]
	if !ok {
		panic("headerstore: MissingParentInActive: height_of called on unknown hash")
	}
	return e.Height
}

// BlockAt returns the hash and header of the active entry at the given
// height, walking backward from tip via Prev, matching the source's
// blockstore_get_block_at_height.
func (s *BlockStore) BlockAt(height int32) (Hash, BlockHeader, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cur := s.tip; cur != nil; cur = cur.Prev {
		if cur.Height == height {
			return cur.Hash, cur.Header, true
		}
		if cur.Height < height {
			break
		}
	}
	return Hash{}, BlockHeader{}, false
}

// IsNext reports whether next is the active successor of prev.
func (s *BlockStore) IsNext(prev, next Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ix.active[prev]
	if !ok || e.Next == nil {
		return false
	}
	return e.Next.Hash == next
}

// NextHashes emits up to maxNextHashes successor hashes starting after
// start, in chain order.
func (s *BlockStore) NextHashes(start Hash) []Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ix.active[start]
	if !ok {
		return nil
	}
	var out []Hash
	for cur := e.Next; cur != nil && len(out) < maxNextHashes; cur = cur.Next {
		out = append(out, cur.Hash)
	}
	return out
}

// LocatorHashes builds a peer-synchronization locator: the tip, then nine
// single steps back, then doubling gaps (2, 4, 8, ...) until genesis,
// capped at maxLocatorHashes entries. This is the doubling-step algorithm
// from the source's blockstore_get_locator_hashes, distinct from the
// node/p2p package's unrelated 12-wide linear locator used by the wire
// protocol.
func (s *BlockStore) LocatorHashes() []Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tip == nil {
		return nil
	}

	var out []Hash
	step := 1
	cur := s.tip
	for i := 0; cur != nil && len(out) < maxLocatorHashes; i++ {
		out = append(out, cur.Hash)
		if cur.Prev == nil {
			break
		}
		if i >= 9 {
			step *= 2
		}
		for k := 0; k < step && cur.Prev != nil; k++ {
			cur = cur.Prev
		}
	}
	return out
}

// HashFromBirth walks backward from tip via Prev and returns the hash of
// the first entry whose timestamp is strictly less than t. If none is
// found (should not happen on a real chain), it returns the genesis hash.
func (s *BlockStore) HashFromBirth(t uint32) Hash {
	s.mu.Lock()
	defer s.mu.Unlock()
	for cur := s.tip; cur != nil; cur = cur.Prev {
		if cur.Header.Timestamp < t {
			return cur.Hash
		}
	}
	return s.genesisHash
}

// HasHeader reports whether hash is active, matching the source's
// blockstore_has_header (which consults only hash_blk, not the orphan set).
func (s *BlockStore) HasHeader(hash Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ix.hasActive(hash)
}

// IsOrphan reports whether hash is currently an orphan.
func (s *BlockStore) IsOrphan(hash Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ix.hasOrphan(hash)
}

// IsKnown reports whether hash is active or orphan, matching the source's
// is_known = has_header || is_orphan. Unlike HasHeader, this also counts
// orphans.
func (s *BlockStore) IsKnown(hash Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ix.lookup(hash) != nil
}
