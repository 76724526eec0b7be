package headerstore

// altHeight computes the height an orphan branch would have if it were
// made active (spec §4.4 Walk A). It is the iterative two-pass
// reformulation Design Notes (§9) recommends in place of the source's
// recursive blockstore_find_alternate_chain_height, so the walk's depth
// never grows the Go call stack.
//
//	alt_height(e) = e.height,                      if e.height > 0
//	              = 0,                              if e.prevBlock is unknown
//	              = 1 + alt_height(lookup(prevBlock)), otherwise
func altHeight(ix *index, e *BlockEntry) int32 {
	acc := int32(0)
	cur := e
	for {
		if cur.Height > 0 {
			return acc + cur.Height
		}
		parent := ix.lookup(cur.Header.PrevBlock)
		if parent == nil {
			return acc
		}
		acc++
		cur = parent
	}
}

// setChainLinks rewrites the graph so that newOrphan becomes the new tip
// (spec §4.4 Walk B), returning newOrphan's final height. It is the
// iterative two-pass form of the source's recursive
// blockstore_set_chain_links: first collect the orphan branch from
// newOrphan back to its junction with the active chain, then re-link it
// oldest-to-newest, demoting the displaced active suffix exactly once at
// the junction.
//
// The caller must already have confirmed the commit condition
// (altHeight(newOrphan) > store height) before calling this.
func setChainLinks(ix *index, newOrphan *BlockEntry) int32 {
	var branch []*BlockEntry
	cur := newOrphan
	for cur.Height == -1 {
		branch = append(branch, cur)
		parent := ix.lookup(cur.Header.PrevBlock)
		if parent == nil {
			panic("headerstore: reorg: orphan branch has no active junction")
		}
		cur = parent
	}
	junction := cur // first entry reached with Height >= 0

	// Demote the old active suffix beyond the junction -- these blocks are
	// no longer on the best chain.
	for li := junction.Next; li != nil; {
		next := li.Next
		ix.demote(li)
		li = next
	}
	junction.Next = nil

	// Re-link the orphan branch oldest-to-newest.
	prev := junction
	for i := len(branch) - 1; i >= 0; i-- {
		e := branch[i]
		e.Height = prev.Height + 1
		prev.Next = e
		e.Prev = prev

		ix.promote(e)

		prev = e
	}

	return newOrphan.Height
}
