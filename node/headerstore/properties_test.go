package headerstore

import (
	"math/rand"
	"testing"
)

// TestDisjointMembership covers spec §8 P1: every known hash is in exactly
// one of active or orphans.
func TestDisjointMembership(t *testing.T) {
	dir := t.TempDir()
	s := mustInit(t, dir, mustCheckpoints(t, genesisHash()))
	hashes := addLinearChain(t, s, 6)

	for _, h := range hashes {
		_, inActive := s.ix.active[h]
		_, inOrphan := s.ix.orphans[h]
		if inActive == inOrphan {
			t.Fatalf("hash %x: inActive=%v inOrphan=%v, want exactly one", h, inActive, inOrphan)
		}
	}
}

// TestSpineIntegrity covers spec §8 P2: walking next from genesis for
// height steps reaches tip, and each step's PrevBlock matches the
// predecessor's hash.
func TestSpineIntegrity(t *testing.T) {
	dir := t.TempDir()
	s := mustInit(t, dir, mustCheckpoints(t, genesisHash()))
	addLinearChain(t, s, 6)

	cur := s.genesis
	steps := int32(0)
	for cur != s.tip {
		if cur.Next == nil {
			t.Fatalf("spine broken before reaching tip at height %d", cur.Height)
		}
		if cur.Next.Header.PrevBlock != cur.Hash {
			t.Fatalf("spine: next.PrevBlock != cur.Hash at height %d", cur.Height)
		}
		cur = cur.Next
		steps++
	}
	if steps != s.height {
		t.Fatalf("spine steps = %d, want store height %d", steps, s.height)
	}
}

// TestHeightConsistency covers spec §8 P3: HeightOf(hash) matches the
// entry's own Height for every active entry.
func TestHeightConsistency(t *testing.T) {
	dir := t.TempDir()
	s := mustInit(t, dir, mustCheckpoints(t, genesisHash()))
	hashes := addLinearChain(t, s, 6)

	for i, h := range hashes {
		if s.HeightOf(h) != int32(i) {
			t.Fatalf("HeightOf(hashes[%d]) = %d, want %d", i, s.HeightOf(h), i)
		}
	}
}

// TestReorgMonotonicity covers spec §8 P4: height never decreases across a
// randomized sequence of AddHeader calls, including orphans and reorgs.
func TestReorgMonotonicity(t *testing.T) {
	dir := t.TempDir()
	s := mustInit(t, dir, mustCheckpoints(t, genesisHash()))

	gh := genesisHash()
	if _, _, err := s.AddHeader(chainHeader(ZeroHash, 1), gh); err != nil {
		t.Fatalf("AddHeader genesis: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	known := []Hash{gh}
	prevHeight := s.Height()

	for i := 0; i < 200; i++ {
		base := known[rng.Intn(len(known))]
		// A non-zero Nonce puts the header on a side branch of base.
		hdr := chainHeader(base, uint32(i+2))
		hdr.Nonce = uint32(rng.Intn(3))
		h := toyHash(hdr)
		if _, _, err := s.AddHeader(hdr, h); err != nil {
			// checkpoint mismatches are not expected here (no checkpoints
			// beyond genesis); any error is unexpected.
			t.Fatalf("AddHeader iteration %d: %v", i, err)
		}
		known = append(known, h)

		if s.Height() < prevHeight {
			t.Fatalf("height decreased: %d -> %d at iteration %d", prevHeight, s.Height(), i)
		}
		prevHeight = s.Height()
	}
}

// TestReorgTrigger covers spec §8 P5: an alternate branch longer than the
// current height becomes the new tip; a branch no longer than the current
// height leaves the tip unchanged.
func TestReorgTrigger(t *testing.T) {
	dir := t.TempDir()
	s := mustInit(t, dir, mustCheckpoints(t, genesisHash()))
	hashes := addLinearChain(t, s, 4)

	// Build an alternate 2-long branch off genesis -- shorter than height
	// 4, so it must not become the tip.
	b1 := forkHash(hashes[0])
	if _, _, err := s.AddHeader(forkHeader(hashes[0], 101), b1); err != nil {
		t.Fatalf("AddHeader b1: %v", err)
	}
	b2 := forkHash(b1)
	if _, _, err := s.AddHeader(forkHeader(b1, 102), b2); err != nil {
		t.Fatalf("AddHeader b2: %v", err)
	}
	if s.BestHash() != hashes[4] {
		t.Fatalf("short alternate branch should not become tip")
	}

	// Extend it to length 5 -- now strictly greater than height 4, so it
	// must take over.
	b3 := forkHash(b2)
	if _, _, err := s.AddHeader(forkHeader(b2, 103), b3); err != nil {
		t.Fatalf("AddHeader b3: %v", err)
	}
	b4 := forkHash(b3)
	if _, _, err := s.AddHeader(forkHeader(b3, 104), b4); err != nil {
		t.Fatalf("AddHeader b4: %v", err)
	}
	b5 := forkHash(b4)
	if _, _, err := s.AddHeader(forkHeader(b4, 105), b5); err != nil {
		t.Fatalf("AddHeader b5: %v", err)
	}
	if s.BestHash() != b5 {
		t.Fatalf("best hash = %x, want %x (longer branch should win)", s.BestHash(), b5)
	}
	if s.Height() != 5 {
		t.Fatalf("height = %d, want 5", s.Height())
	}
}

// TestPersistenceRoundTrip covers spec §8 P6.
func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	checkpoints := mustCheckpoints(t, genesisHash())

	s := mustInit(t, dir, checkpoints)
	addLinearChain(t, s, 9)
	wantHeight, wantBest := s.Height(), s.BestHash()
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	s2 := mustInit(t, dir, checkpoints)
	if err := s2.Shutdown(); err != nil {
		t.Fatalf("Shutdown after replay-only: %v", err)
	}

	s3 := mustInit(t, dir, checkpoints)
	defer func() { _ = s3.Shutdown() }()
	if s3.Height() != wantHeight || s3.BestHash() != wantBest {
		t.Fatalf("round-trip mismatch: height=%d best=%x, want height=%d best=%x",
			s3.Height(), s3.BestHash(), wantHeight, wantBest)
	}
}

// TestLocatorShape covers spec §8 P7.
func TestLocatorShape(t *testing.T) {
	dir := t.TempDir()
	s := mustInit(t, dir, mustCheckpoints(t, genesisHash()))
	addLinearChain(t, s, 80)

	locator := s.LocatorHashes()
	if len(locator) > maxLocatorHashes {
		t.Fatalf("locator length = %d, want <= %d", len(locator), maxLocatorHashes)
	}
	if len(locator) < 2 {
		t.Fatalf("locator too short: %d", len(locator))
	}

	heights := make([]int32, len(locator))
	for i, h := range locator {
		heights[i] = s.HeightOf(h)
	}
	for i := 1; i < len(heights); i++ {
		if heights[i] >= heights[i-1] {
			t.Fatalf("locator heights not strictly decreasing at %d: %v", i, heights)
		}
	}
	for i := 0; i < 9 && i+1 < len(heights); i++ {
		if heights[i]-heights[i+1] != 1 {
			t.Fatalf("expected single-step spacing among first 10 entries, got gap %d at %d", heights[i]-heights[i+1], i)
		}
	}
	if heights[len(heights)-1] != 0 {
		t.Fatalf("locator should end at genesis, last height = %d", heights[len(heights)-1])
	}
	if len(heights) > 11 {
		prevGap := heights[9] - heights[10]
		for i := 10; i+1 < len(heights); i++ {
			gap := heights[i] - heights[i+1]
			if i+2 == len(heights) && heights[i+1] == 0 {
				// The final step is clamped at genesis and may be shorter.
				break
			}
			if gap < prevGap {
				t.Fatalf("locator gaps should not shrink: gap=%d prevGap=%d at %d", gap, prevGap, i)
			}
			prevGap = gap
		}
	}
}
