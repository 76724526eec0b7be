package headerstore

import "fmt"

// Checkpoint pins the hash expected at a given height. Checkpoints reject
// forks that contradict known history (spec §4.1).
type Checkpoint struct {
	Height uint32
	Hash   Hash
}

// CheckpointTable is a per-network set of checkpoints keyed by height. The
// bootstrap table must contain at least the genesis (0, ...) record (spec
// §6).
type CheckpointTable struct {
	entries map[uint32]Hash
	genesis Hash
}

// NewCheckpointTable builds a table from (height, hex-hash) pairs, in the
// same style as the source's cpt_main/cpt_testnet arrays. Height 0 must be
// present.
func NewCheckpointTable(pairs []struct {
	Height uint32
	HexHash string
}) (CheckpointTable, error) {
	var t CheckpointTable
	t.entries = make(map[uint32]Hash, len(pairs))
	for _, p := range pairs {
		h, err := HashFromHex(p.HexHash)
		if err != nil {
			return t, fmt.Errorf("headerstore: checkpoint height %d: %w", p.Height, err)
		}
		t.entries[p.Height] = h
		if p.Height == 0 {
			t.genesis = h
		}
	}
	if t.genesis.IsZero() {
		return t, fmt.Errorf("headerstore: checkpoint table missing genesis (height 0) record")
	}
	return t, nil
}

// Genesis returns the hash pinned at height 0.
func (t CheckpointTable) Genesis() Hash {
	return t.genesis
}

// Validate returns true unless an entry for height exists and its hash
// differs (spec §4.1).
func (t CheckpointTable) Validate(hash Hash, height uint32) bool {
	want, ok := t.entries[height]
	if !ok {
		return true
	}
	return want == hash
}
