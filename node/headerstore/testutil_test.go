package headerstore

import "testing"

// toyDigester implements the toy hash domain from spec §8's end-to-end
// scenarios: digest(header) = header.PrevBlock + 1, letting tests construct
// chains without a real cryptographic provider. A non-zero Nonce overwrites
// the top byte of that result, so side-branch headers (forkHeader) get
// hashes distinct from the main-chain child of the same parent.
type toyDigester struct{}

func (toyDigester) Digest(headerBytes []byte) (Hash, error) {
	h, err := ParseHeaderBytes(headerBytes)
	if err != nil {
		return Hash{}, err
	}
	return toyHash(h), nil
}

func toyHash(h BlockHeader) Hash {
	out := hashPlusOne(h.PrevBlock)
	if h.Nonce != 0 {
		out[0] = byte(h.Nonce)
	}
	return out
}

// forkHeader builds a side-branch header on top of prev; its toy digest is
// forkHash(prev), never the hash of chainHeader(prev, ...).
func forkHeader(prev Hash, timestamp uint32) BlockHeader {
	return BlockHeader{PrevBlock: prev, Timestamp: timestamp, Nonce: 1}
}

func forkHash(prev Hash) Hash {
	return toyHash(forkHeader(prev, 0))
}

func hashPlusOne(h Hash) Hash {
	var out Hash
	carry := uint16(1)
	for i := len(h) - 1; i >= 0; i-- {
		sum := uint16(h[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

func mustCheckpoints(t *testing.T, genesis Hash) CheckpointTable {
	t.Helper()
	tbl, err := NewCheckpointTable([]struct {
		Height  uint32
		HexHash string
	}{
		{Height: 0, HexHash: genesis.String()},
	})
	if err != nil {
		t.Fatalf("NewCheckpointTable: %v", err)
	}
	return tbl
}

func mustInit(t *testing.T, dataDir string, checkpoints CheckpointTable) *BlockStore {
	t.Helper()
	cfg := Config{Network: NetworkMain, DataDir: dataDir}
	s, err := Init(cfg, checkpoints, toyDigester{}, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

// chainHeader builds a main-chain toy header on top of prev; genesis uses
// prev == ZeroHash.
func chainHeader(prev Hash, timestamp uint32) BlockHeader {
	return BlockHeader{PrevBlock: prev, Timestamp: timestamp}
}
