package headerstore

import (
	"encoding/binary"
	"fmt"
)

// HeaderBytes is the fixed on-wire and on-disk size of a BlockHeader.
const HeaderBytes = 80

// BlockHeader is the opaque 80-byte record this store indexes. Only
// PrevBlock and Timestamp are consumed by the store itself; the remaining
// fields exist so the header round-trips byte-for-byte through the log.
type BlockHeader struct {
	Version    uint32
	PrevBlock  Hash
	MerkleRoot Hash
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

// Encode serializes h to its canonical 80-byte little-endian layout.
func (h BlockHeader) Encode() [HeaderBytes]byte {
	var out [HeaderBytes]byte
	binary.LittleEndian.PutUint32(out[0:4], h.Version)
	copy(out[4:36], h.PrevBlock[:])
	copy(out[36:68], h.MerkleRoot[:])
	binary.LittleEndian.PutUint32(out[68:72], h.Timestamp)
	binary.LittleEndian.PutUint32(out[72:76], h.Bits)
	binary.LittleEndian.PutUint32(out[76:80], h.Nonce)
	return out
}

// ParseHeaderBytes decodes a header from its canonical 80-byte layout.
func ParseHeaderBytes(b []byte) (BlockHeader, error) {
	var h BlockHeader
	if len(b) != HeaderBytes {
		return h, fmt.Errorf("headerstore: invalid header length: %d, want %d", len(b), HeaderBytes)
	}
	h.Version = binary.LittleEndian.Uint32(b[0:4])
	copy(h.PrevBlock[:], b[4:36])
	copy(h.MerkleRoot[:], b[36:68])
	h.Timestamp = binary.LittleEndian.Uint32(b[68:72])
	h.Bits = binary.LittleEndian.Uint32(b[72:76])
	h.Nonce = binary.LittleEndian.Uint32(b[76:80])
	return h, nil
}
