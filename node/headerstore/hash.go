package headerstore

import (
	"encoding/hex"
	"fmt"
)

// Hash is a 256-bit block identity, compared byte-for-byte. The zero value
// means "none" (spec: genesis's own prevBlock, or "no tip yet").
type Hash [32]byte

// ZeroHash is the sentinel "none" value.
var ZeroHash Hash

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("headerstore: invalid hash length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}
