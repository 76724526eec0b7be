package headerstore

import "chainhead.dev/node/crypto"

// Digester computes the identity hash of an encoded header. It is the
// store's binding to the "cryptographic digest primitive" spec §1 declares
// out of scope -- re-specifying digest(bytes, len) -> Hash256 here would
// duplicate the teacher's own crypto.CryptoProvider collaborator contract.
type Digester interface {
	Digest(headerBytes []byte) (Hash, error)
}

// providerDigester adapts crypto.CryptoProvider (the teacher's existing
// digest collaborator, used elsewhere for transaction/block hashing) to the
// narrower Digester interface this store needs.
type providerDigester struct {
	provider crypto.CryptoProvider
}

// NewDigester wraps a crypto.CryptoProvider for use by the header store.
func NewDigester(p crypto.CryptoProvider) Digester {
	return providerDigester{provider: p}
}

func (d providerDigester) Digest(headerBytes []byte) (Hash, error) {
	sum, err := d.provider.SHA3_256(headerBytes)
	if err != nil {
		return Hash{}, err
	}
	return Hash(sum), nil
}
