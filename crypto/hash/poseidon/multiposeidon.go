package poseidon

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// MultiPoseidon hashes an arbitrary number of field elements, up to 256,
// by splitting them in chunks of 16 (the largest width the Poseidon
// parameters support) and hashing the chunk hashes together. Used to
// commit to ballot payloads of any size.
func MultiPoseidon(inputs ...*big.Int) (*big.Int, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs provided")
	}
	if len(inputs) > 256 {
		return nil, fmt.Errorf("too many inputs")
	}
	var hashes []*big.Int
	for len(inputs) > 0 {
		n := len(inputs)
		if n > 16 {
			n = 16
		}
		hash, err := poseidon.Hash(inputs[:n])
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, hash)
		inputs = inputs[n:]
	}
	if len(hashes) == 1 {
		return hashes[0], nil
	}
	return poseidon.Hash(hashes)
}
