package poseidon

import (
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// Hasher is the two-to-one compression function used to build the census
// tree and to derive keys and nullifiers. Implementations must match the
// in-circuit gadget used by the franchise circuit, so the native and the
// constrained re-derivations agree on every input.
type Hasher interface {
	Hash(a, b *big.Int) (*big.Int, error)
}

// HashFunc is the Poseidon instance used across the whole node.
var HashFunc Hasher = poseidonHasher{}

type poseidonHasher struct{}

func (poseidonHasher) Hash(a, b *big.Int) (*big.Int, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("nil input to poseidon hash")
	}
	return poseidon.Hash([]*big.Int{a, b})
}

// Hash2 compresses two field elements with the default Poseidon instance.
func Hash2(a, b *big.Int) (*big.Int, error) {
	return HashFunc.Hash(a, b)
}
