package franchise

import (
	"math/big"

	"github.com/vocdoni/zk-franchise-proof/crypto/hash/poseidon"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
)

// MockInputs returns a deterministic set of inputs for a circuit of the
// given number of levels, without building a census tree: the voter's
// public key is folded with the synthetic siblings 0..levels-1, hashing it
// on the left at even levels and on the right at odd ones. Used by tests
// and by the prover smoke check.
func MockInputs(levels int) (*Inputs, error) {
	secretKey := big.NewInt(8)
	processID := [2]*big.Int{big.NewInt(6), big.NewInt(7)}
	voteHash := big.NewInt(1)

	root, err := DeriveCensusLeaf(secretKey)
	if err != nil {
		return nil, err
	}
	path := make([]merkletree.PathStep, 0, levels)
	for n := 0; n < levels; n++ {
		sibling := big.NewInt(int64(n))
		step := merkletree.PathStep{Sibling: sibling, IsLeft: n%2 != 0}
		if step.IsLeft {
			root, err = poseidon.Hash2(sibling, root)
		} else {
			root, err = poseidon.Hash2(root, sibling)
		}
		if err != nil {
			return nil, err
		}
		path = append(path, step)
	}
	return &Inputs{
		SecretKey: secretKey,
		ProcessID: processID,
		VoteHash:  voteHash,
		Root:      root,
		Path:      path,
	}, nil
}
