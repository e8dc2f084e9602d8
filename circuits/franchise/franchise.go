// Package franchise contains the gnark circuit proving voting eligibility
// without revealing the voter: knowledge of a secret key whose derived
// public key is a leaf of the census tree, a process-bound nullifier to
// detect double voting, and a commitment to the ballot payload.
//
// The statement binds exactly three public values, in this order:
//
//	root      (census tree root)
//	nullifier (hash of the secret key and the process id hash)
//	voteHash  (opaque ballot commitment, passed through unchanged)
//
// Everything else (secret key, process id, authentication path, direction
// bits) stays private.
package franchise

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/gnark-crypto-primitives/hash/native/bn254/poseidon"
	"github.com/vocdoni/gnark-crypto-primitives/utils"
)

// HashFn is the in-circuit compression function. It must compute the same
// permutation as crypto/hash/poseidon.HashFunc, or the natively generated
// witnesses will never satisfy the relation.
var HashFn utils.Hasher = poseidon.Hash

// Circuit is the membership-and-nullifier relation. The number of tree
// levels is fixed at placeholder construction time: the Siblings and Path
// slice lengths are part of the compiled constraint system, so a witness
// with a different path length cannot even be assigned.
type Circuit struct {
	// Public inputs, in the order [root, nullifier, voteHash].
	Root      frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	VoteHash  frontend.Variable `gnark:",public"`

	// Private witness.
	SecretKey frontend.Variable
	ProcessID [2]frontend.Variable
	// Vote is the prover-side copy of the ballot commitment, constrained to
	// equal the public VoteHash.
	Vote frontend.Variable
	// Siblings[i] is the sibling node at level i, leaf level first.
	Siblings []frontend.Variable
	// Path[i] is the direction bit at level i: 0 places the running node as
	// the left operand of the compression, 1 as the right one (the sibling
	// taking the left slot).
	Path []frontend.Variable
}

// NewCircuit returns a compilable placeholder for the given number of tree
// levels (census tree depth minus one). A zero-level circuit is the
// degenerate single-leaf census, where the public key itself is the root.
func NewCircuit(levels int) (*Circuit, error) {
	if levels < 0 {
		return nil, fmt.Errorf("invalid number of levels %d", levels)
	}
	return &Circuit{
		Siblings: make([]frontend.Variable, levels),
		Path:     make([]frontend.Variable, levels),
	}, nil
}

// Levels returns the number of tree levels the circuit is built for.
func (c *Circuit) Levels() int { return len(c.Siblings) }

// Define declares the constraints of the relation: the census root
// re-derived from the secret key through the authentication path, the
// nullifier re-derived from the secret key and the process id, and the
// vote hash equality.
func (c *Circuit) Define(api frontend.API) error {
	if len(c.Siblings) != len(c.Path) {
		return fmt.Errorf("constraint mismatch: %d siblings and %d direction bits",
			len(c.Siblings), len(c.Path))
	}

	// publicKey = H(sk, sk), the census leaf of the voter
	publicKey, err := HashFn(api, c.SecretKey, c.SecretKey)
	if err != nil {
		return err
	}

	// processIdHash = H(p0, p1)
	processIDHash, err := HashFn(api, c.ProcessID[0], c.ProcessID[1])
	if err != nil {
		return err
	}

	// nullifier = H(sk, processIdHash)
	nullifier, err := HashFn(api, c.SecretKey, processIDHash)
	if err != nil {
		return err
	}

	// Walk the authentication path from the leaf up, swapping the operand
	// order at each level according to the direction bit.
	root := publicKey
	for i := range c.Siblings {
		api.AssertIsBoolean(c.Path[i])
		left := api.Select(c.Path[i], c.Siblings[i], root)
		right := api.Select(c.Path[i], root, c.Siblings[i])
		if root, err = HashFn(api, left, right); err != nil {
			return err
		}
	}

	api.AssertIsEqual(root, c.Root)
	api.AssertIsEqual(nullifier, c.Nullifier)
	api.AssertIsEqual(c.Vote, c.VoteHash)
	return nil
}
