package franchise

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/vocdoni/zk-franchise-proof/crypto/hash/poseidon"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
)

// ErrPathLength is returned when the authentication path does not match the
// circuit's number of levels. Paths are never padded or truncated.
var ErrPathLength = errors.New("authentication path length does not match circuit levels")

// Inputs is the application-level data a voter needs to prove eligibility:
// the secret key, the process being voted, the ballot commitment and the
// census snapshot (root plus the voter's authentication path).
type Inputs struct {
	SecretKey *big.Int
	ProcessID [2]*big.Int
	VoteHash  *big.Int
	Root      *big.Int
	Path      []merkletree.PathStep
}

// DeriveCensusLeaf returns the public key H(sk, sk), the value registered
// as the voter's census leaf.
func DeriveCensusLeaf(secretKey *big.Int) (*big.Int, error) {
	return poseidon.Hash2(secretKey, secretKey)
}

// DeriveVoteHash commits to a ballot payload of arbitrary length. The
// circuit never opens the commitment, it only passes it through, so any
// collision resistant hash over the field would do; Poseidon keeps the
// whole scheme on a single primitive.
func DeriveVoteHash(ballot ...*big.Int) (*big.Int, error) {
	return poseidon.MultiPoseidon(ballot...)
}

// DeriveNullifier returns H(sk, H(p0, p1)), unique per secret key and
// process. Publishing it lets anyone detect a second vote from the same
// key without learning which key it was.
func DeriveNullifier(secretKey *big.Int, processID [2]*big.Int) (*big.Int, error) {
	processIDHash, err := poseidon.Hash2(processID[0], processID[1])
	if err != nil {
		return nil, err
	}
	return poseidon.Hash2(secretKey, processIDHash)
}

// Assignment builds the full circuit assignment for a circuit of the given
// number of levels: the private witness plus the three public values, with
// the nullifier derived here. It fails if the path length does not match.
func (in *Inputs) Assignment(levels int) (*Circuit, error) {
	if len(in.Path) != levels {
		return nil, fmt.Errorf("%w: %d steps for %d levels", ErrPathLength, len(in.Path), levels)
	}
	if in.SecretKey == nil || in.VoteHash == nil || in.Root == nil ||
		in.ProcessID[0] == nil || in.ProcessID[1] == nil {
		return nil, fmt.Errorf("incomplete inputs")
	}
	nullifier, err := DeriveNullifier(in.SecretKey, in.ProcessID)
	if err != nil {
		return nil, err
	}
	assignment := &Circuit{
		Root:      in.Root,
		Nullifier: nullifier,
		VoteHash:  in.VoteHash,
		SecretKey: in.SecretKey,
		ProcessID: [2]frontend.Variable{in.ProcessID[0], in.ProcessID[1]},
		Vote:      in.VoteHash,
		Siblings:  make([]frontend.Variable, levels),
		Path:      make([]frontend.Variable, levels),
	}
	for i, step := range in.Path {
		assignment.Siblings[i] = step.Sibling
		// The circuit direction bit is 1 when the sibling takes the left
		// slot of the compression, which is exactly the tree's IsLeft flag.
		if step.IsLeft {
			assignment.Path[i] = 1
		} else {
			assignment.Path[i] = 0
		}
	}
	return assignment, nil
}

// PublicInputs returns the three public values of the relation in their
// fixed order: root, nullifier, voteHash.
func (in *Inputs) PublicInputs() ([3]*big.Int, error) {
	nullifier, err := DeriveNullifier(in.SecretKey, in.ProcessID)
	if err != nil {
		return [3]*big.Int{}, err
	}
	return [3]*big.Int{in.Root, nullifier, in.VoteHash}, nil
}
