package franchise

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"
	"github.com/vocdoni/zk-franchise-proof/crypto/hash/poseidon"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
	"github.com/vocdoni/zk-franchise-proof/types"
	"github.com/vocdoni/zk-franchise-proof/util"
)

func TestDeriveCensusLeaf(t *testing.T) {
	c := qt.New(t)
	secretKey := big.NewInt(8)
	leaf, err := DeriveCensusLeaf(secretKey)
	c.Assert(err, qt.IsNil)
	expected, err := poseidon.Hash2(secretKey, secretKey)
	c.Assert(err, qt.IsNil)
	c.Assert(leaf.Cmp(expected), qt.Equals, 0)

	again, err := DeriveCensusLeaf(secretKey)
	c.Assert(err, qt.IsNil)
	c.Assert(again.Cmp(leaf), qt.Equals, 0)
}

func TestDeriveNullifier(t *testing.T) {
	c := qt.New(t)
	secretKey := util.BigToFF(new(big.Int).SetBytes(util.RandomBytes(32)))
	processA := [2]*big.Int{big.NewInt(6), big.NewInt(7)}
	processB := [2]*big.Int{big.NewInt(6), big.NewInt(8)}

	nullifierA, err := DeriveNullifier(secretKey, processA)
	c.Assert(err, qt.IsNil)
	nullifierB, err := DeriveNullifier(secretKey, processB)
	c.Assert(err, qt.IsNil)

	// Same key, different process, different nullifier.
	c.Assert(nullifierA.Cmp(nullifierB), qt.Not(qt.Equals), 0)

	// Deterministic per key and process.
	againA, err := DeriveNullifier(secretKey, processA)
	c.Assert(err, qt.IsNil)
	c.Assert(againA.Cmp(nullifierA), qt.Equals, 0)

	// Different key, same process, different nullifier.
	otherKey := new(big.Int).Add(secretKey, big.NewInt(1))
	otherNullifier, err := DeriveNullifier(otherKey, processA)
	c.Assert(err, qt.IsNil)
	c.Assert(otherNullifier.Cmp(nullifierA), qt.Not(qt.Equals), 0)
}

func TestProcessIDNullifier(t *testing.T) {
	c := qt.New(t)
	secretKey := big.NewInt(8)
	process := &types.ProcessID{
		Address: common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678"),
		Nonce:   42,
		ChainID: 1,
	}
	nullifier, err := DeriveNullifier(secretKey, process.BigInts())
	c.Assert(err, qt.IsNil)

	// Bumping the process nonce yields an unrelated nullifier, so the same
	// key can vote once per process.
	process.Nonce++
	other, err := DeriveNullifier(secretKey, process.BigInts())
	c.Assert(err, qt.IsNil)
	c.Assert(other.Cmp(nullifier), qt.Not(qt.Equals), 0)

	// The split halves round-trip through the marshaled form.
	decoded := &types.ProcessID{}
	c.Assert(decoded.Unmarshal(process.Marshal()), qt.IsNil)
	bigIntEquals := qt.CmpEquals(cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 }))
	c.Assert(decoded.BigInts(), bigIntEquals, process.BigInts())
}

func TestDeriveVoteHash(t *testing.T) {
	c := qt.New(t)
	_, err := DeriveVoteHash()
	c.Assert(err, qt.IsNotNil)

	single, err := DeriveVoteHash(big.NewInt(1))
	c.Assert(err, qt.IsNil)
	c.Assert(single, qt.IsNotNil)

	// Commitments over more than one chunk stay deterministic.
	ballot := make([]*big.Int, 20)
	for i := range ballot {
		ballot[i] = big.NewInt(int64(i))
	}
	first, err := DeriveVoteHash(ballot...)
	c.Assert(err, qt.IsNil)
	again, err := DeriveVoteHash(ballot...)
	c.Assert(err, qt.IsNil)
	c.Assert(first.Cmp(again), qt.Equals, 0)
	c.Assert(first.Cmp(single), qt.Not(qt.Equals), 0)
}

func TestAssignmentPathLength(t *testing.T) {
	c := qt.New(t)
	inputs, err := MockInputs(3)
	c.Assert(err, qt.IsNil)

	_, err = inputs.Assignment(3)
	c.Assert(err, qt.IsNil)

	_, err = inputs.Assignment(4)
	c.Assert(errors.Is(err, ErrPathLength), qt.IsTrue)
	_, err = inputs.Assignment(2)
	c.Assert(errors.Is(err, ErrPathLength), qt.IsTrue)
}

func TestAssignmentIncompleteInputs(t *testing.T) {
	c := qt.New(t)
	inputs, err := MockInputs(3)
	c.Assert(err, qt.IsNil)
	inputs.VoteHash = nil
	_, err = inputs.Assignment(3)
	c.Assert(err, qt.IsNotNil)
}

func TestMockInputsMatchCheckWitness(t *testing.T) {
	c := qt.New(t)
	for levels := 0; levels <= 4; levels++ {
		inputs, err := MockInputs(levels)
		c.Assert(err, qt.IsNil)
		c.Assert(inputs.Path, qt.HasLen, levels)
		leaf, err := DeriveCensusLeaf(inputs.SecretKey)
		c.Assert(err, qt.IsNil)
		ok := merkletree.CheckWitness(leaf, inputs.Path, inputs.Root)
		c.Assert(ok, qt.IsTrue, qt.Commentf("levels %d", levels))
	}
}

// TestTreeWitnessAssignment checks that a path served by a real census tree
// produces a satisfiable assignment, for every leaf position, so the tree
// direction flags and the circuit direction bits agree everywhere.
func TestTreeWitnessAssignment(t *testing.T) {
	c := qt.New(t)
	const depth = 4
	secretKeys := make([]*big.Int, 1<<(depth-1))
	tree, err := merkletree.New(depth)
	c.Assert(err, qt.IsNil)
	for i := range secretKeys {
		secretKeys[i] = util.BigToFF(new(big.Int).SetBytes(util.RandomBytes(32)))
		leaf, err := DeriveCensusLeaf(secretKeys[i])
		c.Assert(err, qt.IsNil)
		_, err = tree.Insert(leaf)
		c.Assert(err, qt.IsNil)
	}
	c.Assert(tree.Calc(), qt.IsNil)
	root, err := tree.Root()
	c.Assert(err, qt.IsNil)

	for i, secretKey := range secretKeys {
		path, err := tree.Witness(i)
		c.Assert(err, qt.IsNil)
		inputs := &Inputs{
			SecretKey: secretKey,
			ProcessID: [2]*big.Int{big.NewInt(6), big.NewInt(7)},
			VoteHash:  big.NewInt(1),
			Root:      root,
			Path:      path,
		}
		assignment, err := inputs.Assignment(depth - 1)
		c.Assert(err, qt.IsNil)
		c.Assert(assignment.Levels(), qt.Equals, depth-1)

		publics, err := inputs.PublicInputs()
		c.Assert(err, qt.IsNil)
		c.Assert(publics[0].Cmp(root), qt.Equals, 0)
		nullifier, err := DeriveNullifier(secretKey, inputs.ProcessID)
		c.Assert(err, qt.IsNil)
		c.Assert(publics[1].Cmp(nullifier), qt.Equals, 0)
	}
}
