package franchise

import (
	"math/big"
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
	"github.com/vocdoni/zk-franchise-proof/util"
)

func TestCircuitSolved(t *testing.T) {
	c := qt.New(t)
	for levels := 0; levels <= 4; levels++ {
		inputs, err := MockInputs(levels)
		c.Assert(err, qt.IsNil)
		assignment, err := inputs.Assignment(levels)
		c.Assert(err, qt.IsNil)
		placeholder, err := NewCircuit(levels)
		c.Assert(err, qt.IsNil)
		err = test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField())
		c.Assert(err, qt.IsNil, qt.Commentf("levels %d", levels))
	}
}

func TestCircuitTamperedPublics(t *testing.T) {
	c := qt.New(t)
	const levels = 3
	inputs, err := MockInputs(levels)
	c.Assert(err, qt.IsNil)
	placeholder, err := NewCircuit(levels)
	c.Assert(err, qt.IsNil)

	tamper := func(mutate func(*Circuit)) error {
		assignment, err := inputs.Assignment(levels)
		c.Assert(err, qt.IsNil)
		mutate(assignment)
		return test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField())
	}

	bump := func(v any) *big.Int {
		return new(big.Int).Add(v.(*big.Int), big.NewInt(1))
	}

	c.Assert(tamper(func(a *Circuit) { a.Root = bump(a.Root) }), qt.IsNotNil)
	c.Assert(tamper(func(a *Circuit) { a.Nullifier = bump(a.Nullifier) }), qt.IsNotNil)
	c.Assert(tamper(func(a *Circuit) { a.VoteHash = bump(a.VoteHash) }), qt.IsNotNil)
	c.Assert(tamper(func(a *Circuit) { a.SecretKey = bump(a.SecretKey) }), qt.IsNotNil)
	c.Assert(tamper(func(a *Circuit) {
		// Flipping one direction bit moves the running hash to the wrong
		// operand slot, so the derived root changes.
		a.Path[0] = 1
	}), qt.IsNotNil)
	c.Assert(tamper(func(a *Circuit) {
		// Direction bits must be boolean.
		a.Path[0] = 2
	}), qt.IsNotNil)

	// The untampered assignment still solves.
	assignment, err := inputs.Assignment(levels)
	c.Assert(err, qt.IsNil)
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNil)
}

func TestCircuitTreeMembership(t *testing.T) {
	c := qt.New(t)
	const depth = 4
	tree, err := merkletree.New(depth)
	c.Assert(err, qt.IsNil)
	secretKeys := make([]*big.Int, 5)
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

	placeholder, err := NewCircuit(depth - 1)
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
		err = test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField())
		c.Assert(err, qt.IsNil, qt.Commentf("leaf %d", i))
	}

	// A key that is not in the census cannot satisfy the relation with any
	// of the served paths.
	outsider := util.BigToFF(new(big.Int).SetBytes(util.RandomBytes(32)))
	path, err := tree.Witness(0)
	c.Assert(err, qt.IsNil)
	inputs := &Inputs{
		SecretKey: outsider,
		ProcessID: [2]*big.Int{big.NewInt(6), big.NewInt(7)},
		VoteHash:  big.NewInt(1),
		Root:      root,
		Path:      path,
	}
	assignment, err := inputs.Assignment(depth - 1)
	c.Assert(err, qt.IsNil)
	c.Assert(test.IsSolved(placeholder, assignment, ecc.BN254.ScalarField()), qt.IsNotNil)
}

func TestCircuitProverGroth16(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
	c := qt.New(t)
	const levels = 3
	inputs, err := MockInputs(levels)
	c.Assert(err, qt.IsNil)
	assignment, err := inputs.Assignment(levels)
	c.Assert(err, qt.IsNil)
	placeholder, err := NewCircuit(levels)
	c.Assert(err, qt.IsNil)

	assert := test.NewAssert(t)
	assert.ProverSucceeded(placeholder, assignment,
		test.WithCurves(ecc.BN254),
		test.WithBackends(backend.GROTH16))
}
