package prover

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/zk-franchise-proof/circuits/franchise"
)

func skipUnlessCircuitTests(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" || os.Getenv("RUN_CIRCUIT_TESTS") == "false" {
		t.Skip("skipping circuit tests...")
	}
}

func TestProveAndVerify(t *testing.T) {
	skipUnlessCircuitTests(t)
	c := qt.New(t)
	const levels = 3

	ps, err := Setup(levels)
	c.Assert(err, qt.IsNil)
	c.Assert(ps.Levels(), qt.Equals, levels)
	c.Assert(ps.VerifyingKey(), qt.IsNotNil)

	inputs, err := franchise.MockInputs(levels)
	c.Assert(err, qt.IsNil)
	proof, _, err := ps.Prove(inputs)
	c.Assert(err, qt.IsNil)

	publics, err := inputs.PublicInputs()
	c.Assert(err, qt.IsNil)
	c.Assert(ps.Verify(proof, publics), qt.IsNil)

	// Any tampered public value must be rejected.
	for i := range publics {
		tampered := publics
		tampered[i] = new(big.Int).Add(publics[i], big.NewInt(1))
		c.Assert(ps.Verify(proof, tampered), qt.IsNotNil)
	}
}

func TestProveRejectsWrongRoot(t *testing.T) {
	skipUnlessCircuitTests(t)
	c := qt.New(t)
	const levels = 3

	ps, err := Setup(levels)
	c.Assert(err, qt.IsNil)

	inputs, err := franchise.MockInputs(levels)
	c.Assert(err, qt.IsNil)
	inputs.Root = new(big.Int).Add(inputs.Root, big.NewInt(1))
	_, _, err = ps.Prove(inputs)
	c.Assert(err, qt.IsNotNil)
}

func TestProofEncoding(t *testing.T) {
	skipUnlessCircuitTests(t)
	c := qt.New(t)
	const levels = 2

	ps, err := Setup(levels)
	c.Assert(err, qt.IsNil)
	inputs, err := franchise.MockInputs(levels)
	c.Assert(err, qt.IsNil)
	proof, _, err := ps.Prove(inputs)
	c.Assert(err, qt.IsNil)

	data, err := EncodeProof(proof)
	c.Assert(err, qt.IsNil)
	c.Assert(len(data) > 0, qt.IsTrue)

	decoded, err := DecodeProof(data)
	c.Assert(err, qt.IsNil)
	publics, err := inputs.PublicInputs()
	c.Assert(err, qt.IsNil)
	c.Assert(ps.Verify(decoded, publics), qt.IsNil)
}

func TestArtifactsStoreLoad(t *testing.T) {
	skipUnlessCircuitTests(t)
	c := qt.New(t)
	const levels = 2

	ps, err := Setup(levels)
	c.Assert(err, qt.IsNil)
	dir := t.TempDir()
	c.Assert(ps.Store(dir), qt.IsNil)

	loaded, err := Load(dir, levels)
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Levels(), qt.Equals, levels)

	// Keys loaded from disk must keep proving and verifying.
	inputs, err := franchise.MockInputs(levels)
	c.Assert(err, qt.IsNil)
	proof, _, err := loaded.Prove(inputs)
	c.Assert(err, qt.IsNil)
	publics, err := inputs.PublicInputs()
	c.Assert(err, qt.IsNil)
	c.Assert(loaded.Verify(proof, publics), qt.IsNil)

	// Loading from an empty directory fails.
	_, err = Load(t.TempDir(), levels)
	c.Assert(err, qt.IsNotNil)

	// Loading for a different number of levels fails too.
	_, err = Load(dir, levels+1)
	c.Assert(err, qt.IsNotNil)
}

func TestLoadLevelsMismatch(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	// The levels check runs before any key material is read, so a bare
	// levels file is enough to exercise it.
	err := os.WriteFile(filepath.Join(dir, levelsFile), []byte("3"), 0o644)
	c.Assert(err, qt.IsNil)

	_, err = Load(dir, 4)
	c.Assert(err, qt.ErrorMatches, "stored artifacts are for 3 levels, want 4")

	err = os.WriteFile(filepath.Join(dir, levelsFile), []byte("not a number"), 0o644)
	c.Assert(err, qt.IsNil)
	_, err = Load(dir, 4)
	c.Assert(err, qt.IsNotNil)
}
