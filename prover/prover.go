// Package prover wraps the gnark proving system behind the narrow contract
// the franchise relation needs: compile the circuit for a fixed number of
// levels, run the Groth16 setup, generate proofs from assignments and
// verify them against the three public values.
package prover

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/vocdoni/zk-franchise-proof/circuits/franchise"
	"github.com/vocdoni/zk-franchise-proof/log"
)

// ProvingSystem holds the compiled constraint system and the Groth16 key
// pair for one circuit depth. It is read-only after Setup/Load and safe for
// concurrent Prove and Verify calls.
type ProvingSystem struct {
	levels int
	ccs    constraint.ConstraintSystem
	pk     groth16.ProvingKey
	vk     groth16.VerifyingKey
}

// Compile builds the constraint system of the franchise circuit for the
// given number of tree levels.
func Compile(levels int) (constraint.ConstraintSystem, error) {
	placeholder, err := franchise.NewCircuit(levels)
	if err != nil {
		return nil, err
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, placeholder)
	if err != nil {
		return nil, fmt.Errorf("cannot compile franchise circuit: %w", err)
	}
	log.Debugw("franchise circuit compiled",
		"levels", levels, "constraints", ccs.GetNbConstraints())
	return ccs, nil
}

// Setup compiles the circuit and runs the Groth16 trusted setup. Production
// deployments load keys from a ceremony instead; see Load.
func Setup(levels int) (*ProvingSystem, error) {
	ccs, err := Compile(levels)
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup failed: %w", err)
	}
	return &ProvingSystem{levels: levels, ccs: ccs, pk: pk, vk: vk}, nil
}

// Levels returns the circuit depth this proving system was built for.
func (ps *ProvingSystem) Levels() int { return ps.levels }

// VerifyingKey returns the Groth16 verifying key, for distribution to
// external verifiers.
func (ps *ProvingSystem) VerifyingKey() groth16.VerifyingKey { return ps.vk }

// Prove derives the full assignment from the inputs and generates a proof.
// An unsatisfiable assignment (wrong root, reused path, tampered vote
// hash) surfaces here as a proof generation error.
func (ps *ProvingSystem) Prove(inputs *franchise.Inputs) (groth16.Proof, witness.Witness, error) {
	assignment, err := inputs.Assignment(ps.levels)
	if err != nil {
		return nil, nil, err
	}
	fullWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("cannot build witness: %w", err)
	}
	proof, err := groth16.Prove(ps.ccs, ps.pk, fullWitness)
	if err != nil {
		return nil, nil, fmt.Errorf("proof generation failed: %w", err)
	}
	publicWitness, err := fullWitness.Public()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot extract public witness: %w", err)
	}
	return proof, publicWitness, nil
}

// Verify checks a proof against the public values [root, nullifier,
// voteHash]. The returned error is nil iff the proof is accepted.
func (ps *ProvingSystem) Verify(proof groth16.Proof, publics [3]*big.Int) error {
	publicWitness, err := PublicWitness(ps.levels, publics)
	if err != nil {
		return err
	}
	return groth16.Verify(proof, ps.vk, publicWitness)
}

// PublicWitness builds the gnark public witness carrying the three public
// values of a circuit with the given number of levels.
func PublicWitness(levels int, publics [3]*big.Int) (witness.Witness, error) {
	assignment := &franchise.Circuit{
		Root:      publics[0],
		Nullifier: publics[1],
		VoteHash:  publics[2],
		Siblings:  make([]frontend.Variable, levels),
		Path:      make([]frontend.Variable, levels),
	}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("cannot build public witness: %w", err)
	}
	return w, nil
}
