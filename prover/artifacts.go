package prover

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/vocdoni/zk-franchise-proof/log"
)

// Artifact file names inside the artifacts directory.
const (
	csFile     = "franchise.ccs"
	pkFile     = "franchise.pk"
	vkFile     = "franchise.vk"
	levelsFile = "franchise.levels"
)

// Store persists the constraint system and the Groth16 key pair under dir.
func (ps *ProvingSystem) Store(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := storeArtifact(filepath.Join(dir, csFile), ps.ccs.WriteTo); err != nil {
		return err
	}
	if err := storeArtifact(filepath.Join(dir, pkFile), ps.pk.WriteRawTo); err != nil {
		return err
	}
	if err := storeArtifact(filepath.Join(dir, vkFile), ps.vk.WriteRawTo); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, levelsFile),
		[]byte(strconv.Itoa(ps.levels)), 0o644); err != nil {
		return err
	}
	log.Infow("proving artifacts stored", "dir", dir, "levels", ps.levels)
	return nil
}

// Load reads a previously stored proving system from dir. It fails if the
// stored artifacts were compiled for a different number of levels, since a
// circuit only proves paths of the length it was compiled with.
func Load(dir string, levels int) (*ProvingSystem, error) {
	raw, err := os.ReadFile(filepath.Join(dir, levelsFile))
	if err != nil {
		return nil, err
	}
	stored, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", levelsFile, err)
	}
	if stored != levels {
		return nil, fmt.Errorf("stored artifacts are for %d levels, want %d", stored, levels)
	}
	ccs := groth16.NewCS(ecc.BN254)
	if err := loadArtifact(filepath.Join(dir, csFile), ccs.ReadFrom); err != nil {
		return nil, err
	}
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := loadArtifact(filepath.Join(dir, pkFile), pk.UnsafeReadFrom); err != nil {
		return nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := loadArtifact(filepath.Join(dir, vkFile), vk.UnsafeReadFrom); err != nil {
		return nil, err
	}
	return &ProvingSystem{levels: levels, ccs: ccs, pk: pk, vk: vk}, nil
}

func storeArtifact(path string, writeTo func(w io.Writer) (int64, error)) error {
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fd.Close()
	if _, err := writeTo(fd); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

func loadArtifact(path string, readFrom func(r io.Reader) (int64, error)) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()
	if _, err := readFrom(fd); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return nil
}

// EncodeProof serializes a Groth16 proof to its opaque byte form.
func EncodeProof(proof groth16.Proof) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeProof deserializes a proof previously encoded with EncodeProof.
func DecodeProof(data []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return proof, nil
}
