// Package merkletree implements the fixed-depth binary Poseidon tree used
// as a voting census. Leaves are appended in insertion order, the tree is
// finalized with a single bottom-up Calc pass, and from then on it is
// immutable: roots, leaves and authentication paths may be read from any
// number of goroutines.
package merkletree

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/vocdoni/zk-franchise-proof/crypto/hash/poseidon"
)

var (
	// ErrTreeFull is returned when inserting beyond 2^(depth-1) leaves.
	ErrTreeFull = errors.New("census tree is full")
	// ErrTreeCalculated is returned when inserting after Calc.
	ErrTreeCalculated = errors.New("census tree is already calculated")
	// ErrTreeNotCalculated is returned when reading the root or a witness
	// before Calc.
	ErrTreeNotCalculated = errors.New("census tree is not calculated yet")
	// ErrInvalidIndex is returned when requesting a leaf that was never
	// inserted.
	ErrInvalidIndex = errors.New("leaf index out of range")
	// ErrInvalidDepth is returned by New when depth is zero.
	ErrInvalidDepth = errors.New("tree depth must be at least 1")
)

// PathStep is one level of an authentication path. IsLeft reports whether
// the sibling is the left operand of the compression function at that
// level (the walked node being the right one).
type PathStep struct {
	Sibling *big.Int
	IsLeft  bool
}

// Tree is a fixed-depth binary hash tree of field elements. It is not safe
// for concurrent writes; once Calc has run it is read-only and safe to
// share.
type Tree struct {
	depth      int
	nodes      []*big.Int
	hash       poseidon.Hasher
	calculated bool
}

// New returns an empty tree of the given depth, counting the leaf level.
// A tree of depth d holds up to 2^(d-1) leaves.
func New(depth int) (*Tree, error) {
	if depth < 1 {
		return nil, ErrInvalidDepth
	}
	return &Tree{
		depth: depth,
		nodes: make([]*big.Int, 0, 2*capacityForDepth(depth)-1),
		hash:  poseidon.HashFunc,
	}, nil
}

func capacityForDepth(depth int) int {
	return 1 << (depth - 1)
}

// Depth returns the tree depth, counting the leaf level.
func (t *Tree) Depth() int { return t.depth }

// Size returns the number of inserted leaves.
func (t *Tree) Size() int {
	if n := capacityForDepth(t.depth); len(t.nodes) > n {
		return n
	}
	return len(t.nodes)
}

// Insert appends value as the next unfilled leaf and returns its index.
func (t *Tree) Insert(value *big.Int) (int, error) {
	if t.calculated {
		return 0, ErrTreeCalculated
	}
	if len(t.nodes) >= capacityForDepth(t.depth) {
		return 0, ErrTreeFull
	}
	t.nodes = append(t.nodes, new(big.Int).Set(value))
	return len(t.nodes) - 1, nil
}

// Calc pads the unfilled leaf slots with zero and computes all internal
// nodes in a single bottom-up pass. After Calc the tree is immutable.
func (t *Tree) Calc() error {
	if t.calculated {
		return ErrTreeCalculated
	}
	size := capacityForDepth(t.depth)
	for len(t.nodes) < size {
		t.nodes = append(t.nodes, big.NewInt(0))
	}
	// Each iteration consumes the pair at i and appends its parent, so the
	// slice grows while being walked. It settles with 2*size-1 nodes, the
	// last one being the root.
	for i := 0; i < 2*size-2; i += 2 {
		h, err := t.hash.Hash(t.nodes[i], t.nodes[i+1])
		if err != nil {
			return fmt.Errorf("cannot hash tree nodes %d,%d: %w", i, i+1, err)
		}
		t.nodes = append(t.nodes, h)
	}
	t.calculated = true
	return nil
}

// Root returns the tree root. It fails if Calc has not run.
func (t *Tree) Root() (*big.Int, error) {
	if !t.calculated {
		return nil, ErrTreeNotCalculated
	}
	return t.nodes[len(t.nodes)-1], nil
}

// Get returns the leaf at the given insertion index.
func (t *Tree) Get(index int) (*big.Int, error) {
	if index < 0 || index >= capacityForDepth(t.depth) ||
		(!t.calculated && index >= len(t.nodes)) {
		return nil, ErrInvalidIndex
	}
	return t.nodes[index], nil
}

// Witness returns the authentication path of the leaf at the given index,
// ordered from the leaf level towards the root. For a depth-1 tree the
// path is empty.
func (t *Tree) Witness(index int) ([]PathStep, error) {
	if !t.calculated {
		return nil, ErrTreeNotCalculated
	}
	if index < 0 || index >= capacityForDepth(t.depth) {
		return nil, ErrInvalidIndex
	}
	path := make([]PathStep, 0, t.depth-1)
	base := 0
	for n := 0; n < t.depth-1; n++ {
		// The sibling of an even node is at +1 (our right), of an odd node
		// at -1 (our left).
		siblingOffset := 1 - (index & 1)
		path = append(path, PathStep{
			Sibling: t.nodes[base+(index&^1)+siblingOffset],
			IsLeft:  siblingOffset == 0,
		})
		base += 1 << (t.depth - n - 1)
		index >>= 1
	}
	return path, nil
}

// CheckWitness re-derives the root from a leaf and its authentication path
// and reports whether it matches the expected root. This is the reference
// algorithm the franchise circuit reproduces under constraints.
func CheckWitness(leaf *big.Int, path []PathStep, root *big.Int) bool {
	cur := leaf
	for _, step := range path {
		var err error
		if step.IsLeft {
			cur, err = poseidon.Hash2(step.Sibling, cur)
		} else {
			cur, err = poseidon.Hash2(cur, step.Sibling)
		}
		if err != nil {
			return false
		}
	}
	return cur.Cmp(root) == 0
}
