package census

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/arbo"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
	"github.com/vocdoni/zk-franchise-proof/types"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

// CensusRef is a reference to one census. The exported fields are the
// persisted metadata; the tree itself is rebuilt from the stored leaves
// when the census is loaded. All tree access is protected by treeMu.
type CensusRef struct {
	ID        uuid.UUID
	Depth     int
	Size      uint64
	Published bool
	Root      types.HexBytes
	CreatedAt time.Time

	db     *CensusDB
	tree   *merkletree.Tree
	treeMu sync.Mutex
}

// MaxSize returns the leaf capacity of the census tree.
func (cr *CensusRef) MaxSize() uint64 {
	return 1 << (cr.Depth - 1)
}

// rebuildTree reloads the tree leaves from storage and, if the census is
// published, recomputes the internal nodes.
func (cr *CensusRef) rebuildTree() error {
	tree, err := merkletree.New(cr.Depth)
	if err != nil {
		return err
	}
	leaves := prefixeddb.NewPrefixedDatabase(cr.db.db, leafPrefix(cr.ID))
	for i := uint64(0); i < cr.Size; i++ {
		data, err := leaves.Get(leafKey(i))
		if err != nil {
			return fmt.Errorf("missing census leaf %d: %w", i, err)
		}
		if _, err := tree.Insert(arbo.BytesToBigInt(data)); err != nil {
			return err
		}
	}
	if cr.Published {
		if err := tree.Calc(); err != nil {
			return err
		}
	}
	cr.tree = tree
	return nil
}

// Insert appends a voter key to the census and returns its leaf index.
// It fails once the census is published or full.
func (cr *CensusRef) Insert(leaf *big.Int) (uint64, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	if cr.Published {
		return 0, ErrCensusPublished
	}
	index, err := cr.tree.Insert(leaf)
	if err != nil {
		return 0, err
	}
	wTx := cr.db.db.WriteTx()
	defer wTx.Discard()
	leaves := prefixeddb.NewPrefixedWriteTx(wTx, leafPrefix(cr.ID))
	if err := leaves.Set(leafKey(uint64(index)), arbo.BigIntToBytes(leafSerializedLen, leaf)); err != nil {
		return 0, err
	}
	if err := wTx.Commit(); err != nil {
		return 0, err
	}
	cr.Size = uint64(index) + 1
	return uint64(index), cr.db.storeRef(cr)
}

// Publish freezes the census, computes the tree and indexes its root.
// Publishing an already published census just returns its root.
func (cr *CensusRef) Publish() (types.HexBytes, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	if cr.Published {
		return cr.Root, nil
	}
	if err := cr.tree.Calc(); err != nil {
		return nil, err
	}
	root, err := cr.tree.Root()
	if err != nil {
		return nil, err
	}
	cr.Published = true
	cr.Root = arbo.BigIntToBytes(leafSerializedLen, root)
	if err := cr.db.storeRef(cr); err != nil {
		return nil, err
	}
	cr.db.indexRoot(cr.Root, cr.ID)
	return cr.Root, nil
}

// TreeRoot returns the census root as a field element. It fails if the
// census has not been published.
func (cr *CensusRef) TreeRoot() (*big.Int, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	if !cr.Published {
		return nil, ErrCensusNotPublished
	}
	return cr.tree.Root()
}

// Get returns the leaf at the given insertion index.
func (cr *CensusRef) Get(index uint64) (*big.Int, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	return cr.tree.Get(int(index))
}

// Proof returns the authentication path of the leaf at the given index,
// ready to be served to the voter. It fails if the census has not been
// published.
func (cr *CensusRef) Proof(index uint64) (*types.CensusProof, error) {
	cr.treeMu.Lock()
	defer cr.treeMu.Unlock()
	if !cr.Published {
		return nil, ErrCensusNotPublished
	}
	leaf, err := cr.tree.Get(int(index))
	if err != nil {
		return nil, err
	}
	path, err := cr.tree.Witness(int(index))
	if err != nil {
		return nil, err
	}
	proof := &types.CensusProof{
		Root:     cr.Root,
		Index:    index,
		Leaf:     new(types.BigInt).SetBigInt(leaf),
		Siblings: make([]*types.BigInt, len(path)),
		IsLeft:   make([]bool, len(path)),
	}
	for i, step := range path {
		proof.Siblings[i] = new(types.BigInt).SetBigInt(step.Sibling)
		proof.IsLeft[i] = step.IsLeft
	}
	return proof, nil
}

// PathSteps converts a served CensusProof back into the tree's path step
// form, as consumed by the circuit witness builder.
func PathSteps(proof *types.CensusProof) []merkletree.PathStep {
	path := make([]merkletree.PathStep, len(proof.Siblings))
	for i := range proof.Siblings {
		path[i] = merkletree.PathStep{
			Sibling: proof.Siblings[i].MathBigInt(),
			IsLeft:  proof.IsLeft[i],
		}
	}
	return path
}
