// Package census implements the census authority: a persistent database of
// fixed-depth census trees, keyed by UUID. A census is filled with voter
// public keys, then published, which freezes it, computes its root and
// indexes it by root so verifiers can resolve the tree a proof refers to.
package census

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/zk-franchise-proof/log"
	"github.com/vocdoni/zk-franchise-proof/merkletree"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

const (
	censusDBprefix          = "cs_"
	censusDBreferencePrefix = "cr_"

	// leafSerializedLen is the stored byte length of one field element.
	leafSerializedLen = 32
)

var (
	// ErrCensusNotFound is returned when a census is not in the database.
	ErrCensusNotFound = errors.New("census not found in the local database")
	// ErrCensusAlreadyExists is returned by New if the ID is already taken.
	ErrCensusAlreadyExists = errors.New("census already exists in the local database")
	// ErrCensusPublished is returned when writing to a published census.
	ErrCensusPublished = errors.New("census is published, no more keys can be added")
	// ErrCensusNotPublished is returned when reading the root or a proof of
	// a census that has not been published yet.
	ErrCensusNotPublished = errors.New("census is not published yet")
)

// CensusDB is a safe and persistent database of census trees. It keeps an
// in-memory index mapping published roots to census IDs.
type CensusDB struct {
	mu        sync.RWMutex
	db        db.Database
	loaded    map[uuid.UUID]*CensusRef
	rootIndex map[string]uuid.UUID
}

// NewCensusDB opens a census database over the given key-value store and
// rebuilds the in-memory root index from the persisted references.
func NewCensusDB(database db.Database) (*CensusDB, error) {
	c := &CensusDB{
		db:        database,
		loaded:    make(map[uuid.UUID]*CensusRef),
		rootIndex: make(map[string]uuid.UUID),
	}
	prefix := []byte(censusDBreferencePrefix)
	if err := database.Iterate(prefix, func(k, v []byte) bool {
		var ref CensusRef
		if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&ref); err != nil {
			log.Warnw("cannot decode census reference", "key", fmt.Sprintf("%x", k), "err", err)
			return true
		}
		if ref.Published {
			c.rootIndex[string(ref.Root)] = ref.ID
		}
		return true
	}); err != nil {
		return nil, err
	}
	log.Infow("census database opened", "publishedCensuses", len(c.rootIndex))
	return c, nil
}

// New creates a census of the given tree depth and adds it to the database.
func (c *CensusDB) New(censusID uuid.UUID, depth int) (*CensusRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.loaded[censusID]; exists {
		return nil, ErrCensusAlreadyExists
	}
	if _, err := c.db.Get(refKey(censusID)); err == nil {
		return nil, ErrCensusAlreadyExists
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		return nil, err
	}

	tree, err := merkletree.New(depth)
	if err != nil {
		return nil, err
	}
	ref := &CensusRef{
		ID:        censusID,
		Depth:     depth,
		CreatedAt: time.Now(),
		db:        c,
		tree:      tree,
	}
	if err := c.storeRef(ref); err != nil {
		return nil, err
	}
	c.loaded[censusID] = ref
	log.Debugw("new census created", "id", censusID.String(), "depth", depth)
	return ref, nil
}

// Load returns the census with the given ID, reading it from disk if it is
// not in memory.
func (c *CensusDB) Load(censusID uuid.UUID) (*CensusRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadUnsafe(censusID)
}

func (c *CensusDB) loadUnsafe(censusID uuid.UUID) (*CensusRef, error) {
	if ref, ok := c.loaded[censusID]; ok {
		return ref, nil
	}
	data, err := c.db.Get(refKey(censusID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, ErrCensusNotFound
		}
		return nil, err
	}
	ref := &CensusRef{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(ref); err != nil {
		return nil, fmt.Errorf("cannot decode census reference: %w", err)
	}
	ref.db = c
	if err := ref.rebuildTree(); err != nil {
		return nil, err
	}
	c.loaded[censusID] = ref
	return ref, nil
}

// ByRoot returns the published census with the given root.
func (c *CensusDB) ByRoot(root []byte) (*CensusRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	censusID, ok := c.rootIndex[string(root)]
	if !ok {
		return nil, ErrCensusNotFound
	}
	return c.loadUnsafe(censusID)
}

// Exists reports whether a census with the given ID is in the database.
func (c *CensusDB) Exists(censusID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.loaded[censusID]; ok {
		return true
	}
	_, err := c.db.Get(refKey(censusID))
	return err == nil
}

// Del removes a census and all its leaves from the database.
func (c *CensusDB) Del(censusID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ref, err := c.loadUnsafe(censusID)
	if err != nil {
		return err
	}
	wTx := c.db.WriteTx()
	defer wTx.Discard()
	if err := wTx.Delete(refKey(censusID)); err != nil {
		return err
	}
	leaves := prefixeddb.NewPrefixedWriteTx(wTx, leafPrefix(censusID))
	for i := uint64(0); i < ref.Size; i++ {
		if err := leaves.Delete(leafKey(i)); err != nil {
			return err
		}
	}
	if err := wTx.Commit(); err != nil {
		return err
	}
	if ref.Published {
		delete(c.rootIndex, string(ref.Root))
	}
	delete(c.loaded, censusID)
	log.Debugw("census deleted", "id", censusID.String())
	return nil
}

// storeRef persists a census reference. It only touches the database, so
// no map lock is needed.
func (c *CensusDB) storeRef(ref *CensusRef) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ref); err != nil {
		return fmt.Errorf("cannot encode census reference: %w", err)
	}
	wTx := c.db.WriteTx()
	defer wTx.Discard()
	if err := wTx.Set(refKey(ref.ID), buf.Bytes()); err != nil {
		return err
	}
	return wTx.Commit()
}

// indexRoot registers a published census root.
func (c *CensusDB) indexRoot(root []byte, censusID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rootIndex[string(root)] = censusID
}

func refKey(censusID uuid.UUID) []byte {
	return append([]byte(censusDBreferencePrefix), censusID[:]...)
}

func leafPrefix(censusID uuid.UUID) []byte {
	return append([]byte(censusDBprefix), censusID[:]...)
}

func leafKey(index uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, index)
	return key
}
