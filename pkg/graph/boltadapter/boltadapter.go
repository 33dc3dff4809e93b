// Package boltadapter is the reference implementation of graph.Adapter: an
// in-process store backed by go.etcd.io/bbolt for node/edge persistence and
// blevesearch/bleve/v2 for name-indexed symbol lookup. It exists so the CLI
// and test suite have a working backend without a FalkorDB/Neo4j instance;
// a production deployment would implement graph.Adapter against one of
// those instead.
package boltadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/kampus-dev/kampus/pkg/graph"
)

var (
	bucketFiles      = []byte("files")
	bucketSymbols    = []byte("symbols")
	bucketModules    = []byte("modules")
	bucketMetadata   = []byte("metadata")
	bucketFileIndex  = []byte("file_index")  // file path -> []symbol id
	bucketNameIndex  = []byte("name_index")  // "kind\x00name" -> []symbol id
	bucketContains   = []byte("e_contains")  // "from\x00to" -> containsEdge
	bucketImports    = []byte("e_imports")   // ulid -> importsEdge
	bucketCalls      = []byte("e_calls")     // ulid -> callsEdge
	bucketInherits   = []byte("e_inherits")  // ulid -> inheritsEdge
	allBuckets       = [][]byte{
		bucketFiles, bucketSymbols, bucketModules, bucketMetadata,
		bucketFileIndex, bucketNameIndex,
		bucketContains, bucketImports, bucketCalls, bucketInherits,
	}
)

// Adapter is the bbolt+bleve reference graph.Adapter.
type Adapter struct {
	mu sync.Mutex // one in-flight query per connection, per spec §5

	db    *bolt.DB
	index bleve.Index

	baseDir   string
	graphName string
}

// New returns an unconnected Adapter. Call Connect before use.
func New() *Adapter {
	return &Adapter{}
}

var _ graph.Adapter = (*Adapter)(nil)

// Connect opens (creating if absent) the bbolt database and bleve index for
// graphName under the directory uri. uri is a filesystem path for this
// local reference adapter; a FalkorDB/Neo4j-backed adapter would instead
// treat uri as a connection string.
func (a *Adapter) Connect(uri, graphName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if graphName == "" {
		graphName = "kampus"
	}
	dir := filepath.Join(uri, graphName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("boltadapter: creating graph directory %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "graph.db")
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf("boltadapter: opening %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("boltadapter: initializing buckets: %w", err)
	}

	searchPath := filepath.Join(dir, "search.bleve")
	index, err := openOrCreateSearchIndex(searchPath)
	if err != nil {
		db.Close()
		return fmt.Errorf("boltadapter: opening search index: %w", err)
	}

	a.db = db
	a.index = index
	a.baseDir = dir
	a.graphName = graphName
	return nil
}

// Initialize ensures the backing buckets and search index exist. Connect
// already creates them, so Initialize is idempotent; this mirrors spec
// §6.1's "existing-index errors are ignored" contract without a real
// CREATE INDEX statement to run, since bbolt has no index DDL — the name
// index (bucketNameIndex) and bleve mapping are built at write time
// instead. See pkg/graph/cypher.InitIndexQueries for the statements a
// Cypher-speaking backend would run for the same purpose.
func (a *Adapter) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return fmt.Errorf("boltadapter: not connected")
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear detach-deletes every node and edge: every bucket is emptied and the
// search index is rebuilt from scratch, matching the teacher's
// CodeStore.Clear.
func (a *Adapter) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return fmt.Errorf("boltadapter: not connected")
	}

	err := a.db.Update(func(tx *bolt.Tx) error {
		for _, b := range allBuckets {
			bucket := tx.Bucket(b)
			c := bucket.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := bucket.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("boltadapter: clearing buckets: %w", err)
	}

	searchPath := filepath.Join(a.baseDir, "search.bleve")
	a.index.Close()
	if err := os.RemoveAll(searchPath); err != nil {
		return fmt.Errorf("boltadapter: removing search index: %w", err)
	}
	index, err := createSearchIndex(searchPath)
	if err != nil {
		return fmt.Errorf("boltadapter: recreating search index: %w", err)
	}
	a.index = index
	return nil
}

// Close releases the bbolt and bleve handles.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	if a.index != nil {
		if cerr := a.index.Close(); cerr != nil {
			err = cerr
		}
	}
	if a.db != nil {
		if cerr := a.db.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}
