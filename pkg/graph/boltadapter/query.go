package boltadapter

import (
	"encoding/json"
	"fmt"
	"regexp"

	bolt "go.etcd.io/bbolt"

	"github.com/kampus-dev/kampus/pkg/graph"
)

var (
	countNodesRe  = regexp.MustCompile(`^MATCH \(n:(\w+)\) RETURN count\(n\)$`)
	countEdgesRe  = regexp.MustCompile(`^MATCH \(\)-\[r:(\w+)\]->\(\) RETURN count\(r\)$`)
	getMetadataRe = regexp.MustCompile(`^MATCH \(m:Metadata \{key: '(.*)'\}\) RETURN m\.value$`)
)

// Query executes a backend-native query. This reference adapter is not a
// full Cypher engine: it recognizes exactly the query shapes
// pkg/graph/cypher produces for counting nodes/edges and reading metadata,
// and returns graph.ErrUnsupportedQuery for anything else. A real
// FalkorDB/Neo4j-backed adapter would instead forward nativeQuery verbatim.
func (a *Adapter) Query(nativeQuery string) ([]graph.Row, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil, fmt.Errorf("boltadapter: not connected")
	}

	if m := countNodesRe.FindStringSubmatch(nativeQuery); m != nil {
		n, err := a.countLabelLocked(m[1])
		if err != nil {
			return nil, err
		}
		return []graph.Row{{intValue(int64(n))}}, nil
	}
	if m := countEdgesRe.FindStringSubmatch(nativeQuery); m != nil {
		n, err := a.countEdgeTypeLocked(m[1])
		if err != nil {
			return nil, err
		}
		return []graph.Row{{intValue(int64(n))}}, nil
	}
	if m := getMetadataRe.FindStringSubmatch(nativeQuery); m != nil {
		var value string
		var found bool
		err := a.db.View(func(tx *bolt.Tx) error {
			data := tx.Bucket(bucketMetadata).Get([]byte(m[1]))
			if data != nil {
				value = string(data)
				found = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return []graph.Row{{stringValue(value)}}, nil
	}

	return nil, graph.ErrUnsupportedQuery
}

func intValue(n int64) graph.Value     { return graph.Value{Kind: graph.ValueInt, I64: n} }
func stringValue(s string) graph.Value { return graph.Value{Kind: graph.ValueString, Str: s} }

func (a *Adapter) countLabelLocked(label string) (int, error) {
	if label == graph.LabelFile {
		var n int
		err := a.db.View(func(tx *bolt.Tx) error {
			n = tx.Bucket(bucketFiles).Stats().KeyN
			return nil
		})
		return n, err
	}
	if label == graph.LabelModule {
		var n int
		err := a.db.View(func(tx *bolt.Tx) error {
			n = tx.Bucket(bucketModules).Stats().KeyN
			return nil
		})
		return n, err
	}

	var n int
	err := a.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSymbols).Cursor()
		for _, v := c.First(); v != nil; _, v = c.Next() {
			var rec symbolRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.Label == label {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (a *Adapter) countEdgeTypeLocked(relType string) (int, error) {
	var bucket []byte
	switch relType {
	case graph.RelContains:
		bucket = bucketContains
	case graph.RelImports:
		bucket = bucketImports
	case graph.RelCalls:
		bucket = bucketCalls
	case graph.RelInherits:
		bucket = bucketInherits
	default:
		return 0, fmt.Errorf("boltadapter: unknown relationship type %q", relType)
	}
	var n int
	err := a.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Stats reports node/edge counts by label/type, backing the `status` CLI
// command.
func (a *Adapter) Stats() (graph.Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return graph.Stats{}, fmt.Errorf("boltadapter: not connected")
	}

	stats := graph.Stats{
		NodesByLabel: map[string]int{},
		EdgesByType:  map[string]int{},
	}

	err := a.db.View(func(tx *bolt.Tx) error {
		stats.NodesByLabel[graph.LabelFile] = tx.Bucket(bucketFiles).Stats().KeyN
		stats.NodesByLabel[graph.LabelModule] = tx.Bucket(bucketModules).Stats().KeyN

		c := tx.Bucket(bucketSymbols).Cursor()
		for _, v := c.First(); v != nil; _, v = c.Next() {
			var rec symbolRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			stats.NodesByLabel[rec.Label]++
		}

		stats.EdgesByType[graph.RelContains] = tx.Bucket(bucketContains).Stats().KeyN
		stats.EdgesByType[graph.RelImports] = tx.Bucket(bucketImports).Stats().KeyN
		stats.EdgesByType[graph.RelCalls] = tx.Bucket(bucketCalls).Stats().KeyN
		stats.EdgesByType[graph.RelInherits] = tx.Bucket(bucketInherits).Stats().KeyN
		return nil
	})
	return stats, err
}
