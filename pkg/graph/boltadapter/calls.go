package boltadapter

import (
	"encoding/json"

	bolt "go.etcd.io/bbolt"

	"github.com/kampus-dev/kampus/pkg/model"
)

// CallEdge is one symbol reached by a Callers/Callees walk, with its
// distance in hops from the starting function.
type CallEdge struct {
	Symbol   model.Symbol
	Distance int
}

// Callers walks the CALLS graph backwards from the Function named name, up
// to maxDepth hops, returning every caller reached along with its distance.
// A function reachable by more than one path is reported once, at its
// shortest distance. Grounded on the original implementation's
// `MATCH path = (caller:Function)-[:CALLS*1..depth]->(target)`.
func (a *Adapter) Callers(name string, maxDepth int) ([]CallEdge, error) {
	return a.walkCalls(name, maxDepth, true)
}

// Callees walks the CALLS graph forwards from the Function named name, up to
// maxDepth hops, returning every callee reached along with its distance.
func (a *Adapter) Callees(name string, maxDepth int) ([]CallEdge, error) {
	return a.walkCalls(name, maxDepth, false)
}

func (a *Adapter) walkCalls(name string, maxDepth int, reverse bool) ([]CallEdge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if maxDepth <= 0 {
		maxDepth = 3
	}

	var out []CallEdge
	err := a.db.View(func(tx *bolt.Tx) error {
		starts, err := readNameIndex(tx, model.KindFunction, name)
		if err != nil {
			return err
		}
		if len(starts) == 0 {
			return nil
		}

		adjacency, err := loadCallAdjacency(tx, reverse)
		if err != nil {
			return err
		}

		visited := make(map[string]int, len(starts))
		frontier := make([]string, 0, len(starts))
		for _, id := range starts {
			visited[id] = 0
			frontier = append(frontier, id)
		}

		for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
			var next []string
			for _, id := range frontier {
				for _, neighbor := range adjacency[id] {
					if _, seen := visited[neighbor]; seen {
						continue
					}
					visited[neighbor] = depth
					next = append(next, neighbor)
				}
			}
			frontier = next
		}

		symbols := tx.Bucket(bucketSymbols)
		for id, depth := range visited {
			if depth == 0 {
				continue // the starting symbol(s) themselves
			}
			data := symbols.Get([]byte(id))
			if data == nil {
				continue
			}
			var rec symbolRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
			out = append(out, CallEdge{Symbol: rec.Symbol, Distance: depth})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// loadCallAdjacency builds an in-memory From->[]To adjacency list (or
// To->[]From when reverse) from every stored callsEdge. The reference
// adapter has no secondary index on call edges, so a traversal scans
// bucketCalls once and builds the list it needs for that one walk.
func loadCallAdjacency(tx *bolt.Tx, reverse bool) (map[string][]string, error) {
	adjacency := make(map[string][]string)
	c := tx.Bucket(bucketCalls).Cursor()
	for _, v := c.First(); v != nil; _, v = c.Next() {
		var edge callsEdge
		if err := json.Unmarshal(v, &edge); err != nil {
			continue
		}
		if reverse {
			adjacency[edge.To] = append(adjacency[edge.To], edge.From)
		} else {
			adjacency[edge.From] = append(adjacency[edge.From], edge.To)
		}
	}
	return adjacency, nil
}
