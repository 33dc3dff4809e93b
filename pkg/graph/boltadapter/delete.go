package boltadapter

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// DeleteFile removes the File node at path, every Symbol it CONTAINS (plus
// any symbol orphaned by file_path alone, per spec §6.1), and every edge
// touching any of them. Grounded on the teacher's ClearFile/ClearFile-
// References full-bucket-scan approach: edges have no secondary index by
// endpoint, so removal is a linear scan, same as the teacher's
// ClearFileReferences.
func (a *Adapter) DeleteFile(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return fmt.Errorf("boltadapter: not connected")
	}

	var toDeleteInSearch []string

	err := a.db.Update(func(tx *bolt.Tx) error {
		ids := map[string]bool{}

		if data := tx.Bucket(bucketFileIndex).Get([]byte(path)); data != nil {
			var recorded []string
			if err := json.Unmarshal(data, &recorded); err != nil {
				return err
			}
			for _, id := range recorded {
				ids[id] = true
			}
		}

		symbols := tx.Bucket(bucketSymbols)
		c := symbols.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec symbolRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.FilePath == path {
				ids[string(k)] = true
			}
		}

		for id := range ids {
			data := symbols.Get([]byte(id))
			if data == nil {
				continue
			}
			var rec symbolRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				continue
			}
			if err := removeFromNameIndex(tx, rec.Kind, rec.Name, id); err != nil {
				return err
			}
			if err := symbols.Delete([]byte(id)); err != nil {
				return err
			}
			toDeleteInSearch = append(toDeleteInSearch, id)
		}

		if err := deleteEdgesTouching(tx, bucketContains, ids, "file:"+path); err != nil {
			return err
		}
		if err := deleteImportsFromFile(tx, path); err != nil {
			return err
		}
		if err := deleteEdgesTouching(tx, bucketCalls, ids, ""); err != nil {
			return err
		}
		if err := deleteEdgesTouching(tx, bucketInherits, ids, ""); err != nil {
			return err
		}

		if err := tx.Bucket(bucketFiles).Delete([]byte(path)); err != nil {
			return err
		}
		return tx.Bucket(bucketFileIndex).Delete([]byte(path))
	})
	if err != nil {
		return fmt.Errorf("boltadapter: deleting file %s: %w", path, err)
	}

	for _, id := range toDeleteInSearch {
		if err := a.index.Delete(id); err != nil {
			return fmt.Errorf("boltadapter: removing %s from search index: %w", id, err)
		}
	}
	return nil
}

// deleteEdgesTouching removes every record in bucket whose From or To
// field matches an id in ids, or equals extraFrom (used for the File-node
// endpoint, which is not itself a Symbol id).
func deleteEdgesTouching(tx *bolt.Tx, bucket []byte, ids map[string]bool, extraFrom string) error {
	b := tx.Bucket(bucket)
	c := b.Cursor()
	var toDelete [][]byte
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var edge struct {
			From string
			To   string
		}
		if err := json.Unmarshal(v, &edge); err != nil {
			continue
		}
		if edge.From == extraFrom || ids[edge.From] || ids[edge.To] {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
	}
	for _, k := range toDelete {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func deleteImportsFromFile(tx *bolt.Tx, path string) error {
	b := tx.Bucket(bucketImports)
	c := b.Cursor()
	var toDelete [][]byte
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var edge importsEdge
		if err := json.Unmarshal(v, &edge); err != nil {
			continue
		}
		if edge.FromFile == path {
			toDelete = append(toDelete, append([]byte(nil), k...))
		}
	}
	for _, k := range toDelete {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
