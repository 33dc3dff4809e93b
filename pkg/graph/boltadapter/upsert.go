package boltadapter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/model"
)

func nameIndexKey(kind model.SymbolKind, name string) []byte {
	return []byte(string(kind) + "\x00" + name)
}

// UpsertFile writes one file's extraction record: the File node, its
// Symbol nodes and CONTAINS edges, IMPORTS edges to Module nodes, and the
// best-effort CALLS/INHERITS edges resolved by name against symbols that
// already exist in the graph. Mirrors write_file in the original
// implementation clause-for-clause, adapted to bucket writes instead of
// Cypher statements.
func (a *Adapter) UpsertFile(fs model.FileSymbols) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return fmt.Errorf("boltadapter: not connected")
	}

	err := a.db.Update(func(tx *bolt.Tx) error {
		if err := putJSON(tx, bucketFiles, []byte(fs.FilePath), fileRecord{
			Path: fs.FilePath, Language: string(fs.Language),
			Hash: fs.ContentHash, LineCount: fs.LineCount,
			LastIndexed: time.Now().Unix(),
		}); err != nil {
			return err
		}

		var symbolIDs []string
		for _, sym := range fs.Symbols {
			if err := a.writeSymbol(tx, sym, fs.FilePath); err != nil {
				return err
			}
			symbolIDs = append(symbolIDs, sym.ID)
		}
		if err := putJSON(tx, bucketFileIndex, []byte(fs.FilePath), symbolIDs); err != nil {
			return err
		}

		for _, imp := range fs.Imports {
			if err := a.writeImport(tx, imp); err != nil {
				return err
			}
		}
		for _, call := range fs.Calls {
			if err := a.writeCall(tx, call); err != nil {
				return err
			}
		}
		for _, inh := range fs.Inheritance {
			if err := a.writeInheritance(tx, inh); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("boltadapter: upserting file %s: %w", fs.FilePath, err)
	}

	for _, sym := range fs.Symbols {
		if err := a.index.Index(sym.ID, symbolSearchDoc(symbolRecord{Symbol: sym, Label: graph.LabelForKind(sym.Kind)})); err != nil {
			return fmt.Errorf("boltadapter: indexing symbol %s: %w", sym.ID, err)
		}
	}
	return nil
}

func (a *Adapter) writeSymbol(tx *bolt.Tx, sym model.Symbol, filePath string) error {
	rec := symbolRecord{Symbol: sym, Label: graph.LabelForKind(sym.Kind)}
	if err := putJSON(tx, bucketSymbols, []byte(sym.ID), rec); err != nil {
		return err
	}

	if err := appendToNameIndex(tx, sym.Kind, sym.Name, sym.ID); err != nil {
		return err
	}

	if err := mergeContainsEdge(tx, "file:"+filePath, sym.ID); err != nil {
		return err
	}
	if sym.ParentID != "" {
		if err := mergeContainsEdge(tx, sym.ParentID, sym.ID); err != nil {
			return err
		}
	}
	return nil
}

// mergeContainsEdge upserts a CONTAINS edge, keyed deterministically by its
// endpoints (unlike Import/Call/Inheritance edges, a containment edge has a
// natural unique key, so no ULID surrogate is needed and repeated upserts
// of the same file stay idempotent).
func mergeContainsEdge(tx *bolt.Tx, from, to string) error {
	key := []byte(from + "\x00" + to)
	return putJSON(tx, bucketContains, key, containsEdge{From: from, To: to})
}

func (a *Adapter) writeImport(tx *bolt.Tx, imp model.Import) error {
	if err := putJSON(tx, bucketModules, []byte(imp.Target), moduleRecord{Name: imp.Target, IsExternal: true}); err != nil {
		return err
	}
	id, err := newULID()
	if err != nil {
		return err
	}
	return putJSON(tx, bucketImports, id, importsEdge{
		FromFile: imp.SourceFile, ToModule: imp.Target,
		Alias: imp.Alias, Items: imp.Items, Line: imp.Line,
	})
}

// writeCall resolves the callee by exact name among Function symbols and
// creates one CALLS edge per match, per spec §6.2's name-matching
// semantics: no edge, and no error, when nothing matches.
func (a *Adapter) writeCall(tx *bolt.Tx, call model.Call) error {
	ids, err := readNameIndex(tx, model.KindFunction, call.CalleeName)
	if err != nil {
		return err
	}
	for _, calleeID := range ids {
		id, err := newULID()
		if err != nil {
			return err
		}
		if err := putJSON(tx, bucketCalls, id, callsEdge{
			From: call.CallerID, To: calleeID, CallSiteLine: call.CallSiteLine,
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeInheritance resolves the parent by exact name among
// Class/Struct/Interface/Trait symbols and creates one INHERITS edge per
// match.
func (a *Adapter) writeInheritance(tx *bolt.Tx, inh model.Inheritance) error {
	for _, kind := range []model.SymbolKind{model.KindClass, model.KindStruct, model.KindInterface, model.KindTrait} {
		ids, err := readNameIndex(tx, kind, inh.ParentName)
		if err != nil {
			return err
		}
		for _, parentID := range ids {
			id, err := newULID()
			if err != nil {
				return err
			}
			if err := putJSON(tx, bucketInherits, id, inheritsEdge{From: inh.ChildID, To: parentID}); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendToNameIndex(tx *bolt.Tx, kind model.SymbolKind, name, symbolID string) error {
	key := nameIndexKey(kind, name)
	b := tx.Bucket(bucketNameIndex)
	var ids []string
	if data := b.Get(key); data != nil {
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
	}
	for _, id := range ids {
		if id == symbolID {
			return nil
		}
	}
	ids = append(ids, symbolID)
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func removeFromNameIndex(tx *bolt.Tx, kind model.SymbolKind, name, symbolID string) error {
	key := nameIndexKey(kind, name)
	b := tx.Bucket(bucketNameIndex)
	data := b.Get(key)
	if data == nil {
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != symbolID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return b.Delete(key)
	}
	out, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return b.Put(key, out)
}

func readNameIndex(tx *bolt.Tx, kind model.SymbolKind, name string) ([]string, error) {
	b := tx.Bucket(bucketNameIndex)
	data := b.Get(nameIndexKey(kind, name))
	if data == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMetadata reads the value of the named Metadata node.
func (a *Adapter) GetMetadata(key string) (string, bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return "", false, fmt.Errorf("boltadapter: not connected")
	}
	var value string
	var found bool
	err := a.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketMetadata).Get([]byte(key))
		if data != nil {
			value = string(data)
			found = true
		}
		return nil
	})
	return value, found, err
}

// SetMetadata upserts the value of the named Metadata node.
func (a *Adapter) SetMetadata(key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return fmt.Errorf("boltadapter: not connected")
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put([]byte(key), []byte(value))
	})
}

func (a *Adapter) getSymbolLocked(id string) (symbolRecord, bool, error) {
	var rec symbolRecord
	var found bool
	err := a.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSymbols).Get([]byte(id))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &rec)
	})
	return rec, found, err
}

func putJSON(tx *bolt.Tx, bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Bucket(bucket).Put(key, data)
}

func newULID() ([]byte, error) {
	return []byte(ulid.Make().String()), nil
}
