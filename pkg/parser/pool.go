// Package parser provides a per-goroutine tree-sitter parser cache.
//
// tree-sitter parsers are not safe for concurrent use but are cheap to
// construct. Rather than guard a shared cache with a mutex — which would
// serialize every parse across every worker — each worker goroutine
// constructs its own *Pool and keeps it for the lifetime of its work,
// exactly mirroring a thread-local cache without any lock.
package parser

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/grammar"
	"github.com/kampus-dev/kampus/pkg/model"
)

// ErrParseFailed is returned when tree-sitter returns no tree for otherwise
// well-formed input.
type ErrParseFailed struct {
	Language model.Language
}

func (e *ErrParseFailed) Error() string {
	return fmt.Sprintf("parser: %s parser returned no tree", e.Language)
}

// Pool owns one *tree_sitter.Parser per language, lazily constructed on
// first use. A Pool must not be shared across goroutines — construct one
// per worker.
type Pool struct {
	registry *grammar.Registry
	parsers  map[model.Language]*tree_sitter.Parser
}

// NewPool creates a Pool backed by registry. Callers typically share one
// *grammar.Registry (read-only after construction) across many per-worker
// Pools.
func NewPool(registry *grammar.Registry) *Pool {
	return &Pool{
		registry: registry,
		parsers:  make(map[model.Language]*tree_sitter.Parser),
	}
}

// getParser returns this pool's cached parser for l, initializing the
// grammar binding on first use.
func (p *Pool) getParser(l model.Language) (*tree_sitter.Parser, error) {
	if ps, ok := p.parsers[l]; ok {
		return ps, nil
	}

	lang, err := p.registry.Load(l)
	if err != nil {
		return nil, err
	}

	ts := tree_sitter.NewParser()
	if err := ts.SetLanguage(lang); err != nil {
		ts.Close()
		return nil, fmt.Errorf("parser: setting language %s: %w", l, err)
	}

	p.parsers[l] = ts
	return ts, nil
}

// Parse parses source using this pool's cached parser for l.
func (p *Pool) Parse(l model.Language, source []byte) (*tree_sitter.Tree, error) {
	ts, err := p.getParser(l)
	if err != nil {
		return nil, err
	}

	tree := ts.Parse(source, nil)
	if tree == nil {
		return nil, &ErrParseFailed{Language: l}
	}
	return tree, nil
}

// Close releases every cached parser. Call once the owning goroutine is
// done with the pool.
func (p *Pool) Close() {
	for _, ts := range p.parsers {
		ts.Close()
	}
	p.parsers = nil
}
