package extract

import (
	"testing"

	"github.com/kampus-dev/kampus/pkg/grammar"
	"github.com/kampus-dev/kampus/pkg/parser"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kampus-dev/kampus/pkg/model"
)

func parseSource(t *testing.T, lang model.Language, source string) *tree_sitter.Tree {
	t.Helper()
	pool := parser.NewPool(grammar.NewRegistry())
	t.Cleanup(pool.Close)

	tree, err := pool.Parse(lang, []byte(source))
	if err != nil {
		t.Fatalf("parse %s: %v", lang, err)
	}
	return tree
}

func symbolByName(symbols []model.Symbol, name string) (model.Symbol, bool) {
	for _, s := range symbols {
		if s.Name == name {
			return s, true
		}
	}
	return model.Symbol{}, false
}

func TestForAndExtractUnsupportedLanguage(t *testing.T) {
	if _, ok := For(model.Language("cobol")); ok {
		t.Fatal("expected no extractor for unknown language")
	}

	_, err := Extract(model.Language("cobol"), nil, nil, "f")
	if err == nil {
		t.Fatal("expected error for unsupported language")
	}
	if _, ok := err.(*ErrUnsupportedLanguage); !ok {
		t.Fatalf("expected *ErrUnsupportedLanguage, got %T", err)
	}
}
