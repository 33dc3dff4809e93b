package boltadapter

import (
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kampus-dev/kampus/pkg/model"
)

// openOrCreateSearchIndex opens an existing bleve index or creates a new
// one. A corrupted existing index is removed and rebuilt, matching the
// teacher's openOrCreateCodeSearchIndex.
func openOrCreateSearchIndex(path string) (bleve.Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createSearchIndex(path)
	}
	index, err := bleve.Open(path)
	if err == nil {
		return index, nil
	}
	if removeErr := os.RemoveAll(path); removeErr != nil {
		return nil, removeErr
	}
	return createSearchIndex(path)
}

func createSearchIndex(path string) (bleve.Index, error) {
	m, err := buildSymbolIndexMapping()
	if err != nil {
		return nil, err
	}
	return bleve.New(path, m)
}

// buildSymbolIndexMapping builds the bleve mapping used for the `find`
// fuzzy-search CLI surface: name (with edge-ngram prefix matching),
// signature, and docstring are analyzed text; kind/language/file are exact
// keyword fields. Find itself filters by kind and language on the stored
// symbol records, not on these fields.
func buildSymbolIndexMapping() (mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer("standard_lower", map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	}); err != nil {
		return nil, err
	}

	if err := im.AddCustomTokenFilter("edge_ngram_filter", map[string]interface{}{
		"type": edgengram.Name,
		"min":  2.0,
		"max":  15.0,
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomAnalyzer("edge_ngram", map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			"edge_ngram_filter",
		},
	}); err != nil {
		return nil, err
	}

	symbolMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = "standard_lower"
	nameField.Store = true
	symbolMapping.AddFieldMappingsAt("name", nameField)

	nameEdgeField := bleve.NewTextFieldMapping()
	nameEdgeField.Analyzer = "edge_ngram"
	nameEdgeField.Store = false
	nameEdgeField.IncludeInAll = false
	symbolMapping.AddFieldMappingsAt("name_edge", nameEdgeField)

	sigField := bleve.NewTextFieldMapping()
	sigField.Analyzer = "standard_lower"
	sigField.Store = true
	symbolMapping.AddFieldMappingsAt("signature", sigField)

	docField := bleve.NewTextFieldMapping()
	docField.Analyzer = "standard_lower"
	docField.Store = false
	symbolMapping.AddFieldMappingsAt("doc", docField)

	kindField := bleve.NewTextFieldMapping()
	kindField.Analyzer = keyword.Name
	symbolMapping.AddFieldMappingsAt("kind", kindField)

	langField := bleve.NewTextFieldMapping()
	langField.Analyzer = keyword.Name
	symbolMapping.AddFieldMappingsAt("lang", langField)

	fileField := bleve.NewTextFieldMapping()
	fileField.Analyzer = keyword.Name
	symbolMapping.AddFieldMappingsAt("file", fileField)

	im.AddDocumentMapping("symbol", symbolMapping)
	im.DefaultMapping = symbolMapping
	return im, nil
}

func symbolSearchDoc(sym symbolRecord) map[string]interface{} {
	return map[string]interface{}{
		"name":      sym.Name,
		"name_edge": sym.Name,
		"signature": sym.Signature,
		"doc":       sym.Docstring,
		"kind":      string(sym.Kind),
		"lang":      string(sym.Language),
		"file":      sym.FilePath,
	}
}

// Find runs a fuzzy name/signature/doc search over indexed symbols,
// backing the `find` CLI command. It is not part of the graph.Adapter
// contract (which only requires native Query) but is exposed for the CLI
// to call directly against the concrete reference adapter.
func (a *Adapter) Find(pattern string, kind, language string, limit int) ([]FindResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	lower := strings.ToLower(pattern)
	prefixQuery := bleve.NewPrefixQuery(lower)
	prefixQuery.SetField("name")
	wildcardQuery := bleve.NewWildcardQuery("*" + lower + "*")
	wildcardQuery.SetField("name")
	sigQuery := bleve.NewMatchQuery(pattern)
	sigQuery.SetField("signature")
	docQuery := bleve.NewMatchQuery(pattern)
	docQuery.SetField("doc")

	q := bleve.NewDisjunctionQuery(prefixQuery, wildcardQuery, sigQuery, docQuery)
	req := bleve.NewSearchRequest(q)
	req.Size = limit * 2

	result, err := a.index.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]FindResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		sym, ok, err := a.getSymbolLocked(hit.ID)
		if err != nil || !ok {
			continue
		}
		if kind != "" && string(sym.Kind) != kind {
			continue
		}
		if language != "" && string(sym.Language) != language {
			continue
		}
		out = append(out, FindResult{Symbol: sym.Symbol, Score: hit.Score})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// FindResult is one match from Find, ranked by full-text relevance score.
type FindResult struct {
	Symbol model.Symbol
	Score  float64
}
