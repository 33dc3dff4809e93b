// Package cypher builds Cypher-shaped query text for a Cypher-speaking
// backend. The reference adapter (pkg/graph/boltadapter) writes its buckets
// directly and only recognizes the count and metadata read shapes built
// here. A real FalkorDB/Neo4j adapter would reuse these same helpers rather
// than hand-building query strings.
package cypher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kampus-dev/kampus/pkg/graph"
	"github.com/kampus-dev/kampus/pkg/model"
)

// Escape escapes a string for embedding in a single-quoted Cypher literal.
// Per spec §9's mandatory minimum: backslash, single quote, newline,
// carriage return, and tab. A backend that supports parameterized queries
// should prefer that path; this is the fallback string-concatenation
// contract the spec requires when it doesn't.
func Escape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}

// InitIndexQueries returns the CREATE INDEX statements spec §6.1 requires
// during Initialize. Errors from statements whose index already exists
// must be ignored by the caller.
func InitIndexQueries() []string {
	return []string{
		"CREATE INDEX FOR (f:File) ON (f.path)",
		"CREATE INDEX FOR (fn:Function) ON (fn.name)",
		"CREATE INDEX FOR (fn:Function) ON (fn.file_path)",
		"CREATE INDEX FOR (c:Class) ON (c.name)",
		"CREATE INDEX FOR (c:Class) ON (c.file_path)",
		"CREATE INDEX FOR (s:Struct) ON (s.name)",
		"CREATE INDEX FOR (s:Struct) ON (s.file_path)",
		"CREATE INDEX FOR (i:Interface) ON (i.name)",
		"CREATE INDEX FOR (m:Module) ON (m.name)",
	}
}

// ClearQuery detach-deletes every node in the graph.
func ClearQuery() string {
	return "MATCH (n) DETACH DELETE n"
}

// DeleteFileQueries returns the statements that remove a File node,
// everything it CONTAINS, and any symbol orphaned by file_path alone.
func DeleteFileQueries(path string) []string {
	p := Escape(path)
	return []string{
		fmt.Sprintf(`MATCH (f:File {path: '%s'})
OPTIONAL MATCH (f)-[:%s]->(s)
DETACH DELETE f, s`, p, graph.RelContains),
		fmt.Sprintf(`MATCH (s)
WHERE s.file_path = '%s'
DETACH DELETE s`, p),
	}
}

// UpsertFileQuery creates or updates the File node.
func UpsertFileQuery(fs model.FileSymbols) string {
	return fmt.Sprintf(`MERGE (f:File {path: '%s'})
SET f.language = '%s',
    f.hash = '%s',
    f.line_count = %d,
    f.last_indexed = timestamp()`,
		Escape(fs.FilePath), Escape(string(fs.Language)), Escape(fs.ContentHash), fs.LineCount)
}

// UpsertSymbolQueries returns the statement that creates/updates a Symbol
// node and its CONTAINS edge from File, plus — when the symbol has a
// parent — a second statement linking it under its parent via CONTAINS.
func UpsertSymbolQueries(sym model.Symbol, filePath string) []string {
	label := graph.LabelForKind(sym.Kind)
	queries := []string{fmt.Sprintf(`MERGE (s:%s {id: '%s'})
SET s.name = '%s',
    s.file_path = '%s',
    s.start_line = %d,
    s.end_line = %d,
    s.signature = '%s',
    s.visibility = '%s',
    s.is_async = %t,
    s.docstring = '%s',
    s.language = '%s'
WITH s
MATCH (f:File {path: '%s'})
MERGE (f)-[:%s]->(s)`,
		label, Escape(sym.ID),
		Escape(sym.Name), Escape(filePath), sym.StartLine, sym.EndLine,
		Escape(sym.Signature), Escape(string(sym.Visibility)), sym.IsAsync,
		Escape(sym.Docstring), Escape(string(sym.Language)),
		Escape(filePath), graph.RelContains)}

	if sym.ParentID != "" {
		queries = append(queries, fmt.Sprintf(`MATCH (p {id: '%s'})
MATCH (c {id: '%s'})
MERGE (p)-[:%s]->(c)`, Escape(sym.ParentID), Escape(sym.ID), graph.RelContains))
	}
	return queries
}

// UpsertImportQuery creates the target Module node (if absent) and the
// IMPORTS edge carrying alias/items/line.
func UpsertImportQuery(imp model.Import) (string, error) {
	itemsJSON, err := json.Marshal(imp.Items)
	if err != nil {
		return "", fmt.Errorf("cypher: marshaling import items: %w", err)
	}
	return fmt.Sprintf(`MERGE (m:Module {name: '%s'})
SET m.is_external = true
WITH m
MATCH (f:File {path: '%s'})
MERGE (f)-[r:%s]->(m)
SET r.alias = '%s',
    r.items = '%s',
    r.line = %d`,
		Escape(imp.Target), Escape(imp.SourceFile), graph.RelImports,
		Escape(imp.Alias), Escape(string(itemsJSON)), imp.Line), nil
}

// CallQuery creates a CALLS edge from caller to an existing Function named
// call.CalleeName, if one exists. No edge is created otherwise, and no
// error is raised — matching spec §6.2's "not retried later" rule, via the
// FOREACH-CASE-WHEN conditional-edge idiom.
func CallQuery(call model.Call) string {
	return fmt.Sprintf(`MATCH (caller {id: '%s'})
OPTIONAL MATCH (callee:%s {name: '%s'})
FOREACH (_ IN CASE WHEN callee IS NOT NULL THEN [1] ELSE [] END |
    MERGE (caller)-[r:%s]->(callee)
    SET r.call_site_line = %d
)`, Escape(call.CallerID), graph.LabelFunction, Escape(call.CalleeName),
		graph.RelCalls, call.CallSiteLine)
}

// InheritanceQuery creates an INHERITS edge from child to an existing
// Class/Struct/Interface/Trait named inh.ParentName, if one exists.
func InheritanceQuery(inh model.Inheritance) string {
	var labelClauses []string
	for _, l := range graph.InheritableLabels {
		labelClauses = append(labelClauses, "parent:"+l)
	}
	return fmt.Sprintf(`MATCH (child {id: '%s'})
OPTIONAL MATCH (parent)
WHERE (%s)
  AND parent.name = '%s'
FOREACH (_ IN CASE WHEN parent IS NOT NULL THEN [1] ELSE [] END |
    MERGE (child)-[:%s]->(parent)
)`, Escape(inh.ChildID), strings.Join(labelClauses, " OR "),
		Escape(inh.ParentName), graph.RelInherits)
}

// GetMetadataQuery reads the value of a Metadata node.
func GetMetadataQuery(key string) string {
	return fmt.Sprintf(`MATCH (m:Metadata {key: '%s'}) RETURN m.value`, Escape(key))
}

// SetMetadataQuery upserts the value of a Metadata node.
func SetMetadataQuery(key, value string) string {
	return fmt.Sprintf(`MERGE (m:Metadata {key: '%s'})
SET m.value = '%s'`, Escape(key), Escape(value))
}

// CountQuery returns a statement that counts nodes carrying label.
func CountQuery(label string) string {
	return fmt.Sprintf("MATCH (n:%s) RETURN count(n)", label)
}

// CountEdgesQuery returns a statement that counts edges of the given type.
func CountEdgesQuery(relType string) string {
	return fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", relType)
}
