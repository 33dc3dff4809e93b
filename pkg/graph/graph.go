// Package graph defines the storage-backend-agnostic contract the indexing
// pipelines write through. A real deployment could implement Adapter against
// FalkorDB or Neo4j; pkg/graph/boltadapter is the in-process reference
// implementation used by the CLI and by tests.
package graph

import (
	"errors"

	"github.com/kampus-dev/kampus/pkg/model"
)

// ErrUnsupportedQuery is returned by an Adapter's Query when the native
// query text is not one of the shapes that adapter understands.
var ErrUnsupportedQuery = errors.New("graph: unsupported native query")

// Node labels, fixed by the schema in spec §6.2. One label per SymbolKind
// plus File, Module, and Metadata.
const (
	LabelFile      = "File"
	LabelModule    = "Module"
	LabelMetadata  = "Metadata"
	LabelFunction  = "Function"
	LabelClass     = "Class"
	LabelStruct    = "Struct"
	LabelInterface = "Interface"
	LabelMethod    = "Method"
	LabelTrait     = "Trait"
	LabelEnum      = "Enum"
	LabelConstant  = "Constant"
	LabelVariable  = "Variable"
)

// Relationship types.
const (
	RelContains = "CONTAINS"
	RelImports  = "IMPORTS"
	RelCalls    = "CALLS"
	RelInherits = "INHERITS"
)

// LabelForKind maps a SymbolKind to its graph node label. One label per
// SymbolKind, per spec §6.2.
func LabelForKind(kind model.SymbolKind) string {
	switch kind {
	case model.KindFunction:
		return LabelFunction
	case model.KindClass:
		return LabelClass
	case model.KindStruct:
		return LabelStruct
	case model.KindInterface:
		return LabelInterface
	case model.KindMethod:
		return LabelMethod
	case model.KindTrait:
		return LabelTrait
	case model.KindEnum:
		return LabelEnum
	case model.KindConstant:
		return LabelConstant
	case model.KindVariable:
		return LabelVariable
	default:
		return string(kind)
	}
}

// InheritableLabels are the labels CALLS/INHERITS edges may resolve against
// for a parent/callee symbol, per spec §6.2's matched-by-name rule. CALLS
// targets are always Function; INHERITS targets are any of these.
var InheritableLabels = []string{LabelClass, LabelStruct, LabelInterface, LabelTrait}

// Value is a single cell of a Query result row, a discriminated union over
// the value shapes a backend query can return. Decode explicitly at each
// use site rather than relying on dynamic typing, per spec §9's "tagged
// variants for FalkorValue-like results" note.
type Value struct {
	Kind ValueKind

	Str   string
	I64   int64
	F64   float64
	Bool  bool
	Null  bool
	List  []Value
	Map   map[string]Value
	Node  *NodeValue
	Edge  *EdgeValue
}

// ValueKind discriminates the Value union.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueInt
	ValueFloat
	ValueBool
	ValueList
	ValueMap
	ValueNode
	ValueEdge
)

// NodeValue is a graph node returned from a Query, with its labels and
// properties decoded.
type NodeValue struct {
	Labels     []string
	Properties map[string]Value
}

// EdgeValue is a graph relationship returned from a Query.
type EdgeValue struct {
	Type       string
	Properties map[string]Value
}

// Row is one row of a Query result.
type Row []Value

// Stats summarizes the current contents of the graph, grouped by label and
// relationship type.
type Stats struct {
	NodesByLabel map[string]int
	EdgesByType  map[string]int
}

// Adapter is the operation set the indexing pipelines require of a graph
// backend. Implementations must be safe for the "one in-flight query per
// connection" discipline described in spec §5 — callers never issue
// concurrent calls against the same Adapter without external serialization,
// but an Adapter may still choose to serialize internally for safety.
type Adapter interface {
	// Connect opens (or re-opens) a handle to the named graph at uri.
	Connect(uri, graphName string) error

	// Initialize creates the label/property indexes the schema relies on.
	// Errors that indicate an index already exists are swallowed; any
	// other error is fatal.
	Initialize() error

	// Clear detach-deletes every node and edge in the graph.
	Clear() error

	// DeleteFile removes the File node at path, everything it CONTAINS,
	// and any symbol left orphaned by file_path alone (a symbol whose
	// CONTAINS edge from File was never created, or was already severed).
	DeleteFile(path string) error

	// UpsertFile writes one file's extraction record: the File node,
	// its Symbol nodes and CONTAINS edges, IMPORTS edges to Module
	// nodes, and the best-effort CALLS/INHERITS edges resolved by name
	// against symbols that exist in the graph at write time.
	UpsertFile(fs model.FileSymbols) error

	// GetMetadata reads the value of the named Metadata node, or ("",
	// false) if absent.
	GetMetadata(key string) (string, bool, error)

	// SetMetadata upserts the value of the named Metadata node.
	SetMetadata(key, value string) error

	// Query executes a backend-native query and returns its rows.
	Query(nativeQuery string) ([]Row, error)

	// Stats reports node/edge counts by label/type, for the CLI's
	// `status` command.
	Stats() (Stats, error)

	// Close releases any resources held by the adapter.
	Close() error
}
