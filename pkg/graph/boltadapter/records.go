package boltadapter

import "github.com/kampus-dev/kampus/pkg/model"

// fileRecord is the stored representation of a File node.
type fileRecord struct {
	Path        string
	Language    string
	Hash        string
	LineCount   int
	LastIndexed int64
}

// symbolRecord is the stored representation of a Symbol node; it embeds
// model.Symbol directly since the node's properties are exactly the
// Symbol's fields, plus the derived label.
type symbolRecord struct {
	model.Symbol
	Label string
}

// moduleRecord is the stored representation of a Module node.
type moduleRecord struct {
	Name       string
	IsExternal bool
}

// containsEdge links a File or Symbol to a Symbol it contains.
type containsEdge struct {
	From string
	To   string
}

// importsEdge links a File to a Module it imports.
type importsEdge struct {
	FromFile  string
	ToModule  string
	Alias     string
	Items     []string
	Line      int
}

// callsEdge links a caller Symbol to a callee Function Symbol.
type callsEdge struct {
	From         string
	To           string
	CallSiteLine int
}

// inheritsEdge links a child Symbol to a parent Symbol.
type inheritsEdge struct {
	From string
	To   string
}
