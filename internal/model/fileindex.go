package model

// SymbolKind enumerates the kinds of declarations the semantic analyzer
// recognizes.
type SymbolKind string

const (
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolType      SymbolKind = "type"
	SymbolEnum      SymbolKind = "enum"
	SymbolFunction  SymbolKind = "function"
	SymbolMethod    SymbolKind = "method"
	SymbolProperty  SymbolKind = "property"
	SymbolVariable  SymbolKind = "variable"
	SymbolNamespace SymbolKind = "namespace"
)

// Symbol is a named declaration within a file.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Line     int
	Exported bool
	Members  []Symbol // shallow one-level tree, classes only
}

// Sentinel export markers emitted alongside named exports.
const (
	ExportDefault = "default"
	ExportWildcard = "*"
)

// FileIndex is the per-file record maintained by the workspace indexer and
// semantic index.
type FileIndex struct {
	Path         string
	Symbols      []Symbol
	Imports      []string // raw import specifiers as written
	Exports      []string
	ContentHash  string // truncated SHA-256 of file bytes
	Size         int64
	LastModified int64 // unix seconds
}

// ImportEdge is a directed edge from a file to an import specifier. Target
// is the resolved path when resolution against the index succeeded, or
// empty when the specifier is retained as an opaque unresolved string.
type ImportEdge struct {
	FromPath string
	Specifier string
	Target    string // resolved path, or "" if unresolved
}

// Resolved reports whether the edge was resolved to an indexed file.
func (e ImportEdge) Resolved() bool { return e.Target != "" }
