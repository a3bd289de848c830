// Package store implements the per-index vector+graph tables: files,
// symbols, dependencies, calls, chunks, plus the index registry. One
// Store wraps one SQLite database under <root>/db/<index-name>/
// (internal/layout); the indexer is the only writer, the query engine
// and watcher are readers.
package store

// IndexStatus is the lifecycle state of an Index.
type IndexStatus string

const (
	StatusBuilding IndexStatus = "building"
	StatusReady    IndexStatus = "ready"
	StatusFailed   IndexStatus = "failed"
)

// IndexMetadata is the single-row-per-index registry entry.
type IndexMetadata struct {
	Name            string
	RootPath        string
	Model           string
	ModelDimensions int
	Status          IndexStatus
	ChunkCount      int
	CreatedAt       string
	UpdatedAt       string
	LastRunID       string // id of the indexer run that last brought this index to Ready
}

// FileRecord tracks one indexed file.
type FileRecord struct {
	AbsPath     string
	RelPath     string
	Extension   string
	ContentHash string
	Size        int64
	MTime       string
	AnalyzedAt  string
	ParseError  string // non-empty when the last parse of this file failed
}

// SymbolKind enumerates the kinds a Symbol may have.
type SymbolKind string

const (
	SymbolFunction      SymbolKind = "function"
	SymbolArrowFunction SymbolKind = "arrow_function"
	SymbolClass         SymbolKind = "class"
	SymbolMethod        SymbolKind = "method"
	SymbolProperty      SymbolKind = "property"
	SymbolVariable      SymbolKind = "variable"
	SymbolConstant      SymbolKind = "constant"
	SymbolInterface     SymbolKind = "interface"
	SymbolTypeAlias     SymbolKind = "type_alias"
	SymbolEnum          SymbolKind = "enum"
	SymbolEnumMember    SymbolKind = "enum_member"
	SymbolEvent         SymbolKind = "event"
)

// Symbol is a named declaration extracted from a syntax tree. ID is "{rel_path}:{qualified_name}:{kind}"; qualified names are
// dotted when nested ("Class.method").
type Symbol struct {
	ID               string
	Name             string
	Kind             SymbolKind
	FilePath         string // abs path, FK to FileRecord
	RelPath          string
	LineStart        int
	LineEnd          int
	ColStart         int
	ColEnd           int
	IsExported       bool
	IsDefaultExport  bool
	Signature        string
	Doc              string
	ParentID         string
	Modifiers        []string
}

// DependencyKind enumerates the kinds a Dependency may have.
type DependencyKind string

const (
	DepImport        DependencyKind = "import"
	DepImportType    DependencyKind = "import_type"
	DepDynamicImport DependencyKind = "dynamic_import"
	DepRequire       DependencyKind = "require"
	DepExport        DependencyKind = "export"
	DepExportFrom    DependencyKind = "export_from"
	DepReExport      DependencyKind = "re_export"
)

// DependencyName is one named binding carried by a Dependency:
// `import { A as B, type C } from "./x"` produces two DependencyNames.
type DependencyName struct {
	Name        string
	Alias       string
	IsTypeOnly  bool
	IsDefault   bool
	IsNamespace bool
}

// Dependency is an import/export edge between files at the module level.
type Dependency struct {
	ID           string
	SourceFile   string // abs path
	TargetModule string
	ResolvedPath string // abs path of the target FileRecord, set iff !IsExternal
	Kind         DependencyKind
	Names        []DependencyName
	Line         int
	IsExternal   bool
}

// CallEdge is a resolved or best-effort function/method invocation from one
// symbol to another.
type CallEdge struct {
	ID            string
	CallerID      string // FK to Symbol.ID, the lexically enclosing symbol
	CallerFile    string // abs path
	CalleeName    string
	CalleeID      string // set iff a Symbol with this id exists in the index
	CalleeFile    string
	Line          int
	Column        int
	IsMethodCall  bool
	Receiver      string
	ArgumentCount int
}

// Chunk is a bounded, overlapping text window of a file, embedded into a
// vector for similarity search.
type Chunk struct {
	ID          string
	FilePath    string // abs path
	RelPath     string
	Content     string
	LineStart   int
	LineEnd     int
	Vector      []float32
	ContentHash string
}
