// Package index implements the Semantic Index (spec §4.3): a symbol
// table plus forward/inverse import graph over the files the workspace
// indexer and semantic analyzer have produced. Mutation is single-writer
// (guarded by a mutex); reads take a consistent snapshot.
package index

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"cce/internal/cerrors"
	"cce/internal/logging"
	"cce/internal/model"
)

// Index holds the current file/symbol/import state for an indexed
// workspace.
type Index struct {
	mu sync.RWMutex

	files       map[string]model.FileIndex
	imports     map[string][]model.ImportEdge // path -> outgoing edges
	inverse     map[string][]string           // resolved target path -> importing paths
	lastUpdated time.Time
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		files:   make(map[string]model.FileIndex),
		imports: make(map[string][]model.ImportEdge),
		inverse: make(map[string][]string),
	}
}

// Upsert replaces any existing entry for fi.Path with fi and edges
// (spec's replace-on-duplicate-path semantics) and advances LastUpdated.
func (idx *Index) Upsert(fi model.FileIndex, edges []model.ImportEdge) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeInverseLocked(fi.Path)
	idx.files[fi.Path] = fi
	idx.imports[fi.Path] = edges
	idx.lastUpdated = monotonicNow(idx.lastUpdated)
	logging.Get(logging.CategoryIndex).Debug("upserted %s (%d symbols, %d imports)", fi.Path, len(fi.Symbols), len(edges))
}

// Remove deletes path's entry from the index, if present.
func (idx *Index) Remove(path string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.files[path]; !ok {
		return
	}
	idx.removeInverseLocked(path)
	delete(idx.files, path)
	delete(idx.imports, path)
	idx.lastUpdated = monotonicNow(idx.lastUpdated)
}

func (idx *Index) removeInverseLocked(path string) {
	for _, e := range idx.imports[path] {
		if e.Target == "" {
			continue
		}
		idx.inverse[e.Target] = removeString(idx.inverse[e.Target], path)
	}
}

// Get returns a copy of path's FileIndex and whether it exists.
func (idx *Index) Get(path string) (model.FileIndex, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	fi, ok := idx.files[path]
	return fi, ok
}

// All returns every indexed FileIndex, sorted by path for determinism.
func (idx *Index) All() []model.FileIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]model.FileIndex, 0, len(idx.files))
	for _, fi := range idx.files {
		out = append(out, fi)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// ImportMaps returns the forward (path -> imported specifiers) and
// inverse (path -> importing paths) views used to compute the relevance
// engine's import-chain signal.
func (idx *Index) ImportMaps() (importsOf, importedBy map[string][]string) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	importsOf = make(map[string][]string, len(idx.imports))
	for path, edges := range idx.imports {
		for _, e := range edges {
			target := e.Target
			if target == "" {
				target = e.Specifier
			}
			importsOf[path] = append(importsOf[path], target)
		}
	}
	importedBy = make(map[string][]string, len(idx.inverse))
	for target, paths := range idx.inverse {
		cp := make([]string, len(paths))
		copy(cp, paths)
		importedBy[target] = cp
	}
	return importsOf, importedBy
}

// Has reports whether path is indexed.
func (idx *Index) Has(path string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.files[path]
	return ok
}

// LastUpdated returns the monotonically increasing last-mutation time.
func (idx *Index) LastUpdated() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastUpdated
}

// SymbolReferences returns, for every indexed file containing a symbol
// named name, the file path and the matching symbols in that file. The
// result is a map keyed by path, so it carries no iteration order.
func (idx *Index) SymbolReferences(name string) map[string][]model.Symbol {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[string][]model.Symbol)
	for path, fi := range idx.files {
		for _, s := range fi.Symbols {
			if s.Name == name {
				out[path] = append(out[path], s)
			}
		}
	}
	return out
}

// BuildImportGraph resolves every outgoing ImportEdge's specifier against
// the set of known file paths (best-effort suffix match against the
// specifier, since specifiers are written relative to module/package
// roots the index does not itself resolve) and rebuilds the inverse
// adjacency map. Unresolved edges keep Target empty per
// ImportEdge.Resolved's contract.
func (idx *Index) BuildImportGraph() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	known := make([]string, 0, len(idx.files))
	for path := range idx.files {
		known = append(known, path)
	}
	sort.Strings(known)

	idx.inverse = make(map[string][]string)
	for from, edges := range idx.imports {
		resolved := make([]model.ImportEdge, 0, len(edges))
		for _, e := range edges {
			target := resolveSpecifier(e.Specifier, known)
			e.Target = target
			resolved = append(resolved, e)
			if target != "" {
				idx.inverse[target] = append(idx.inverse[target], from)
			}
		}
		idx.imports[from] = resolved
	}
	for target := range idx.inverse {
		sort.Strings(idx.inverse[target])
	}
}

// Importers returns the paths that import target, post BuildImportGraph.
func (idx *Index) Importers(target string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, len(idx.inverse[target]))
	copy(out, idx.inverse[target])
	return out
}

// snapshot is the serializable on-the-wire form of an Index.
type snapshot struct {
	Files   map[string]model.FileIndex   `json:"files"`
	Imports map[string][]model.ImportEdge `json:"imports"`
}

// Serialize encodes the index's files and import edges as JSON.
func (idx *Index) Serialize() ([]byte, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snap := snapshot{Files: idx.files, Imports: idx.imports}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, cerrors.New(cerrors.IOError, "Index.Serialize", err)
	}
	return data, nil
}

// Deserialize replaces the index's contents with the state encoded in
// data, then rebuilds the import graph.
func (idx *Index) Deserialize(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return cerrors.New(cerrors.Corrupt, "Index.Deserialize", err)
	}
	if snap.Files == nil {
		snap.Files = make(map[string]model.FileIndex)
	}
	if snap.Imports == nil {
		snap.Imports = make(map[string][]model.ImportEdge)
	}

	idx.mu.Lock()
	idx.files = snap.Files
	idx.imports = snap.Imports
	idx.lastUpdated = monotonicNow(idx.lastUpdated)
	idx.mu.Unlock()

	idx.BuildImportGraph()
	return nil
}

func resolveSpecifier(specifier string, known []string) string {
	for _, path := range known {
		if path == specifier || hasSuffixPath(path, specifier) {
			return path
		}
	}
	return ""
}

func hasSuffixPath(path, specifier string) bool {
	if specifier == "" {
		return false
	}
	if len(path) < len(specifier) {
		return false
	}
	suffix := path[len(path)-len(specifier):]
	return suffix == specifier
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

func monotonicNow(prior time.Time) time.Time {
	now := time.Now()
	if !now.After(prior) {
		now = prior.Add(time.Nanosecond)
	}
	return now
}
