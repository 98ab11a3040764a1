// Package semantic implements the Semantic Analyzer (spec §4.2): a pure,
// data-driven extractor of symbols, imports, and exports from source text.
// Per the redesign note in spec §9, analysis is table-driven regex
// matching rather than AST parsing — each language is a declarative list
// of compiled patterns, not a grammar or parser class hierarchy.
package semantic

import (
	"regexp"
	"strings"

	"cce/internal/logging"
	"cce/internal/model"
)

// SymbolPattern maps one compiled regex to the symbol kind it recognizes.
// NameGroup is the regex submatch index holding the symbol's identifier.
type SymbolPattern struct {
	Kind      model.SymbolKind
	Regex     *regexp.Regexp
	NameGroup int
	Exported  func(name string) bool
}

// LanguageProfile is a declarative description of how to recognize
// symbols, imports, and exports in one language family. Profiles never
// share mutable state, so Analyzer.Analyze is a pure function of its
// input bytes.
type LanguageProfile struct {
	Name            string
	Extensions      []string
	SymbolPatterns  []SymbolPattern
	ImportPatterns  []*regexp.Regexp // submatch 1 = import specifier
	ExportPatterns  []*regexp.Regexp // submatch 1 = exported name, optional
	DefaultExported func(name string) bool
}

// Analyzer dispatches source files to the matching LanguageProfile by
// extension and extracts symbols/imports/exports.
type Analyzer struct {
	profiles   []LanguageProfile
	byExt      map[string]*LanguageProfile
}

// NewAnalyzer builds an Analyzer with the built-in language profiles.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{}
	a.profiles = builtinProfiles()
	a.byExt = make(map[string]*LanguageProfile, 16)
	for i := range a.profiles {
		p := &a.profiles[i]
		for _, ext := range p.Extensions {
			a.byExt[ext] = p
		}
	}
	return a
}

// Analyze extracts a model.FileIndex's Symbols/Imports/Exports fields and
// the file's ImportEdges for a given path and content. Analyze is a pure
// function: identical (path, content) always yields identical output, so
// results may be cached by content hash (spec §4.2, §8).
func (a *Analyzer) Analyze(path string, content []byte) (model.FileIndex, []model.ImportEdge, error) {
	ext := extOf(path)
	profile := a.byExt[ext]
	text := string(content)

	fi := model.FileIndex{Path: path}
	var edges []model.ImportEdge

	if profile == nil {
		logging.Get(logging.CategorySemantic).Debug("no language profile for %s, skipping symbol extraction", path)
		return fi, edges, nil
	}

	lines := strings.Split(text, "\n")

	for _, sp := range profile.SymbolPatterns {
		for lineNo, line := range lines {
			m := sp.Regex.FindStringSubmatch(line)
			if m == nil || sp.NameGroup >= len(m) {
				continue
			}
			name := m[sp.NameGroup]
			if name == "" {
				continue
			}
			exported := false
			if sp.Exported != nil {
				exported = sp.Exported(name)
			} else if profile.DefaultExported != nil {
				exported = profile.DefaultExported(name)
			}
			fi.Symbols = append(fi.Symbols, model.Symbol{
				Name:     name,
				Kind:     sp.Kind,
				Line:     lineNo + 1,
				Exported: exported,
			})
		}
	}

	for _, ip := range profile.ImportPatterns {
		matches := ip.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			if len(m) < 2 {
				continue
			}
			spec := m[1]
			fi.Imports = append(fi.Imports, spec)
			edges = append(edges, model.ImportEdge{FromPath: path, Specifier: spec})
		}
	}

	for _, ep := range profile.ExportPatterns {
		matches := ep.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			if len(m) < 2 || m[1] == "" {
				fi.Exports = append(fi.Exports, model.ExportDefault)
				continue
			}
			fi.Exports = append(fi.Exports, m[1])
		}
	}

	return fi, edges, nil
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i:]
}

func isUpperFirst(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}
