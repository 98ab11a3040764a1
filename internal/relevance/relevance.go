// Package relevance implements the Relevance Engine (spec §4.5): five
// bounded signals over a candidate file, combined via configured
// weights into a single ranked score.
package relevance

import (
	"sort"
	"strings"
	"time"

	"cce/internal/config"
	"cce/internal/model"
)

// AccessRecord tracks when and how often a file was last touched, the
// input to the recent-access and user-pattern signals.
type AccessRecord struct {
	LastAccess time.Time
	Count      int
}

// Input bundles everything the Engine needs to rank a candidate set.
type Input struct {
	CurrentFile   string
	Query         string
	Candidates    []model.FileIndex
	ImportsOf     map[string][]string // path -> paths it imports
	ImportedBy    map[string][]string // path -> paths that import it
	AccessHistory map[string]AccessRecord
	Now           time.Time
}

// Engine scores and ranks candidate files against a query and the
// currently open file.
type Engine struct {
	cfg config.RelevanceConfig
}

// New creates an Engine bound to cfg.
func New(cfg config.RelevanceConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Rank scores every candidate in in.Candidates and returns them ordered
// by descending score, breaking ties by descending confidence and then
// ascending path (spec §4.5's deterministic tie-break order).
func (e *Engine) Rank(in Input) []model.RelevanceScore {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	scores := make([]model.RelevanceScore, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		signals := model.SignalBreakdown{
			DirectReference: directReferenceSignal(in.Query, c),
			SymbolMatch:     symbolMatchSignal(in.Query, c),
			ImportChain:     importChainSignal(in.CurrentFile, c.Path, in.ImportsOf, in.ImportedBy),
			RecentAccess:    recentAccessSignal(in.AccessHistory[c.Path], now, e.cfg.RecencyDecayRate),
			UserPattern:     userPatternSignal(in.AccessHistory[c.Path]),
		}
		score := e.cfg.DirectReferenceWeight*signals.DirectReference +
			e.cfg.SymbolMatchWeight*signals.SymbolMatch +
			e.cfg.ImportChainWeight*signals.ImportChain +
			e.cfg.RecentAccessWeight*signals.RecentAccess +
			e.cfg.UserPatternWeight*signals.UserPattern

		scores = append(scores, model.RelevanceScore{
			Path:       c.Path,
			Score:      clamp01(score),
			Confidence: confidenceOf(signals),
			Signals:    signals,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if scores[i].Confidence != scores[j].Confidence {
			return scores[i].Confidence > scores[j].Confidence
		}
		return scores[i].Path < scores[j].Path
	})
	return scores
}

// directReferenceSignal is 1.0 when the query literally names the
// candidate's path or basename, 0 otherwise.
func directReferenceSignal(query string, c model.FileIndex) float64 {
	if query == "" {
		return 0
	}
	q := strings.ToLower(query)
	path := strings.ToLower(c.Path)
	base := path
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		base = path[i+1:]
	}
	if strings.Contains(q, path) || strings.Contains(q, base) {
		return 1.0
	}
	return 0
}

// symbolMatchSignal is the fraction of the candidate's exported symbols
// the query mentions by name, capped at 1.0.
func symbolMatchSignal(query string, c model.FileIndex) float64 {
	if query == "" || len(c.Symbols) == 0 {
		return 0
	}
	q := strings.ToLower(query)
	matched, exported := 0, 0
	for _, s := range c.Symbols {
		if s.Name == "" || !s.Exported {
			continue
		}
		exported++
		if strings.Contains(q, strings.ToLower(s.Name)) {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	ratio := float64(matched) / float64(exported)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// importChainSignal is 1.0 for a direct import relationship (either
// direction) between currentFile and candidate, 0.5 for a two-hop
// relationship, 0 otherwise.
func importChainSignal(currentFile, candidate string, importsOf, importedBy map[string][]string) float64 {
	if currentFile == "" || currentFile == candidate {
		return 0
	}
	if contains(importsOf[currentFile], candidate) || contains(importedBy[currentFile], candidate) {
		return 1.0
	}
	for _, mid := range importsOf[currentFile] {
		if contains(importsOf[mid], candidate) || contains(importedBy[mid], candidate) {
			return 0.5
		}
	}
	return 0
}

// recentAccessSignal applies exponential decay exp(-decayRate * hoursSince)
// to the most recent access time, 0 when never accessed.
func recentAccessSignal(rec AccessRecord, now time.Time, decayRate float64) float64 {
	if rec.LastAccess.IsZero() {
		return 0
	}
	hours := now.Sub(rec.LastAccess).Hours()
	if hours < 0 {
		hours = 0
	}
	return expDecay(decayRate, hours)
}

// userPatternSignal rewards files accessed often, saturating via a
// simple ratio so a handful of early accesses don't already max the
// signal out.
func userPatternSignal(rec AccessRecord) float64 {
	if rec.Count <= 0 {
		return 0
	}
	ratio := float64(rec.Count) / float64(rec.Count+5)
	return clamp01(ratio)
}

func confidenceOf(s model.SignalBreakdown) float64 {
	nonZero := 0
	for _, v := range []float64{s.DirectReference, s.SymbolMatch, s.ImportChain, s.RecentAccess, s.UserPattern} {
		if v > 0 {
			nonZero++
		}
	}
	return float64(nonZero) / 5.0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
