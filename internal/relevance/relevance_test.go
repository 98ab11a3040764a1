package relevance

import (
	"testing"
	"time"

	"cce/internal/config"
	"cce/internal/model"
)

func TestRankDirectReferenceWins(t *testing.T) {
	e := New(config.DefaultRelevanceConfig())
	in := Input{
		Query: "fix the bug in widget.go",
		Candidates: []model.FileIndex{
			{Path: "pkg/widget.go"},
			{Path: "pkg/unrelated.go"},
		},
	}
	scores := e.Rank(in)
	if scores[0].Path != "pkg/widget.go" {
		t.Fatalf("expected widget.go to rank first, got %+v", scores)
	}
	if scores[0].Signals.DirectReference != 1.0 {
		t.Errorf("expected direct reference signal 1.0, got %v", scores[0].Signals.DirectReference)
	}
}

func TestRankTieBreaksByPath(t *testing.T) {
	e := New(config.DefaultRelevanceConfig())
	in := Input{
		Candidates: []model.FileIndex{
			{Path: "z.go"},
			{Path: "a.go"},
		},
	}
	scores := e.Rank(in)
	if scores[0].Path != "a.go" || scores[1].Path != "z.go" {
		t.Fatalf("expected lexicographic tie-break, got %+v", scores)
	}
}

func TestImportChainSignalDirect(t *testing.T) {
	e := New(config.DefaultRelevanceConfig())
	in := Input{
		CurrentFile: "main.go",
		ImportsOf:   map[string][]string{"main.go": {"lib.go"}},
		Candidates:  []model.FileIndex{{Path: "lib.go"}},
	}
	scores := e.Rank(in)
	if scores[0].Signals.ImportChain != 1.0 {
		t.Errorf("expected direct import chain signal of 1.0, got %v", scores[0].Signals.ImportChain)
	}
}

func TestRecentAccessDecays(t *testing.T) {
	e := New(config.DefaultRelevanceConfig())
	now := time.Now()
	in := Input{
		Now: now,
		AccessHistory: map[string]AccessRecord{
			"recent.go": {LastAccess: now.Add(-1 * time.Minute), Count: 1},
			"old.go":    {LastAccess: now.Add(-100 * time.Hour), Count: 1},
		},
		Candidates: []model.FileIndex{{Path: "recent.go"}, {Path: "old.go"}},
	}
	scores := e.Rank(in)
	var recentScore, oldScore float64
	for _, s := range scores {
		if s.Path == "recent.go" {
			recentScore = s.Signals.RecentAccess
		}
		if s.Path == "old.go" {
			oldScore = s.Signals.RecentAccess
		}
	}
	if recentScore <= oldScore {
		t.Errorf("expected recent access signal to exceed old access, got recent=%v old=%v", recentScore, oldScore)
	}
}
