package compaction

import (
	"sort"

	"cce/internal/model"
	"cce/internal/threads"
)

// compactByThreads implements spec §4.10.1: partition into threads,
// merge related threads (keyword Jaccard >= 0.7), rank by
// importance*coherence, and keep whole threads from the top until the
// retention budget is spent, preferring complete threads over partial
// ones when e.cfg.PreferCompleteThreads is set.
func (e *Engine) compactByThreads(t model.Transcript, retention float64) (model.Transcript, int) {
	parts := threads.Partition(t)
	if e.cfg.MergeRelatedThreads {
		parts = mergeRelated(t, parts)
	}

	ranked := make([]model.Thread, len(parts))
	copy(ranked, parts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rankValue(ranked[i]) > rankValue(ranked[j])
	})

	budget := int(float64(len(t.NonSystemIndices())) * retention)
	keep := make(map[int]bool, budget)

	kept := 0
	for _, th := range ranked {
		if kept >= budget {
			break
		}
		if e.cfg.PreferCompleteThreads && kept+len(th.MessageIndices) > budget && kept > 0 {
			continue
		}
		for _, i := range th.MessageIndices {
			keep[i] = true
		}
		kept += len(th.MessageIndices)
	}
	// If preferring complete threads left the budget unmet (every
	// remaining thread was too big to fit whole), top up with the
	// highest-ranked partial thread's leading messages.
	if kept < budget {
		for _, th := range ranked {
			if kept >= budget {
				break
			}
			added := false
			for _, i := range th.MessageIndices {
				if keep[i] {
					continue
				}
				if kept >= budget {
					break
				}
				keep[i] = true
				kept++
				added = true
			}
			if added {
				continue
			}
		}
	}

	for _, i := range t.SystemIndices() {
		keep[i] = true
	}

	return filterTranscript(t, keep), len(parts)
}

func rankValue(th model.Thread) float64 {
	return th.Importance * th.Coherence
}

// mergeRelated folds any later thread whose keyword Jaccard overlap with
// an earlier one is >= the spec's 0.7 merge threshold into that earlier
// thread. The two threads need not be adjacent.
func mergeRelated(t model.Transcript, parts []model.Thread) []model.Thread {
	merged := make([]model.Thread, 0, len(parts))
	consumed := make(map[int]bool)

	for i, a := range parts {
		if consumed[i] {
			continue
		}
		combined := a
		for j := i + 1; j < len(parts); j++ {
			if consumed[j] {
				continue
			}
			if jaccardOverlap(a.Keywords, parts[j].Keywords) >= 0.7 {
				combined.MessageIndices = append(combined.MessageIndices, parts[j].MessageIndices...)
				if parts[j].EndIndex > combined.EndIndex {
					combined.EndIndex = parts[j].EndIndex
				}
				combined.Importance = (combined.Importance + parts[j].Importance) / 2
				combined.Coherence = (combined.Coherence + parts[j].Coherence) / 2
				consumed[j] = true
			}
		}
		sort.Ints(combined.MessageIndices)
		merged = append(merged, combined)
	}
	return merged
}

func jaccardOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, k := range a {
		setA[k] = true
	}
	setB := make(map[string]bool, len(b))
	for _, k := range b {
		setB[k] = true
	}
	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func filterTranscript(t model.Transcript, keep map[int]bool) model.Transcript {
	out := make([]model.Message, 0, len(keep))
	for i, m := range t.Messages {
		if keep[i] {
			out = append(out, m)
		}
	}
	return model.Transcript{Messages: out}
}
