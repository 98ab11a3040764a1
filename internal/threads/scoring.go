package threads

import (
	"sort"
	"strings"

	"cce/internal/model"
)

// Score computes a thread's importance per spec §4.9's weighted formula:
// 0.05 per message (capped at 0.3) + 0.15 per question (capped at 0.3)
// + 0.25 if any message contains a code fence + 0.15 if the thread shows
// a problem-resolution pattern (an error/question followed later by a
// resolution), capped at 1.0 overall.
func Score(msgs []model.Message, indices []int) float64 {
	messageComponent := clamp(0.05*float64(len(indices)), 0, 0.3)

	questions := 0
	hasCode := false
	for _, i := range indices {
		if strings.Contains(msgs[i].Content, "?") {
			questions++
		}
		if strings.Contains(msgs[i].Content, "```") {
			hasCode = true
		}
	}
	questionComponent := clamp(0.15*float64(questions), 0, 0.3)

	codeComponent := 0.0
	if hasCode {
		codeComponent = 0.25
	}

	resolutionComponent := 0.0
	if hasProblemResolution(msgs, indices) {
		resolutionComponent = 0.15
	}

	return clamp(messageComponent+questionComponent+codeComponent+resolutionComponent, 0, 1.0)
}

var problemTerms = []string{"error", "exception", "bug", "fails", "broken", "issue"}
var resolutionTerms = []string{"fixed", "resolved", "works now", "that worked", "solved"}

// hasProblemResolution reports whether an earlier message in the thread
// names a problem and a later one names its resolution.
func hasProblemResolution(msgs []model.Message, indices []int) bool {
	sawProblem := false
	for _, i := range indices {
		lower := strings.ToLower(msgs[i].Content)
		if !sawProblem && containsAny(lower, problemTerms) {
			sawProblem = true
			continue
		}
		if sawProblem && containsAny(lower, resolutionTerms) {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// topKeywords returns the n most frequent non-stopword tokens in text.
func topKeywords(text string, n int) []string {
	freq := make(map[string]int)
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	for _, f := range fields {
		if len(f) <= 2 || stopwordSet[f] {
			continue
		}
		freq[f]++
	}

	type kv struct {
		word  string
		count int
	}
	var list []kv
	for w, c := range freq {
		list = append(list, kv{w, c})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].word < list[j].word
	})

	out := make([]string, 0, n)
	for i := 0; i < len(list) && i < n; i++ {
		out = append(out, list[i].word)
	}
	return out
}

var stopwordSet = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "it": true, "to": true,
	"and": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"this": true, "that": true, "was": true, "are": true, "be": true, "as": true,
	"i": true, "you": true, "we": true, "can": true, "do": true, "does": true,
}
