// Package sampler implements the Content Sampler (spec §4.6): it
// allocates a token budget across ranked candidate files proportional
// to relevance score, then selects a contiguous window within each file
// that maximizes matched-symbol coverage, truncating on line boundaries
// when the sub-budget runs out.
package sampler

import (
	"sort"
	"strings"
	"unicode/utf8"

	"cce/internal/model"
)

// charsPerToken calibrates the token estimate, matching the teacher's
// own ~4-characters-per-token heuristic.
const charsPerToken = 4.0

// EstimateTokens approximates the token count of s.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return int(float64(utf8.RuneCountInString(s)) / charsPerToken)
}

// minFloor is the minimum token sub-budget granted to any sampled file,
// so low-scoring-but-included files still get a usable window.
const minFloor = 40

// Sampler selects bounded content windows from ranked candidates.
type Sampler struct{}

// New creates a Sampler.
func New() *Sampler {
	return &Sampler{}
}

// Candidate is one file available for sampling, along with its source
// text and the symbol names the query matched within it (used to find
// the highest-value window).
type Candidate struct {
	File           model.FileIndex
	Content        string
	MatchedSymbols []string
	Score          float64
}

// Sample allocates totalTokenBudget across candidates proportional to
// Score (with a floor per file) and returns one ContentSample per
// candidate that received a non-empty window.
func (s *Sampler) Sample(candidates []Candidate, totalTokenBudget int) []model.ContentSample {
	if totalTokenBudget <= 0 || len(candidates) == 0 {
		return nil
	}

	budgets := allocateBudgets(candidates, totalTokenBudget)

	samples := make([]model.ContentSample, 0, len(candidates))
	for i, c := range candidates {
		budget := budgets[i]
		if budget <= 0 {
			continue
		}
		sample := windowFor(c, budget)
		if sample.Text != "" {
			samples = append(samples, sample)
		}
	}
	return samples
}

// allocateBudgets distributes total proportional to each candidate's
// Score, applying minFloor and then re-normalizing so the total does not
// exceed the requested budget.
func allocateBudgets(candidates []Candidate, total int) []int {
	scoreSum := 0.0
	for _, c := range candidates {
		scoreSum += c.Score
	}

	budgets := make([]int, len(candidates))
	if scoreSum <= 0 {
		even := total / len(candidates)
		for i := range budgets {
			budgets[i] = maxInt(even, minFloor)
		}
		return capToTotal(budgets, total)
	}

	for i, c := range candidates {
		share := int(float64(total) * (c.Score / scoreSum))
		budgets[i] = maxInt(share, minFloor)
	}
	return capToTotal(budgets, total)
}

// capToTotal scales budgets down proportionally if their sum exceeds
// total, preserving relative allocation.
func capToTotal(budgets []int, total int) []int {
	sum := 0
	for _, b := range budgets {
		sum += b
	}
	if sum <= total || sum == 0 {
		return budgets
	}
	scaled := make([]int, len(budgets))
	for i, b := range budgets {
		scaled[i] = maxInt(int(float64(b)*float64(total)/float64(sum)), 1)
	}
	return scaled
}

// windowFor selects the contiguous line range within c.Content that
// covers the most matched symbols while fitting budget tokens,
// truncating on a line boundary if the whole file doesn't fit.
func windowFor(c Candidate, budget int) model.ContentSample {
	lines := strings.Split(c.Content, "\n")
	if len(lines) == 0 {
		return model.ContentSample{}
	}

	start, end := bestWindow(lines, c.File.Symbols, c.MatchedSymbols)
	text, usedEnd := truncateToBudget(lines, start, end, budget)

	reason := "relevance window"
	if len(c.MatchedSymbols) > 0 {
		reason = "matched symbol window"
	}

	return model.ContentSample{
		File:      c.File.Path,
		Text:      text,
		StartLine: start + 1,
		EndLine:   usedEnd + 1,
		Tokens:    EstimateTokens(text),
		Reason:    reason,
	}
}

// bestWindow finds the smallest contiguous line range containing every
// matched symbol's declaration line, expanded by a small context margin.
// Falls back to the whole file when there's nothing to anchor on.
func bestWindow(lines []string, symbols []model.Symbol, matched []string) (int, int) {
	if len(matched) == 0 {
		return 0, len(lines) - 1
	}

	wanted := make(map[string]bool, len(matched))
	for _, m := range matched {
		wanted[m] = true
	}

	var matchLines []int
	for _, sym := range symbols {
		if wanted[sym.Name] && sym.Line > 0 {
			matchLines = append(matchLines, sym.Line-1)
		}
	}
	if len(matchLines) == 0 {
		return 0, len(lines) - 1
	}
	sort.Ints(matchLines)

	const margin = 10
	start := matchLines[0] - margin
	end := matchLines[len(matchLines)-1] + margin
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	return start, end
}

// truncateToBudget returns the text for lines[start:end+1], trimming
// from the end on a line boundary until it fits within budget tokens.
func truncateToBudget(lines []string, start, end, budget int) (string, int) {
	if start > end || start >= len(lines) {
		return "", start
	}
	for end >= start {
		text := strings.Join(lines[start:end+1], "\n")
		if EstimateTokens(text) <= budget {
			return text, end
		}
		end--
	}
	// Even a single line exceeds budget; return it anyway rather than
	// silently dropping a matched region.
	return lines[start], start
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
