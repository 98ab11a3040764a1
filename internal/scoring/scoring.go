// Package scoring implements the message-level Scoring System (spec
// §4.7) and the Semantic Similarity & Topics analysis (spec §4.8) used
// to drive compaction decisions.
package scoring

import (
	"strings"

	"cce/internal/config"
	"cce/internal/model"
)

// Breakdown exposes the four weighted scoring dimensions plus their
// combined Total, each normalized to [0,1].
type Breakdown struct {
	Recency     float64
	Relevance   float64
	Interaction float64
	Complexity  float64
	Total       float64
}

// Engine scores messages within a transcript.
type Engine struct {
	cfg config.ScoringConfig
}

// New creates an Engine bound to cfg.
func New(cfg config.ScoringConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Score computes the weighted composite score for the message at index i
// within msgs, given its precomputed relevance score (e.g. from the
// Relevance Engine, or 0 when none is available).
func (e *Engine) Score(msgs []model.Message, i int, relevanceScore float64) Breakdown {
	b := Breakdown{
		Recency:     recencyScore(msgs, i),
		Relevance:   clamp01(relevanceScore),
		Interaction: interactionScore(msgs, i),
		Complexity:  complexityScore(msgs[i]),
	}
	b.Total = clamp01(
		e.cfg.RecencyWeight*b.Recency +
			e.cfg.RelevanceWeight*b.Relevance +
			e.cfg.InteractionWeight*b.Interaction +
			e.cfg.ComplexityWeight*b.Complexity,
	)
	return b
}

// recencyScore uses elapsed wall-clock time, scaled over the span of the
// transcript's timestamped messages, when message i carries a timestamp;
// otherwise (or when that span is zero) it falls back to a position-based
// estimate in [0.3, 0.7] (spec §4.7), since position alone is a weak
// recency proxy.
func recencyScore(msgs []model.Message, i int) float64 {
	if msgs[i].HasTimestamp() {
		oldest, newest := msgs[i].Timestamp, msgs[i].Timestamp
		for _, m := range msgs {
			if !m.HasTimestamp() {
				continue
			}
			if m.Timestamp.Before(*oldest) {
				oldest = m.Timestamp
			}
			if m.Timestamp.After(*newest) {
				newest = m.Timestamp
			}
		}
		span := newest.Sub(*oldest).Seconds()
		if span > 0 {
			age := newest.Sub(*msgs[i].Timestamp).Seconds()
			return clamp01(1 - age/span)
		}
	}
	if len(msgs) <= 1 {
		return 0.7
	}
	frac := float64(i) / float64(len(msgs)-1)
	return 0.3 + 0.4*frac
}

// interactionScore rewards messages that are part of a tight
// question/answer exchange: a user message immediately followed by an
// assistant reply, or vice versa, scores higher than an isolated one.
func interactionScore(msgs []model.Message, i int) float64 {
	score := 0.3
	if i+1 < len(msgs) && repliesTo(msgs[i], msgs[i+1]) {
		score += 0.4
	}
	if i > 0 && repliesTo(msgs[i-1], msgs[i]) {
		score += 0.3
	}
	return clamp01(score)
}

func repliesTo(a, b model.Message) bool {
	return (a.Role == model.RoleUser && b.Role == model.RoleAssistant) ||
		(a.Role == model.RoleAssistant && b.Role == model.RoleUser)
}

// complexityScore rewards technical density: code fences, long content,
// and technical vocabulary all raise the score.
func complexityScore(m model.Message) float64 {
	content := m.Content
	score := 0.0

	if strings.Contains(content, "```") {
		score += 0.4
	}
	wordCount := len(strings.Fields(content))
	switch {
	case wordCount > 150:
		score += 0.3
	case wordCount > 50:
		score += 0.15
	}
	technicalTerms := 0
	lower := strings.ToLower(content)
	for _, term := range technicalVocabulary {
		if strings.Contains(lower, term) {
			technicalTerms++
		}
	}
	if technicalTerms > 0 {
		score += clamp01(float64(technicalTerms) / 10.0 * 0.3)
	}
	return clamp01(score)
}

var technicalVocabulary = []string{
	"function", "error", "exception", "struct", "interface", "class",
	"api", "bug", "fix", "test", "compile", "build", "deploy", "config",
	"database", "query", "type", "method", "variable", "import",
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
