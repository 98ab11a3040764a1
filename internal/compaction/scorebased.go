package compaction

import (
	"sort"
	"strings"

	"cce/internal/config"
	"cce/internal/model"
	"cce/internal/scoring"
)

// compactByScore implements spec §4.10.2: score every non-system
// message, apply content-type weight multipliers and preservation-rule
// overrides, then keep the top-scoring messages until the retention
// budget is spent. If target_compression is set (by opts, falling back
// to cfg) and allow_dynamic_adjustment is true, the score threshold is
// then walked toward that target until the achieved ratio converges or
// a small step limit is hit, recording each attempt as an Adjustment.
func (e *Engine) compactByScore(t model.Transcript, retention float64, opts Options) (model.Transcript, []Adjustment) {
	scorer := scoring.New(config.DefaultScoringConfig())
	indices := t.NonSystemIndices()

	entries := make([]scoredMessage, 0, len(indices))
	for _, i := range indices {
		rel := 0.0
		if opts.RelevanceScores != nil {
			rel = opts.RelevanceScores[keyFor(i)]
		}
		b := scorer.Score(t.Messages, i, rel)
		entries = append(entries, scoredMessage{index: i, score: e.applyContentWeights(t.Messages[i], b.Total)})
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].score > entries[b].score })

	budget := int(float64(len(indices)) * retention)
	if budget < 0 {
		budget = 0
	}

	keep := make(map[int]bool, budget)
	for _, i := range indices {
		if e.isPreserved(t.Messages[i]) {
			keep[i] = true
		}
	}
	for _, e := range entries {
		if len(keep) >= budget {
			break
		}
		keep[e.index] = true
	}
	for _, i := range t.SystemIndices() {
		keep[i] = true
	}

	var adjustments []Adjustment
	targetCompression := opts.TargetCompression
	if targetCompression <= 0 {
		targetCompression = e.cfg.TargetCompression
	}
	if e.cfg.AllowDynamicAdjustment && targetCompression > 0 {
		targetRetention := 1 - targetCompression
		keep, adjustments = e.adjustToTarget(t, indices, entries, keep, targetRetention, budget)
	}

	return filterTranscript(t, keep), adjustments
}

// keyFor is the placeholder relevance lookup key; callers that have a
// per-message relevance map key it by stable message identity (here,
// "msg-" followed by its transcript index, e.g. "msg-3") rather than
// content, since content is not guaranteed unique.
func keyFor(i int) string {
	return strings.Join([]string{"msg", itoa(i)}, "-")
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}

// applyContentWeights multiplies score by the configured weight for
// whichever content-type category the message matches (code blocks,
// error resolution, technical discussion), using the highest matching
// multiplier when more than one applies.
func (e *Engine) applyContentWeights(m model.Message, score float64) float64 {
	best := 1.0
	lower := strings.ToLower(m.Content)

	if strings.Contains(m.Content, "```") {
		if w, ok := e.cfg.ContentTypeWeights[string(config.RuleCodeBlocks)]; ok && w > best {
			best = w
		}
	}
	if containsAny(lower, []string{"error", "exception", "fixed", "resolved"}) {
		if w, ok := e.cfg.ContentTypeWeights[string(config.RuleErrorResolution)]; ok && w > best {
			best = w
		}
	}
	if containsAny(lower, []string{"function", "api", "architecture", "implementation"}) {
		if w, ok := e.cfg.ContentTypeWeights[string(config.RuleTechnicalDiscussion)]; ok && w > best {
			best = w
		}
	}
	return score * best
}

// isPreserved reports whether m matches one of the enabled preservation
// rules, which override score-based eviction.
func (e *Engine) isPreserved(m model.Message) bool {
	lower := strings.ToLower(m.Content)
	for _, rule := range e.cfg.PreservationRules {
		switch rule {
		case config.RuleCodeBlocks:
			if strings.Contains(m.Content, "```") {
				return true
			}
		case config.RuleErrorResolution:
			if containsAny(lower, []string{"error", "exception"}) && containsAny(lower, []string{"fixed", "resolved"}) {
				return true
			}
		case config.RuleTechnicalDiscussion:
			if containsAny(lower, []string{"architecture", "design decision", "tradeoff"}) {
				return true
			}
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

// scoredMessage pairs a transcript index with its compaction score.
type scoredMessage struct {
	index int
	score float64
}

// adjustToTarget walks the score threshold in small steps when the
// ratio achieved by the initial cut misses the target retention by more
// than 0.1, recording each step. It stops after a handful of attempts
// to avoid oscillating indefinitely.
func (e *Engine) adjustToTarget(t model.Transcript, indices []int, entries []scoredMessage, keep map[int]bool, targetRetention float64, budget int) (map[int]bool, []Adjustment) {
	const maxSteps = 5
	var adjustments []Adjustment

	achieved := func(k map[int]bool) float64 {
		if len(indices) == 0 {
			return 1.0
		}
		n := 0
		for _, i := range indices {
			if k[i] {
				n++
			}
		}
		return float64(n) / float64(len(indices))
	}

	currentBudget := budget
	for step := 1; step <= maxSteps; step++ {
		ratio := achieved(keep)
		if abs(ratio-targetRetention) <= 0.1 {
			break
		}
		before := float64(currentBudget) / float64(maxInt(len(indices), 1))
		if ratio < targetRetention {
			currentBudget = int(float64(currentBudget) * 1.2)
		} else {
			currentBudget = int(float64(currentBudget) * 0.8)
		}
		if currentBudget > len(indices) {
			currentBudget = len(indices)
		}
		keep = rebuildKeepSet(t, entries, currentBudget)
		for _, i := range indices {
			if e.isPreserved(t.Messages[i]) {
				keep[i] = true
			}
		}
		after := float64(currentBudget) / float64(maxInt(len(indices), 1))
		adjustments = append(adjustments, Adjustment{
			Step:            step,
			ThresholdBefore: before,
			ThresholdAfter:  after,
			AchievedRatio:   achieved(keep),
		})
	}
	return keep, adjustments
}

func rebuildKeepSet(t model.Transcript, entries []scoredMessage, budget int) map[int]bool {
	keep := make(map[int]bool, budget)
	for _, i := range t.SystemIndices() {
		keep[i] = true
	}
	for n, e := range entries {
		if n >= budget {
			break
		}
		keep[e.index] = true
	}
	return keep
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
