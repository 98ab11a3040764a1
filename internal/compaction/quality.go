package compaction

import (
	"time"

	"cce/internal/model"
	"cce/internal/sampler"
)

// computeQualityMetrics derives spec §4.10.4's quality metrics from an
// original/compacted transcript pair.
func computeQualityMetrics(original, compacted model.Transcript, elapsed time.Duration) model.QualityMetrics {
	if original.Len() == 0 {
		return model.QualityMetrics{}
	}

	origTokens := transcriptTokens(original)
	compactedTokens := transcriptTokens(compacted)

	compressionRatio := 0.0
	tokenReduction := 0.0
	if origTokens > 0 {
		compressionRatio = clamp01(1 - float64(compactedTokens)/float64(origTokens))
		tokenReduction = compressionRatio
	}

	messageReduction := 0.0
	if original.Len() > 0 {
		messageReduction = clamp01(1 - float64(compacted.Len())/float64(original.Len()))
	}

	contentPreservation := contentOverlap(original, compacted)
	contextPreservation := contextContinuity(compacted)
	importancePreservation := clamp01((1 - compressionRatio) + 0.2)

	informationPreservation := clamp01(
		0.4*contentPreservation + 0.3*contextPreservation + 0.3*importancePreservation,
	)

	effectiveness := sqrtClamped(minFloat(compressionRatio, 0.8) * informationPreservation)
	if informationPreservation > 0.9 && compressionRatio > 0.4 {
		effectiveness += 0.05
	}
	effectiveness = clamp01(effectiveness)

	return model.QualityMetrics{
		CompressionRatio:        compressionRatio,
		TokenReduction:          tokenReduction,
		MessageReduction:        messageReduction,
		InformationPreservation: informationPreservation,
		ProcessingTime:          elapsed,
		EffectivenessScore:      effectiveness,
		Timestamp:               time.Now(),
	}
}

func transcriptTokens(t model.Transcript) int {
	total := 0
	for _, m := range t.Messages {
		total += sampler.EstimateTokens(m.Content)
	}
	return total
}

// contentOverlap estimates how much of original's distinct keyword
// vocabulary survives in compacted.
func contentOverlap(original, compacted model.Transcript) float64 {
	origWords := uniqueWords(original)
	keptWords := uniqueWords(compacted)
	if len(origWords) == 0 {
		return 1.0
	}
	present := 0
	for w := range origWords {
		if keptWords[w] {
			present++
		}
	}
	return clamp01(float64(present) / float64(len(origWords)))
}

func uniqueWords(t model.Transcript) map[string]bool {
	out := make(map[string]bool)
	for _, m := range t.Messages {
		for _, w := range splitWords(m.Content) {
			out[w] = true
		}
	}
	return out
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			cur = append(cur, r)
			continue
		}
		if len(cur) > 2 {
			words = append(words, string(cur))
		}
		cur = cur[:0]
	}
	if len(cur) > 2 {
		words = append(words, string(cur))
	}
	return words
}

// contextContinuity rewards a compacted transcript that still alternates
// user/assistant turns rather than leaving orphaned one-sided messages.
func contextContinuity(t model.Transcript) float64 {
	if t.Len() < 2 {
		return 1.0
	}
	alternating := 0
	nonSystem := t.NonSystemIndices()
	for i := 1; i < len(nonSystem); i++ {
		if t.Messages[nonSystem[i]].Role != t.Messages[nonSystem[i-1]].Role {
			alternating++
		}
	}
	if len(nonSystem) <= 1 {
		return 1.0
	}
	return clamp01(float64(alternating) / float64(len(nonSystem)-1))
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
