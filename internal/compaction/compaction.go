// Package compaction implements the Compaction Strategy (spec §4.10):
// selecting a retained subset of a transcript's messages that meets a
// target size while preserving the most important content, with
// rollback support and quality metrics.
package compaction

import (
	"math"
	"time"

	"cce/internal/config"
	"cce/internal/logging"
	"cce/internal/model"
	"cce/internal/sampler"
)

// Options controls one compact() call; zero values mean "let the engine
// decide" per the level-selection priority chain in spec §4.10.
type Options struct {
	Level             config.Level // explicit override, highest priority
	MaxTokens         int          // auto_select_level via ratio, second priority
	TargetCompression float64      // third priority, [0,1]
	RelevanceScores   map[string]float64
}

// Adjustment records one dynamic-adjustment step taken during
// score-based compaction when the achieved ratio missed the target by
// more than 0.1 (spec §4.10.2).
type Adjustment struct {
	Step            int
	ThresholdBefore float64
	ThresholdAfter  float64
	AchievedRatio   float64
}

// Result is everything compact() returns: the retained transcript, the
// level actually used, a rollback token (when enabled), quality
// metrics, and any dynamic adjustments applied.
type Result struct {
	Compacted       model.Transcript
	Level           config.Level
	RollbackToken   string
	Metrics         model.QualityMetrics
	Adjustments     []Adjustment
	ThreadsFormed   int
}

// Engine orchestrates compaction over a transcript.
type Engine struct {
	cfg      config.CompactionConfig
	rollback *RollbackRegistry
}

// New creates an Engine bound to cfg.
func New(cfg config.CompactionConfig) *Engine {
	return &Engine{cfg: cfg, rollback: NewRollbackRegistry()}
}

// Compact selects a retained message subset of t per opts and cfg,
// returning the result described above.
func (e *Engine) Compact(t model.Transcript, opts Options) (Result, error) {
	start := time.Now()
	timer := logging.StartTimer(logging.CategoryCompaction, "Compact")
	defer timer.Stop()

	if t.Len() <= 3 {
		result := Result{
			Compacted: t.Clone(),
			Metrics:   computeQualityMetrics(t, t.Clone(), time.Since(start)),
		}
		if e.cfg.EnableRollback {
			result.RollbackToken = e.rollback.Register(t.Clone().Messages, e.cfg.RollbackTTL)
		}
		return result, nil
	}

	level := e.selectLevel(t, opts)
	retention := level.RetentionRate()

	var compacted model.Transcript
	var adjustments []Adjustment
	var threadCount int

	if e.cfg.ThreadMode {
		compacted, threadCount = e.compactByThreads(t, retention)
	} else {
		compacted, adjustments = e.compactByScore(t, retention, opts)
	}

	metrics := computeQualityMetrics(t, compacted, time.Since(start))

	result := Result{
		Compacted:     compacted,
		Level:         level,
		Metrics:       metrics,
		Adjustments:   adjustments,
		ThreadsFormed: threadCount,
	}

	if e.cfg.EnableRollback {
		result.RollbackToken = e.rollback.Register(t.Clone().Messages, e.cfg.RollbackTTL)
	}

	logging.Get(logging.CategoryCompaction).Info(
		"compacted %d -> %d messages (level=%s, ratio=%.3f)",
		t.Len(), compacted.Len(), level, metrics.CompressionRatio)

	return result, nil
}

// selectLevel implements the priority chain: explicit level, then
// auto-selection from max_tokens against the transcript's estimated
// size, then target_compression, then a length-based default.
func (e *Engine) selectLevel(t model.Transcript, opts Options) config.Level {
	if opts.Level != "" {
		return opts.Level
	}
	if opts.MaxTokens > 0 {
		total := estimateTranscriptTokens(t)
		if total > 0 {
			ratio := float64(opts.MaxTokens) / float64(total)
			return levelForRatio(ratio)
		}
	}
	if opts.TargetCompression > 0 {
		return levelForRatio(1 - opts.TargetCompression)
	}
	if e.cfg.DefaultLevel != "" {
		return e.cfg.DefaultLevel
	}
	return levelByLength(t.Len())
}

func levelForRatio(ratio float64) config.Level {
	switch {
	case ratio >= 0.70:
		return config.LevelLight
	case ratio >= 0.35:
		return config.LevelModerate
	default:
		return config.LevelAggressive
	}
}

func levelByLength(n int) config.Level {
	switch {
	case n > 100:
		return config.LevelAggressive
	case n > 30:
		return config.LevelModerate
	default:
		return config.LevelLight
	}
}

func estimateTranscriptTokens(t model.Transcript) int {
	total := 0
	for _, m := range t.Messages {
		total += sampler.EstimateTokens(m.Content)
	}
	return total
}

// Rollback restores the transcript snapshot associated with token, if
// it exists and has not expired.
func (e *Engine) Rollback(token string) (model.Transcript, bool) {
	messages, ok := e.rollback.Rollback(token)
	if !ok {
		return model.Transcript{}, false
	}
	return model.Transcript{Messages: messages}, true
}

// EvaluateUtility scores how much information compacted retains from
// original, per spec §4.10's utility evaluation: a blend of
// compression, keyword preservation, and user/assistant turn continuity.
func (e *Engine) EvaluateUtility(original, compacted model.Transcript) model.QualityMetrics {
	return computeQualityMetrics(original, compacted, 0)
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

func sqrtClamped(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
