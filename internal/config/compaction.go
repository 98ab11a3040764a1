package config

import (
	"fmt"
	"time"

	"cce/internal/cerrors"
)

// Level is a compaction aggressiveness tier (spec §4.10).
type Level string

const (
	LevelLight      Level = "light"
	LevelModerate   Level = "moderate"
	LevelAggressive Level = "aggressive"
)

// RetentionRate returns the spec-mandated retention fraction for a level.
func (l Level) RetentionRate() float64 {
	switch l {
	case LevelLight:
		return 0.80
	case LevelModerate:
		return 0.50
	case LevelAggressive:
		return 0.25
	default:
		return 0.50
	}
}

// PreservationRule names a built-in message-preservation predicate
// (spec §4.10.2).
type PreservationRule string

const (
	RuleErrorResolution      PreservationRule = "error-resolution"
	RuleCodeBlocks           PreservationRule = "code-blocks"
	RuleTechnicalDiscussion  PreservationRule = "technical-discussion"
)

// CompactionConfig governs the Compaction Strategy (spec §4.10).
type CompactionConfig struct {
	DefaultLevel            Level                       `yaml:"default_level"`
	TargetCompression       float64                     `yaml:"target_compression"`
	MaxTokens               int                         `yaml:"max_tokens"`
	EnableRollback          bool                        `yaml:"enable_rollback"`
	RollbackTTL             time.Duration               `yaml:"rollback_ttl"`
	PreservationRules       []PreservationRule          `yaml:"preservation_rules"`
	ContentTypeWeights      map[string]float64          `yaml:"content_type_weights"`
	AllowDynamicAdjustment  bool                        `yaml:"allow_dynamic_adjustment"`
	ThreadMode              bool                        `yaml:"thread_mode"`
	PreferCompleteThreads   bool                        `yaml:"prefer_complete_threads"`
	MergeRelatedThreads     bool                        `yaml:"merge_related_threads"`
}

// DefaultCompactionConfig returns sensible defaults.
func DefaultCompactionConfig() CompactionConfig {
	return CompactionConfig{
		DefaultLevel:   "",
		EnableRollback: true,
		RollbackTTL:    24 * time.Hour,
		PreservationRules: []PreservationRule{
			RuleErrorResolution, RuleCodeBlocks, RuleTechnicalDiscussion,
		},
		ContentTypeWeights: map[string]float64{
			"code-blocks":           1.5,
			"error-resolution":      1.4,
			"technical-discussion":  1.2,
		},
		AllowDynamicAdjustment: true,
		PreferCompleteThreads:  true,
		MergeRelatedThreads:    true,
	}
}

func (c CompactionConfig) Validate() error {
	if c.DefaultLevel != "" {
		switch c.DefaultLevel {
		case LevelLight, LevelModerate, LevelAggressive:
		default:
			return cerrors.New(cerrors.InputInvalid, "CompactionConfig.Validate", fmt.Errorf("unknown level %q", c.DefaultLevel))
		}
	}
	if c.TargetCompression < 0 || c.TargetCompression > 1 {
		return cerrors.New(cerrors.InputInvalid, "CompactionConfig.Validate", fmt.Errorf("target_compression must be in [0,1]"))
	}
	return nil
}
