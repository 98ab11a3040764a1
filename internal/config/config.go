// Package config defines the Conversation Context Engine's explicit,
// validated configuration records (spec §6, §9 redesign note: replaces
// the source system's loose option dictionaries with enumerated fields
// validated at construction time).
package config

import (
	"fmt"
	"math"
	"os"

	"cce/internal/cerrors"

	"gopkg.in/yaml.v3"
)

// EngineConfig aggregates every subsystem's configuration.
type EngineConfig struct {
	Indexer    IndexerConfig    `yaml:"indexer"`
	Cache      CacheConfig      `yaml:"cache"`
	Relevance  RelevanceConfig  `yaml:"relevance"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Compaction CompactionConfig `yaml:"compaction"`
	Workers    WorkerConfig     `yaml:"workers"`
	Persistence PersistenceConfig `yaml:"persistence"`
	DebugMode  bool             `yaml:"debug_mode"`
}

// DefaultEngineConfig returns the engine's default configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Indexer:    DefaultIndexerConfig(),
		Cache:      DefaultCacheConfig(),
		Relevance:  DefaultRelevanceConfig(),
		Scoring:    DefaultScoringConfig(),
		Compaction: DefaultCompactionConfig(),
		Workers:    DefaultWorkerConfig(),
		Persistence: DefaultPersistenceConfig(),
	}
}

// LoadEngineConfig reads YAML configuration from path, applying defaults
// for any omitted section, then validates.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return cfg, cerrors.New(cerrors.IOError, "LoadEngineConfig", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, cerrors.New(cerrors.Corrupt, "LoadEngineConfig", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every subsystem's configuration.
func (c EngineConfig) Validate() error {
	for _, v := range []interface{ Validate() error }{
		c.Indexer, c.Cache, c.Relevance, c.Scoring, c.Compaction, c.Workers, c.Persistence,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// approxOne reports whether weights sum to 1 within tolerance, per §4.7's
// "weights must sum to 1 ± 1e-3 or the operation fails" rule.
func approxOne(weights ...float64) bool {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	return math.Abs(sum-1.0) <= 1e-3
}

func validateWeights(op string, weights ...float64) error {
	if !approxOne(weights...) {
		return cerrors.New(cerrors.InputInvalid, op, fmt.Errorf("weights must sum to 1 (±1e-3), got %.4f", sum(weights)))
	}
	return nil
}

func sum(ws []float64) float64 {
	s := 0.0
	for _, w := range ws {
		s += w
	}
	return s
}
