package config

// RelevanceConfig weights the Relevance Engine's five signals (spec §4.5).
type RelevanceConfig struct {
	DirectReferenceWeight float64 `yaml:"direct_reference_weight"`
	SymbolMatchWeight     float64 `yaml:"symbol_match_weight"`
	ImportChainWeight     float64 `yaml:"import_chain_weight"`
	RecentAccessWeight    float64 `yaml:"recent_access_weight"`
	UserPatternWeight     float64 `yaml:"user_pattern_weight"`
	RecencyDecayRate      float64 `yaml:"recency_decay_rate"`
}

// DefaultRelevanceConfig returns defaults weighted 0.30/0.25/0.20/0.15/0.10
// from direct reference down to user pattern.
func DefaultRelevanceConfig() RelevanceConfig {
	return RelevanceConfig{
		DirectReferenceWeight: 0.30,
		SymbolMatchWeight:     0.25,
		ImportChainWeight:     0.20,
		RecentAccessWeight:    0.15,
		UserPatternWeight:     0.10,
		RecencyDecayRate:      0.5,
	}
}

func (c RelevanceConfig) Validate() error {
	return validateWeights("RelevanceConfig.Validate",
		c.DirectReferenceWeight, c.SymbolMatchWeight, c.ImportChainWeight,
		c.RecentAccessWeight, c.UserPatternWeight)
}

// ScoringConfig weights the message-level Scoring System's four
// dimensions (spec §4.7). Weights must sum to 1 ± 1e-3.
type ScoringConfig struct {
	RecencyWeight     float64 `yaml:"recency_weight"`
	RelevanceWeight   float64 `yaml:"relevance_weight"`
	InteractionWeight float64 `yaml:"interaction_weight"`
	ComplexityWeight  float64 `yaml:"complexity_weight"`
}

// DefaultScoringConfig returns the spec-mandated default weights
// 0.25/0.35/0.20/0.20.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RecencyWeight:     0.25,
		RelevanceWeight:   0.35,
		InteractionWeight: 0.20,
		ComplexityWeight:  0.20,
	}
}

func (c ScoringConfig) Validate() error {
	return validateWeights("ScoringConfig.Validate",
		c.RecencyWeight, c.RelevanceWeight, c.InteractionWeight, c.ComplexityWeight)
}
