package config

import (
	"fmt"
	"time"

	"cce/internal/cerrors"
)

// CacheConfig governs the Cache Tier (spec §4.4).
type CacheConfig struct {
	MaxBytes             int64         `yaml:"max_bytes"`
	MaxEntries            int          `yaml:"max_entries"`
	DefaultTTL            time.Duration `yaml:"default_ttl"`
	RelevanceScoreTTL     time.Duration `yaml:"relevance_score_ttl"`
	SymbolReferencesSize  int           `yaml:"symbol_references_size"`
	FileIndexCacheSize    int           `yaml:"file_index_cache_size"`
	PersistentDir         string        `yaml:"persistent_dir"`
}

// DefaultCacheConfig returns defaults, including the spec's 30-minute
// relevance-score TTL.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxBytes:             64 << 20, // 64 MiB
		MaxEntries:           10000,
		DefaultTTL:           1 * time.Hour,
		RelevanceScoreTTL:    30 * time.Minute,
		SymbolReferencesSize: 2000,
		FileIndexCacheSize:   5000,
		PersistentDir:        ".cce/cache",
	}
}

func (c CacheConfig) Validate() error {
	if c.MaxBytes <= 0 {
		return cerrors.New(cerrors.InputInvalid, "CacheConfig.Validate", fmt.Errorf("max_bytes must be > 0"))
	}
	if c.MaxEntries <= 0 {
		return cerrors.New(cerrors.InputInvalid, "CacheConfig.Validate", fmt.Errorf("max_entries must be > 0"))
	}
	return nil
}
