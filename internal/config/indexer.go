package config

import (
	"fmt"

	"cce/internal/cerrors"
)

// IndexerConfig governs the Workspace Indexer (spec §4.1).
type IndexerConfig struct {
	Roots             []string `yaml:"roots"`
	MaxLoadedFiles    int      `yaml:"max_loaded_files"`
	MaxDepth          int      `yaml:"max_depth"`
	FileExtensions    []string `yaml:"file_extensions"`
	ExcludePatterns   []string `yaml:"exclude_patterns"`
	MaxFileSizeBytes  int64    `yaml:"max_file_size"`
	ConcurrentPerRoot int      `yaml:"concurrent_per_root"`
	IncludeTests      bool     `yaml:"include_tests"`
	EnableWatch       bool     `yaml:"enable_watch"`
	DebounceMillis    int      `yaml:"debounce_millis"`
	CoalesceMillis    int      `yaml:"coalesce_millis"`
}

// DefaultIndexerConfig returns spec-mandated defaults: 10 concurrent reads
// per root, common source extensions, tests excluded, 100ms debounce and
// 1s coalesce windows for filesystem watching.
func DefaultIndexerConfig() IndexerConfig {
	return IndexerConfig{
		MaxLoadedFiles: 50000,
		MaxDepth:       32,
		FileExtensions: []string{
			".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".rb",
			".rs", ".c", ".h", ".cpp", ".hpp", ".cs",
		},
		ExcludePatterns:   []string{".git", "node_modules", "vendor", "dist", "build", "__pycache__"},
		MaxFileSizeBytes:  1 << 20, // 1 MiB
		ConcurrentPerRoot: 10,
		IncludeTests:      false,
		EnableWatch:       false,
		DebounceMillis:    100,
		CoalesceMillis:    1000,
	}
}

func (c IndexerConfig) Validate() error {
	if c.ConcurrentPerRoot <= 0 {
		return cerrors.New(cerrors.InputInvalid, "IndexerConfig.Validate", fmt.Errorf("concurrent_per_root must be > 0"))
	}
	if c.MaxFileSizeBytes <= 0 {
		return cerrors.New(cerrors.InputInvalid, "IndexerConfig.Validate", fmt.Errorf("max_file_size must be > 0"))
	}
	if c.MaxLoadedFiles <= 0 {
		return cerrors.New(cerrors.InputInvalid, "IndexerConfig.Validate", fmt.Errorf("max_loaded_files must be > 0"))
	}
	return nil
}
