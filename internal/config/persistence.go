package config

import (
	"fmt"
	"time"

	"cce/internal/cerrors"
)

// PersistenceConfig governs session file persistence (spec §4.11).
type PersistenceConfig struct {
	SessionDir     string        `yaml:"session_dir"`
	SessionFile    string        `yaml:"session_file"`
	AutoSaveInterval time.Duration `yaml:"auto_save_interval"`
	PreferSaved    bool          `yaml:"prefer_saved"` // smart-resume file-list ordering
	SQLitePath     string        `yaml:"sqlite_path"`
}

// DefaultPersistenceConfig returns defaults.
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{
		SessionDir:       ".cce",
		SessionFile:      "session.json",
		AutoSaveInterval: 2 * time.Minute,
		PreferSaved:      true,
		SQLitePath:       ".cce/cce.db",
	}
}

func (c PersistenceConfig) Validate() error {
	if c.SessionDir == "" {
		return cerrors.New(cerrors.InputInvalid, "PersistenceConfig.Validate", fmt.Errorf("session_dir must be set"))
	}
	if c.SessionFile == "" {
		return cerrors.New(cerrors.InputInvalid, "PersistenceConfig.Validate", fmt.Errorf("session_file must be set"))
	}
	if c.AutoSaveInterval <= 0 {
		return cerrors.New(cerrors.InputInvalid, "PersistenceConfig.Validate", fmt.Errorf("auto_save_interval must be > 0"))
	}
	return nil
}
