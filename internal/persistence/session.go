// Package persistence implements session serialization, tolerant
// recovery, smart resume, and a durable sqlite-backed store for rollback
// and cache spill (spec §4.11).
package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"cce/internal/cerrors"
	"cce/internal/config"
	"cce/internal/logging"
	"cce/internal/model"
)

const sessionVersion = "1.0.0"

// sessionFile is the on-disk JSON shape (spec §6): field names match the
// documented on-disk format exactly.
type sessionFile struct {
	Version         string                 `json:"version"`
	Timestamp       time.Time              `json:"timestamp"`
	Index           string                 `json:"index"`
	CurrentFiles    []string               `json:"current_files"`
	UserPreferences model.UserPreferences  `json:"user_preferences"`
	SessionMetadata sessionMetadataJSON    `json:"session_metadata"`
}

type sessionMetadataJSON struct {
	StartTime     time.Time              `json:"start_time"`
	LastActivity  time.Time              `json:"last_activity"`
	TotalQueries  int64                  `json:"total_queries"`
	CostAnalytics *model.UsageAnalytics  `json:"cost_analytics,omitempty"`
}

// Store owns the session file, its backup sibling, and the sqlite-backed
// durable store for rollback/cache spill.
type Store struct {
	cfg config.PersistenceConfig
	db  *DB
}

// Open creates the session directory if needed and opens the sqlite
// store at cfg.SQLitePath.
func Open(cfg config.PersistenceConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.SessionDir, 0o755); err != nil {
		return nil, cerrors.New(cerrors.IOError, "persistence.Open", err)
	}
	db, err := openDB(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, db: db}, nil
}

// Close releases the sqlite handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) sessionPath() string {
	return filepath.Join(s.cfg.SessionDir, s.cfg.SessionFile)
}

func (s *Store) backupPath() string {
	return filepath.Join(s.cfg.SessionDir, backupName(s.cfg.SessionFile))
}

func backupName(sessionFileName string) string {
	ext := filepath.Ext(sessionFileName)
	base := sessionFileName[:len(sessionFileName)-len(ext)]
	return base + ".backup.json"
}

// Save writes state to the session file, backing up the previous
// known-good snapshot first (spec §4.11: "a parallel backup file is
// written before risky operations").
func (s *Store) Save(state model.SessionState) error {
	timer := logging.StartTimer(logging.CategoryPersistence, "Save")
	defer timer.Stop()

	if _, err := os.Stat(s.sessionPath()); err == nil {
		if err := copyFile(s.sessionPath(), s.backupPath()); err != nil {
			logging.Get(logging.CategoryPersistence).Warn("failed to write backup before save: %v", err)
		}
	}

	sf := toSessionFile(state)
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return cerrors.New(cerrors.IOError, "persistence.Save", err)
	}
	if err := atomicWrite(s.sessionPath(), data); err != nil {
		return cerrors.New(cerrors.IOError, "persistence.Save", err)
	}
	logging.Get(logging.CategoryPersistence).Info("saved session to %s (%d files)", s.sessionPath(), len(state.CurrentFiles))
	return nil
}

// Load performs a tolerant read of the session file: missing fields
// default, an unreadable or unparsable primary falls back to the backup,
// and any recoverable problem is reported as a Warning rather than
// surfaced as an error. When no usable session file exists, the returned
// state and error are both nil.
func (s *Store) Load() (*model.SessionState, []model.Warning, error) {
	timer := logging.StartTimer(logging.CategoryPersistence, "Load")
	defer timer.Stop()

	data, warnings, err := s.readPrimaryOrBackup()
	if err != nil {
		return nil, warnings, nil // caller treats as "no session"
	}

	var sf sessionFile
	if jsonErr := json.Unmarshal(data, &sf); jsonErr != nil {
		warnings = append(warnings, model.Warning{Field: "*", Message: "session file corrupt: " + jsonErr.Error()})
		backup, berr := os.ReadFile(s.backupPath())
		sf = sessionFile{}
		if berr != nil || json.Unmarshal(backup, &sf) != nil {
			return nil, warnings, nil
		}
		warnings = append(warnings, model.Warning{Field: "session_file", Message: "recovered from backup"})
	}

	state, w := fromSessionFile(sf)
	warnings = append(warnings, w...)
	return &state, warnings, nil
}

func (s *Store) readPrimaryOrBackup() ([]byte, []model.Warning, error) {
	var warnings []model.Warning
	data, err := os.ReadFile(s.sessionPath())
	if err == nil {
		return data, warnings, nil
	}
	if !os.IsNotExist(err) {
		warnings = append(warnings, model.Warning{Field: "session_file", Message: "primary session file unreadable: " + err.Error()})
	}
	data, berr := os.ReadFile(s.backupPath())
	if berr == nil {
		warnings = append(warnings, model.Warning{Field: "session_file", Message: "recovered from backup"})
		return data, warnings, nil
	}
	return nil, warnings, cerrors.New(cerrors.NotFound, "persistence.Load", err)
}

// CreateBackup snapshots the current session file to its backup sibling.
func (s *Store) CreateBackup() error {
	if _, err := os.Stat(s.sessionPath()); err != nil {
		return cerrors.New(cerrors.NotFound, "persistence.CreateBackup", err)
	}
	return copyFile(s.sessionPath(), s.backupPath())
}

// RestoreFromBackup overwrites the primary session file with the backup
// and returns the restored state.
func (s *Store) RestoreFromBackup() (*model.SessionState, []model.Warning, error) {
	data, err := os.ReadFile(s.backupPath())
	if err != nil {
		return nil, nil, cerrors.New(cerrors.NotFound, "persistence.RestoreFromBackup", err)
	}
	if err := atomicWrite(s.sessionPath(), data); err != nil {
		return nil, nil, cerrors.New(cerrors.IOError, "persistence.RestoreFromBackup", err)
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, []model.Warning{{Field: "*", Message: "backup file corrupt: " + err.Error()}}, nil
	}
	state, warnings := fromSessionFile(sf)
	return &state, warnings, nil
}

func toSessionFile(state model.SessionState) sessionFile {
	version := state.Version
	if version == "" {
		version = sessionVersion
	}
	return sessionFile{
		Version:         version,
		Timestamp:       state.Timestamp,
		Index:           state.Index,
		CurrentFiles:    state.CurrentFiles,
		UserPreferences: state.UserPreferences,
		SessionMetadata: sessionMetadataJSON{
			StartTime:     state.Metadata.StartTime,
			LastActivity:  state.Metadata.LastActivity,
			TotalQueries:  state.Metadata.TotalQueries,
			CostAnalytics: state.Metadata.CostAnalytics,
		},
	}
}

func fromSessionFile(sf sessionFile) (model.SessionState, []model.Warning) {
	var warnings []model.Warning

	if sf.Version == "" {
		warnings = append(warnings, model.Warning{Field: "version", Message: "missing, defaulted to " + sessionVersion})
		sf.Version = sessionVersion
	}
	if sf.CurrentFiles == nil {
		warnings = append(warnings, model.Warning{Field: "current_files", Message: "missing, defaulted to empty list"})
		sf.CurrentFiles = []string{}
	}
	if sf.UserPreferences == nil {
		sf.UserPreferences = model.UserPreferences{}
	}
	if sf.SessionMetadata.StartTime.IsZero() {
		sf.SessionMetadata.StartTime = time.Now()
	}

	return model.SessionState{
		Version:         sf.Version,
		Timestamp:       sf.Timestamp,
		Index:           sf.Index,
		CurrentFiles:    sf.CurrentFiles,
		UserPreferences: sf.UserPreferences,
		Metadata: model.SessionMetadata{
			StartTime:     sf.SessionMetadata.StartTime,
			LastActivity:  sf.SessionMetadata.LastActivity,
			TotalQueries:  sf.SessionMetadata.TotalQueries,
			CostAnalytics: sf.SessionMetadata.CostAnalytics,
		},
	}, warnings
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return atomicWrite(dst, data)
}
