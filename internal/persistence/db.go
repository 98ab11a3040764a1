package persistence

import (
	"database/sql"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"cce/internal/cerrors"
	"cce/internal/logging"
)

// DB wraps a durable sqlite-backed store used for rollback-token spill
// and cache-index metadata that should survive process restarts,
// mirroring the teacher's single-file database/sql store.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

func openDB(path string) (*DB, error) {
	timer := logging.StartTimer(logging.CategoryPersistence, "openDB")
	defer timer.Stop()

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cerrors.New(cerrors.IOError, "persistence.openDB", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rollback_entries (
		token TEXT PRIMARY KEY,
		messages_json TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		ttl_seconds INTEGER
	);
	CREATE TABLE IF NOT EXISTS cache_spill (
		cache_key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		expires_at DATETIME,
		updated_at DATETIME NOT NULL
	);
	`
	if _, err := d.conn.Exec(schema); err != nil {
		return cerrors.New(cerrors.IOError, "persistence.migrate", err)
	}
	return nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// SpillRollback persists a rollback token's serialized messages so the
// in-memory registry can be rehydrated after a crash. Uses INSERT OR
// REPLACE for idempotent writes under the same token, matching the
// teacher's idempotent-write pattern for compressed state.
func (d *DB) SpillRollback(token, messagesJSON string, createdAt time.Time, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var ttlSeconds *int64
	if ttl > 0 {
		s := int64(ttl.Seconds())
		ttlSeconds = &s
	}
	_, err := d.conn.Exec(
		`INSERT OR REPLACE INTO rollback_entries (token, messages_json, created_at, ttl_seconds) VALUES (?, ?, ?, ?)`,
		token, messagesJSON, createdAt, ttlSeconds,
	)
	if err != nil {
		logging.Get(logging.CategoryPersistence).Warn("failed to spill rollback token %s: %v", token, err)
		return cerrors.New(cerrors.IOError, "persistence.SpillRollback", err)
	}
	return nil
}

// LoadRollback retrieves a spilled rollback entry by token.
func (d *DB) LoadRollback(token string) (messagesJSON string, createdAt time.Time, ttl time.Duration, ok bool, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var ttlSeconds sql.NullInt64
	row := d.conn.QueryRow(
		`SELECT messages_json, created_at, ttl_seconds FROM rollback_entries WHERE token = ?`, token,
	)
	if scanErr := row.Scan(&messagesJSON, &createdAt, &ttlSeconds); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", time.Time{}, 0, false, nil
		}
		return "", time.Time{}, 0, false, cerrors.New(cerrors.IOError, "persistence.LoadRollback", scanErr)
	}
	if ttlSeconds.Valid {
		ttl = time.Duration(ttlSeconds.Int64) * time.Second
	}
	return messagesJSON, createdAt, ttl, true, nil
}

// PurgeExpiredRollbacks deletes rollback_entries rows past their TTL.
func (d *DB) PurgeExpiredRollbacks(now time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, err := d.conn.Exec(
		`DELETE FROM rollback_entries
		 WHERE ttl_seconds IS NOT NULL
		 AND datetime(created_at, '+' || ttl_seconds || ' seconds') < ?`,
		now,
	)
	if err != nil {
		return 0, cerrors.New(cerrors.IOError, "persistence.PurgeExpiredRollbacks", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// SpillCacheEntry persists a cache value under key for cross-restart
// durability of the persistent cache tier's manifest-backed entries.
func (d *DB) SpillCacheEntry(key, valueJSON string, expiresAt *time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.conn.Exec(
		`INSERT OR REPLACE INTO cache_spill (cache_key, value_json, expires_at, updated_at) VALUES (?, ?, ?, ?)`,
		key, valueJSON, expiresAt, time.Now(),
	)
	if err != nil {
		return cerrors.New(cerrors.IOError, "persistence.SpillCacheEntry", err)
	}
	return nil
}

// LoadCacheEntry retrieves a spilled cache value by key.
func (d *DB) LoadCacheEntry(key string) (valueJSON string, expiresAt *time.Time, ok bool, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var exp sql.NullTime
	row := d.conn.QueryRow(`SELECT value_json, expires_at FROM cache_spill WHERE cache_key = ?`, key)
	if scanErr := row.Scan(&valueJSON, &exp); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return "", nil, false, nil
		}
		return "", nil, false, cerrors.New(cerrors.IOError, "persistence.LoadCacheEntry", scanErr)
	}
	if exp.Valid {
		expiresAt = &exp.Time
	}
	return valueJSON, expiresAt, true, nil
}
