package persistence

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSpillAndLoadRollback(t *testing.T) {
	dir := t.TempDir()
	db, err := openDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	now := time.Now().Truncate(time.Second)
	if err := db.SpillRollback("tok-1", `[{"role":"user","content":"hi"}]`, now, time.Hour); err != nil {
		t.Fatal(err)
	}

	messages, createdAt, ttl, ok, err := db.LoadRollback("tok-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected rollback entry to be found")
	}
	if messages == "" {
		t.Error("expected non-empty messages json")
	}
	if !createdAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, createdAt)
	}
	if ttl != time.Hour {
		t.Errorf("expected ttl of 1h, got %v", ttl)
	}
}

func TestPurgeExpiredRollbacks(t *testing.T) {
	dir := t.TempDir()
	db, err := openDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	old := time.Now().Add(-2 * time.Hour)
	if err := db.SpillRollback("expired", "[]", old, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := db.SpillRollback("fresh", "[]", time.Now(), time.Hour); err != nil {
		t.Fatal(err)
	}

	n, err := db.PurgeExpiredRollbacks(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected to purge exactly 1 expired entry, got %d", n)
	}

	_, _, _, ok, _ := db.LoadRollback("fresh")
	if !ok {
		t.Error("expected fresh entry to survive purge")
	}
}

func TestCacheSpillRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := openDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.SpillCacheEntry("key-1", `{"v":1}`, nil); err != nil {
		t.Fatal(err)
	}
	value, expiresAt, ok, err := db.LoadCacheEntry("key-1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache entry to be found")
	}
	if value != `{"v":1}` {
		t.Errorf("expected stored value, got %s", value)
	}
	if expiresAt != nil {
		t.Error("expected nil expiry for entry stored without one")
	}
}
