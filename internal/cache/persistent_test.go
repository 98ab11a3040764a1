package cache

import (
	"testing"
	"time"
)

func TestPersistentSetGet(t *testing.T) {
	dir := t.TempDir()
	p, err := OpenPersistent(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Set("k", map[string]int{"n": 1}, time.Hour); err != nil {
		t.Fatal(err)
	}

	var dest map[string]int
	ok, err := p.Get("k", &dest)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || dest["n"] != 1 {
		t.Fatalf("expected n=1, got %v ok=%v", dest, ok)
	}
}

func TestPersistentSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	p1, err := OpenPersistent(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := p1.Set("k", "value", time.Hour); err != nil {
		t.Fatal(err)
	}

	p2, err := OpenPersistent(dir)
	if err != nil {
		t.Fatal(err)
	}
	var dest string
	ok, err := p2.Get("k", &dest)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || dest != "value" {
		t.Fatalf("expected value to survive reopen, got %q ok=%v", dest, ok)
	}
}

func TestPersistentSweepRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	p, err := OpenPersistent(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Set("k", "v", time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if n := p.Sweep(); n != 1 {
		t.Errorf("expected 1 expired entry swept, got %d", n)
	}
	var dest string
	if ok, _ := p.Get("k", &dest); ok {
		t.Error("expected swept key to be gone")
	}
}
