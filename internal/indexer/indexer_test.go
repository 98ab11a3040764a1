package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cce/internal/config"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig() config.IndexerConfig {
	cfg := config.DefaultIndexerConfig()
	cfg.FileExtensions = []string{".go"}
	return cfg
}

func TestScanRootIndexesMatchingFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeTestFile(t, filepath.Join(root, "README.md"), "ignored\n")
	writeTestFile(t, filepath.Join(root, "vendor", "dep.go"), "package vendor\n")
	writeTestFile(t, filepath.Join(root, ".gitignore"), "vendor/\n")

	idx := New(testConfig())
	results, _, prog, err := idx.ScanRoot(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 indexed file, got %d", len(results))
	}
	if results[0].Path != filepath.Join(root, "main.go") {
		t.Errorf("unexpected indexed path %s", results[0].Path)
	}
	if !prog.Done {
		t.Error("expected Progress.Done to be true")
	}
}

func TestScanRootDetectsModificationAndRemoval(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.go")
	writeTestFile(t, path, "package a\n")

	idx := New(testConfig())
	_, events, _, err := idx.ScanRoot(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventAdded {
		t.Fatalf("expected one added event, got %+v", events)
	}

	writeTestFile(t, path, "package a // changed\n")
	_, events, _, err = idx.ScanRoot(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventModified {
		t.Fatalf("expected one modified event, got %+v", events)
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	_, events, _, err = idx.ScanRoot(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventRemoved {
		t.Fatalf("expected one removed event, got %+v", events)
	}
}

func TestScanRootSkipsOversizedFiles(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "big.go"), "package big\n")

	cfg := testConfig()
	cfg.MaxFileSizeBytes = 1
	idx := New(cfg)
	results, _, prog, err := idx.ScanRoot(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 indexed files, got %d", len(results))
	}
	if prog.FilesSkipped == 0 {
		t.Error("expected at least one skipped file")
	}
}
