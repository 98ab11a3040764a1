package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cce/internal/compaction"
	"cce/internal/config"
)

func setWorkspace(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	ws := t.TempDir()
	workspace = ws
	configPath = ""
	t.Cleanup(func() { workspace = ""; configPath = "" })
	return ws
}

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunIndexReportsProgress(t *testing.T) {
	ws := setWorkspace(t)
	writeSourceFile(t, ws, "main.go", "package main\n\nfunc Run() {}\n")

	cmd := &cobra.Command{}
	if err := runIndex(cmd, []string{ws}); err != nil {
		t.Fatalf("runIndex failed: %v", err)
	}
}

func TestRunRankPrintsCandidates(t *testing.T) {
	ws := setWorkspace(t)
	writeSourceFile(t, ws, "widget.go", "package main\n\nfunc Widget() {}\n")

	rankTopN = 5
	rankCurrentFile = ""
	cmd := &cobra.Command{}
	if err := runRank(cmd, []string{ws, "Widget"}); err != nil {
		t.Fatalf("runRank failed: %v", err)
	}
}

func TestRunCompactAndRollbackRoundTrip(t *testing.T) {
	setWorkspace(t)

	path := writeSourceFile(t, t.TempDir(), "transcript.json",
		`{"messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"hi there"}]}`)

	e, err := loadEngine()
	if err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	transcript, err := readTranscript(path)
	if err != nil {
		t.Fatal(err)
	}
	result, err := e.Compact(transcript, compaction.Options{Level: config.LevelLight})
	if err != nil {
		t.Fatal(err)
	}
	if result.RollbackToken == "" {
		t.Fatal("expected a rollback token")
	}

	restored, ok := e.Rollback(result.RollbackToken)
	if !ok {
		t.Fatal("expected rollback to find the compacted transcript")
	}
	if restored.Len() != transcript.Len() {
		t.Error("expected restored transcript to match original length")
	}
}

func TestRunServeStatsPrintsOnce(t *testing.T) {
	setWorkspace(t)
	serveStatsInterval = 0

	cmd := &cobra.Command{}
	if err := runServeStats(cmd, nil); err != nil {
		t.Fatalf("runServeStats failed: %v", err)
	}
}
