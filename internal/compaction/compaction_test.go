package compaction

import (
	"strings"
	"testing"

	"cce/internal/config"
	"cce/internal/model"
)

func buildTranscript(n int) model.Transcript {
	msgs := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		role := model.RoleUser
		content := "this is a plain filler message about nothing in particular"
		if i%2 == 1 {
			role = model.RoleAssistant
			content = "sure, here's the answer"
		}
		if i == n/2 {
			content = "I'm getting an error in this function ```go\nfunc X(){}\n```"
		}
		msgs = append(msgs, model.Message{Role: role, Content: content})
	}
	return model.Transcript{Messages: msgs}
}

func TestCompactReducesMessageCountAtAggressive(t *testing.T) {
	e := New(config.DefaultCompactionConfig())
	t1 := buildTranscript(40)
	result, err := e.Compact(t1, Options{Level: config.LevelAggressive})
	if err != nil {
		t.Fatal(err)
	}
	if result.Compacted.Len() >= t1.Len() {
		t.Fatalf("expected aggressive compaction to shrink transcript, got %d from %d", result.Compacted.Len(), t1.Len())
	}
}

func TestCompactPreservesCodeBlocks(t *testing.T) {
	cfg := config.DefaultCompactionConfig()
	cfg.ThreadMode = false
	e := New(cfg)
	t1 := buildTranscript(40)

	result, err := e.Compact(t1, Options{Level: config.LevelAggressive})
	if err != nil {
		t.Fatal(err)
	}
	foundCode := false
	for _, m := range result.Compacted.Messages {
		if strings.Contains(m.Content, "```") {
			foundCode = true
		}
	}
	if !foundCode {
		t.Error("expected a code-block message to survive aggressive score-based compaction")
	}
}

func TestCompactRollbackRestoresOriginal(t *testing.T) {
	e := New(config.DefaultCompactionConfig())
	t1 := buildTranscript(20)

	result, err := e.Compact(t1, Options{Level: config.LevelModerate})
	if err != nil {
		t.Fatal(err)
	}
	if result.RollbackToken == "" {
		t.Fatal("expected a rollback token when rollback is enabled")
	}
	restored, ok := e.Rollback(result.RollbackToken)
	if !ok {
		t.Fatal("expected rollback token to resolve")
	}
	if restored.Len() != t1.Len() {
		t.Errorf("expected rollback to restore original length %d, got %d", t1.Len(), restored.Len())
	}
}

func TestEvaluateUtilityMonotonic(t *testing.T) {
	e := New(config.DefaultCompactionConfig())
	t1 := buildTranscript(20)

	lightly := model.Transcript{Messages: t1.Messages[:18]}
	heavily := model.Transcript{Messages: t1.Messages[:4]}

	lightMetrics := e.EvaluateUtility(t1, lightly)
	heavyMetrics := e.EvaluateUtility(t1, heavily)

	if lightMetrics.InformationPreservation < heavyMetrics.InformationPreservation {
		t.Errorf("expected lighter compaction to preserve more information: light=%v heavy=%v",
			lightMetrics.InformationPreservation, heavyMetrics.InformationPreservation)
	}
}

func TestCompactEmptyTranscriptReturnsEmptyWithZeroMetrics(t *testing.T) {
	e := New(config.DefaultCompactionConfig())
	result, err := e.Compact(model.Transcript{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Compacted.Len() != 0 {
		t.Fatalf("expected empty transcript to stay empty, got %d messages", result.Compacted.Len())
	}
	zero := model.QualityMetrics{}
	if result.Metrics != zero {
		t.Errorf("expected all-zero metrics for an empty transcript, got %+v", result.Metrics)
	}
}

func TestCompactThreeMessagesOneSystemUnchanged(t *testing.T) {
	e := New(config.DefaultCompactionConfig())
	t1 := model.Transcript{Messages: []model.Message{
		{Role: model.RoleSystem, Content: "you are a helpful assistant"},
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi there"},
	}}

	result, err := e.Compact(t1, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Compacted.Len() != t1.Len() {
		t.Fatalf("expected all 3 messages unchanged, got %d", result.Compacted.Len())
	}
	if result.Metrics.CompressionRatio != 0 {
		t.Errorf("expected compression_ratio 0 for an unchanged transcript, got %v", result.Metrics.CompressionRatio)
	}
}

func TestCompactAggressiveTwentyMessagesKeepsCodeBlockWithinBand(t *testing.T) {
	cfg := config.DefaultCompactionConfig()
	cfg.ThreadMode = false
	e := New(cfg)
	t1 := buildTranscript(20)

	result, err := e.Compact(t1, Options{Level: config.LevelAggressive})
	if err != nil {
		t.Fatal(err)
	}
	if result.Compacted.Len() < 5 || result.Compacted.Len() > 8 {
		t.Errorf("expected compacted size in [5,8], got %d", result.Compacted.Len())
	}
	foundCode := false
	for _, m := range result.Compacted.Messages {
		if strings.Contains(m.Content, "```") {
			foundCode = true
		}
	}
	if !foundCode {
		t.Error("expected the code-block message to be present")
	}
}

func TestLevelByLengthCutoffs(t *testing.T) {
	cases := []struct {
		n        int
		expected config.Level
	}{
		{25, config.LevelLight},
		{30, config.LevelLight},
		{70, config.LevelModerate},
		{100, config.LevelModerate},
		{101, config.LevelAggressive},
	}
	for _, c := range cases {
		if got := levelByLength(c.n); got != c.expected {
			t.Errorf("levelByLength(%d) = %s, want %s", c.n, got, c.expected)
		}
	}
}

func TestCompactWithThreadModeReportsThreadsFormed(t *testing.T) {
	cfg := config.DefaultCompactionConfig()
	cfg.ThreadMode = true
	e := New(cfg)
	t1 := buildTranscript(30)

	result, err := e.Compact(t1, Options{Level: config.LevelModerate})
	if err != nil {
		t.Fatal(err)
	}
	if result.ThreadsFormed == 0 {
		t.Error("expected thread-mode compaction to report threads formed")
	}
}
