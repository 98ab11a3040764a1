package scoring

import (
	"testing"

	"cce/internal/model"
)

func TestSimilarityHigherForSharedTechnicalTerms(t *testing.T) {
	a := model.Message{Content: "the function threw an exception during compile"}
	b := model.Message{Content: "compile exception in this function again"}
	c := model.Message{Content: "what's the weather like today"}

	simAB := Similarity(a, b)
	simAC := Similarity(a, c)
	if simAB <= simAC {
		t.Errorf("expected related messages to score higher: AB=%v AC=%v", simAB, simAC)
	}
}

func TestIdentifyTopicsCoversAllIndices(t *testing.T) {
	msgs := []model.Message{
		{Content: "how do I configure the database connection"},
		{Content: "database connection pooling configuration"},
		{Content: "what's a good recipe for pasta"},
		{Content: "pasta recipe with garlic and oil"},
	}
	indices := []int{0, 1, 2, 3}
	topics := IdentifyTopics(msgs, indices, 0.2)

	covered := make(map[int]bool)
	for _, tp := range topics {
		for _, i := range tp.MessageIndices {
			covered[i] = true
		}
	}
	for _, i := range indices {
		if !covered[i] {
			t.Errorf("expected index %d to be covered by some topic", i)
		}
	}
}

func TestIsBreakpointDetectsTopicSwitch(t *testing.T) {
	msgs := []model.Message{
		{Content: "let's debug this compile error in the function"},
		{Content: "let's switch to a completely different question about pasta"},
	}
	if !IsBreakpoint(msgs, 0) {
		t.Error("expected explicit topic-switch phrase to be a breakpoint")
	}
}
