package scoring

import (
	"testing"

	"cce/internal/config"
	"cce/internal/model"
)

func TestScoreWeightsSumRespected(t *testing.T) {
	e := New(config.DefaultScoringConfig())
	msgs := []model.Message{
		{Role: model.RoleUser, Content: "how do I fix this ```go\nfunc X(){}\n``` error?"},
		{Role: model.RoleAssistant, Content: "try this fix"},
	}
	b := e.Score(msgs, 0, 0.9)
	if b.Total < 0 || b.Total > 1 {
		t.Fatalf("expected total in [0,1], got %v", b.Total)
	}
	if b.Relevance != 0.9 {
		t.Errorf("expected relevance passthrough, got %v", b.Relevance)
	}
}

func TestRecencyFallbackRange(t *testing.T) {
	msgs := make([]model.Message, 10)
	for i := range msgs {
		msgs[i] = model.Message{Role: model.RoleUser, Content: "hi"}
	}
	for i := range msgs {
		r := recencyScore(msgs, i)
		if r < 0.3 || r > 0.7 {
			t.Errorf("expected position-based recency in [0.3,0.7], got %v at index %d", r, i)
		}
	}
}

func TestInteractionScoreRewardsExchange(t *testing.T) {
	msgs := []model.Message{
		{Role: model.RoleUser, Content: "question"},
		{Role: model.RoleAssistant, Content: "answer"},
	}
	if interactionScore(msgs, 0) <= 0.3 {
		t.Error("expected question followed by answer to score above baseline")
	}
}
