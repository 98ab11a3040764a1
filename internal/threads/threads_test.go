package threads

import (
	"testing"

	"cce/internal/model"
)

func transcript(contents ...string) model.Transcript {
	msgs := make([]model.Message, len(contents))
	for i, c := range contents {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		msgs[i] = model.Message{Role: role, Content: c}
	}
	return model.Transcript{Messages: msgs}
}

func TestPartitionCoversAllNonSystemIndices(t *testing.T) {
	tr := transcript(
		"how do I configure the database connection pool",
		"set max_connections in the config",
		"let's switch to a completely different question about pasta recipes",
		"try garlic and olive oil",
	)
	threadsOut := Partition(tr)

	covered := make(map[int]bool)
	for _, th := range threadsOut {
		for _, i := range th.MessageIndices {
			covered[i] = true
		}
	}
	for _, i := range tr.NonSystemIndices() {
		if !covered[i] {
			t.Errorf("expected index %d to be covered by some thread", i)
		}
	}
}

func TestPartitionIsContiguous(t *testing.T) {
	tr := transcript("a", "b", "c", "d")
	for _, th := range Partition(tr) {
		for i := 1; i < len(th.MessageIndices); i++ {
			if th.MessageIndices[i] != th.MessageIndices[i-1]+1 {
				t.Errorf("expected thread message indices to be contiguous, got %v", th.MessageIndices)
			}
		}
	}
}

func TestScoreRewardsCodeAndResolution(t *testing.T) {
	withCode := []model.Message{
		{Content: "I'm getting an error in this function"},
		{Content: "try this ```go\nfunc X(){}\n```"},
		{Content: "that fixed it, thanks"},
	}
	plain := []model.Message{
		{Content: "hello"},
		{Content: "hi there"},
	}
	scoreWithCode := Score(withCode, []int{0, 1, 2})
	scorePlain := Score(plain, []int{0, 1})
	if scoreWithCode <= scorePlain {
		t.Errorf("expected code+resolution thread to score higher, got %v vs %v", scoreWithCode, scorePlain)
	}
}

func TestDependsOnDetectsReferencePhrase(t *testing.T) {
	msgs := []model.Message{
		{Content: "how do I set up the database"},
		{Content: "use postgres config"},
		{Content: "following up on the database setup, what about pooling"},
	}
	a := model.Thread{StartIndex: 0, EndIndex: 1, MessageIndices: []int{0, 1}, Keywords: []string{"database", "config"}}
	b := model.Thread{StartIndex: 2, EndIndex: 2, MessageIndices: []int{2}, Keywords: []string{"database", "pooling"}}

	if !DependsOn(msgs, a, b) {
		t.Error("expected explicit reference phrase to establish dependency")
	}
}
