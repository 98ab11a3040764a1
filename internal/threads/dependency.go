package threads

import (
	"strings"

	"cce/internal/model"
)

// referencePhrases are explicit back-reference markers that indicate a
// thread depends on an earlier one.
var referencePhrases = []string{
	"as mentioned", "like before", "going back to", "as we discussed",
	"earlier you said", "referring to", "following up on",
}

// DependsOn reports whether thread b depends on the earlier thread a:
// either b's messages contain an explicit reference phrase, or the two
// threads' keyword sets overlap enough to indicate shared subject
// matter (Jaccard over keywords >= 0.25).
func DependsOn(msgs []model.Message, a, b model.Thread) bool {
	if b.StartIndex <= a.StartIndex {
		return false
	}
	for _, i := range b.MessageIndices {
		lower := strings.ToLower(msgs[i].Content)
		if containsAny(lower, referencePhrases) {
			return true
		}
	}
	return keywordJaccard(a.Keywords, b.Keywords) >= 0.25
}

func keywordJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, k := range a {
		setA[k] = true
	}
	setB := make(map[string]bool, len(b))
	for _, k := range b {
		setB[k] = true
	}
	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
