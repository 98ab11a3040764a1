package scoring

import (
	"math"
	"sort"
	"strings"

	"cce/internal/model"
)

// Topic is an identified cluster of related messages.
type Topic struct {
	Keywords       []string
	MessageIndices []int
	Weight         float64
}

// stopwords are excluded from keyword extraction, matching the teacher's
// own sparse-retrieval keyword filter.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "it": true, "to": true,
	"and": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"this": true, "that": true, "was": true, "are": true, "be": true, "as": true,
	"i": true, "you": true, "we": true, "can": true, "do": true, "does": true,
}

// keywords returns the distinct lowercase non-stopword tokens of length
// > 2 in content.
func keywords(content string) []string {
	fields := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len(f) <= 2 || stopwords[f] || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Similarity computes a weighted-Jaccard similarity between two
// messages' keyword sets: plain Jaccard overlap boosted for shared
// technical vocabulary and for a high raw overlap ratio (spec §4.8).
func Similarity(a, b model.Message) float64 {
	ka, kb := keywords(a.Content), keywords(b.Content)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	setA := toSet(ka)
	setB := toSet(kb)

	intersection := 0
	technicalOverlap := 0
	for k := range setA {
		if setB[k] {
			intersection++
			if isTechnicalTerm(k) {
				technicalOverlap++
			}
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	jaccard := float64(intersection) / float64(union)

	boost := 1.0
	if technicalOverlap > 0 {
		boost += 0.2 * math.Min(float64(technicalOverlap)/3.0, 1.0)
	}
	overlapRatio := float64(intersection) / math.Min(float64(len(setA)), float64(len(setB)))
	if overlapRatio > 0.5 {
		boost += 0.15
	}

	return clamp01(jaccard * boost)
}

func isTechnicalTerm(term string) bool {
	for _, t := range technicalVocabulary {
		if term == t {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}

// IdentifyTopics clusters msgs' non-system indices into up to
// max(5, ceil(0.4*len(indices))) seeded topics by greedily grouping
// messages whose similarity to a cluster's seed is at least threshold
// (spec §4.8), plus one catch-all topic for any messages left over once
// that many seeded topics exist.
func IdentifyTopics(msgs []model.Message, indices []int, threshold float64) []Topic {
	if len(indices) == 0 {
		return nil
	}
	topK := maxInt(5, ceilDiv(4*len(indices), 10))

	assigned := make(map[int]bool, len(indices))
	var topics []Topic

	for _, seed := range indices {
		if assigned[seed] || len(topics) >= topK {
			continue
		}
		topic := Topic{Keywords: keywords(msgs[seed].Content), MessageIndices: []int{seed}}
		assigned[seed] = true

		for _, cand := range indices {
			if assigned[cand] {
				continue
			}
			if Similarity(msgs[seed], msgs[cand]) >= threshold {
				topic.MessageIndices = append(topic.MessageIndices, cand)
				assigned[cand] = true
			}
		}
		topic.Weight = float64(len(topic.MessageIndices)) / float64(len(indices))
		topics = append(topics, topic)
	}

	// Any leftover unassigned messages once topK clusters are full form
	// one final catch-all topic so every index is accounted for.
	var leftover []int
	for _, i := range indices {
		if !assigned[i] {
			leftover = append(leftover, i)
		}
	}
	if len(leftover) > 0 {
		topics = append(topics, Topic{MessageIndices: leftover, Weight: float64(len(leftover)) / float64(len(indices))})
	}

	sort.Slice(topics, func(i, j int) bool { return topics[i].Weight > topics[j].Weight })
	return topics
}

// newTopicIndicators are phrases that signal a conversational pivot,
// independent of keyword overlap.
var newTopicIndicators = []string{
	"let's switch to", "moving on to", "different question", "new topic",
	"unrelated", "on another note", "separately",
}

// IsBreakpoint reports whether the boundary between messages at i and
// i+1 is a thread/topic breakpoint: either their similarity falls below
// 0.3, or the message at i+1 contains an explicit topic-change phrase.
func IsBreakpoint(msgs []model.Message, i int) bool {
	if i+1 >= len(msgs) {
		return true
	}
	if Similarity(msgs[i], msgs[i+1]) < 0.3 {
		return true
	}
	lower := strings.ToLower(msgs[i+1].Content)
	for _, phrase := range newTopicIndicators {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
