// Package threads implements Thread Preservation (spec §4.9): it
// partitions a transcript's non-system messages into contiguous,
// topically coherent threads, scores each thread's importance, and
// detects cross-thread dependencies.
package threads

import (
	"fmt"
	"math"
	"strings"

	"cce/internal/model"
	"cce/internal/scoring"
)

// conversationRestartPhrases signal the user is starting a fresh
// conversation rather than continuing the current thread.
var conversationRestartPhrases = []string{
	"new conversation", "starting over", "forget the above", "let's start fresh",
}

// Partition splits msgs' non-system indices into contiguous Threads. A
// boundary is placed after index i when any of three predicates holds,
// checked in this order: the next message contains a
// conversation-restart phrase, or IsBreakpoint reports a similarity drop
// or an explicit topic-switch phrase. The result always covers
// every non-system index exactly once, in order (the contiguous-
// partition invariant, spec §8).
func Partition(t model.Transcript) []model.Thread {
	indices := t.NonSystemIndices()
	if len(indices) == 0 {
		return nil
	}

	var threads []model.Thread
	start := 0
	for i := 0; i < len(indices); i++ {
		atEnd := i == len(indices)-1
		boundary := atEnd || isBoundary(t.Messages, indices[i])
		if boundary {
			seg := indices[start : i+1]
			threads = append(threads, buildThread(t.Messages, seg, len(threads)))
			start = i + 1
		}
	}
	return threads
}

func isBoundary(msgs []model.Message, i int) bool {
	if i+1 >= len(msgs) {
		return true
	}
	if isConversationRestart(msgs[i+1]) {
		return true
	}
	return scoring.IsBreakpoint(msgs, i)
}

func isConversationRestart(m model.Message) bool {
	lower := strings.ToLower(m.Content)
	for _, phrase := range conversationRestartPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func buildThread(msgs []model.Message, indices []int, ordinal int) model.Thread {
	var sb strings.Builder
	for _, i := range indices {
		sb.WriteString(msgs[i].Content)
		sb.WriteString(" ")
	}
	combined := sb.String()

	th := model.Thread{
		ID:             fmt.Sprintf("thread-%d", ordinal),
		MessageIndices: indices,
		StartIndex:     indices[0],
		EndIndex:       indices[len(indices)-1],
		Keywords:       topKeywords(combined, 8),
	}
	th.Topic = topicLabel(th.Keywords)
	th.Importance = Score(msgs, indices)
	th.Coherence = coherence(msgs, indices)
	return th
}

// coherence measures how evenly a thread's messages balance between
// user and assistant turns, floored at 0.2 so a lopsided thread still
// ranks above zero.
func coherence(msgs []model.Message, indices []int) float64 {
	var userCount, assistantCount int
	for _, i := range indices {
		switch msgs[i].Role {
		case model.RoleUser:
			userCount++
		case model.RoleAssistant:
			assistantCount++
		}
	}
	total := userCount + assistantCount
	if total == 0 {
		return 0.2
	}
	balance := 1 - math.Abs(float64(userCount-assistantCount))/float64(total)
	return math.Max(balance, 0.2)
}

func topicLabel(keywords []string) string {
	if len(keywords) == 0 {
		return "general"
	}
	n := 3
	if len(keywords) < n {
		n = len(keywords)
	}
	return strings.Join(keywords[:n], " ")
}
