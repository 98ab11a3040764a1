// Package model defines the Conversation Context Engine's shared data
// model (spec §3): messages and transcripts, the workspace semantic
// index's records, threads, rollback entries, and quality metrics.
// These are plain data; behavior lives in the packages that consume them.
package model

import "time"

// Role identifies the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a Transcript. Identity is positional:
// a Message has no independent key beyond its index in the transcript.
type Message struct {
	Role      Role
	Content   string
	Timestamp *time.Time // optional
}

// HasTimestamp reports whether the message carries a recorded time.
func (m Message) HasTimestamp() bool { return m.Timestamp != nil }

// Transcript is an append-only ordered sequence of Messages. System
// messages may appear at any position and are never reordered or removed
// by compaction.
type Transcript struct {
	Messages []Message
}

// Len returns the number of messages.
func (t Transcript) Len() int { return len(t.Messages) }

// Clone returns a deep-enough copy safe to mutate independently of t.
func (t Transcript) Clone() Transcript {
	out := make([]Message, len(t.Messages))
	copy(out, t.Messages)
	return Transcript{Messages: out}
}

// NonSystemIndices returns the indices of messages that are not role=system,
// in original order. Threads partition exactly this subsequence.
func (t Transcript) NonSystemIndices() []int {
	idx := make([]int, 0, len(t.Messages))
	for i, m := range t.Messages {
		if m.Role != RoleSystem {
			idx = append(idx, i)
		}
	}
	return idx
}

// SystemIndices returns the indices of system-role messages, in order.
func (t Transcript) SystemIndices() []int {
	idx := make([]int, 0)
	for i, m := range t.Messages {
		if m.Role == RoleSystem {
			idx = append(idx, i)
		}
	}
	return idx
}
