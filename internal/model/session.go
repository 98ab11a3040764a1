package model

import "time"

// UsageAnalytics accumulates lightweight cost/usage counters across a
// session's lifetime, carried on SessionMetadata (spec §4 supplement).
type UsageAnalytics struct {
	TokensProcessed      int64
	CompactionInvocations int64
	CacheHits            int64
	CacheMisses          int64
}

// Merge folds other into a, summing counters, and returns the result.
func (a UsageAnalytics) Merge(other UsageAnalytics) UsageAnalytics {
	return UsageAnalytics{
		TokensProcessed:       a.TokensProcessed + other.TokensProcessed,
		CompactionInvocations: a.CompactionInvocations + other.CompactionInvocations,
		CacheHits:             a.CacheHits + other.CacheHits,
		CacheMisses:           a.CacheMisses + other.CacheMisses,
	}
}

// SessionMetadata tracks session-level bookkeeping persisted alongside
// the session file (spec §4.11/§6).
type SessionMetadata struct {
	StartTime      time.Time
	LastActivity   time.Time
	TotalQueries   int64
	CostAnalytics  *UsageAnalytics // optional
}

// UserPreferences is an open bag of session-scoped preference values;
// keys and value shapes are caller-defined, so it is kept as a generic
// map rather than an enumerated struct.
type UserPreferences map[string]interface{}

// SessionState is the full persisted/resumable session value: the
// serialized semantic index, the file set the session was tracking, user
// preferences, and metadata.
type SessionState struct {
	Version         string
	Timestamp       time.Time
	Index           string // serialized Semantic Index
	CurrentFiles    []string
	UserPreferences UserPreferences
	Metadata        SessionMetadata
}

// Warning is a structured, non-fatal problem surfaced by a tolerant load
// instead of a crash or a silently defaulted field.
type Warning struct {
	Field   string
	Message string
}
