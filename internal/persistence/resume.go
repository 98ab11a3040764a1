package persistence

import (
	"cce/internal/cerrors"
	"cce/internal/model"
)

// Merge combines a saved session state with the current in-memory state
// per spec §4.11's smart-resume rules: saved user preferences win on
// conflict, file lists union (saved first when preferSaved), and
// metadata keeps the earliest start_time and sums total_queries.
func Merge(saved, current model.SessionState, preferSaved bool) model.SessionState {
	prefs := model.UserPreferences{}
	for k, v := range current.UserPreferences {
		prefs[k] = v
	}
	for k, v := range saved.UserPreferences {
		prefs[k] = v // saved wins on conflict
	}

	files := unionFiles(saved.CurrentFiles, current.CurrentFiles, preferSaved)

	start := current.Metadata.StartTime
	if saved.Metadata.StartTime.Before(start) || start.IsZero() {
		start = saved.Metadata.StartTime
	}

	lastActivity := saved.Metadata.LastActivity
	if current.Metadata.LastActivity.After(lastActivity) {
		lastActivity = current.Metadata.LastActivity
	}

	var cost *model.UsageAnalytics
	switch {
	case saved.Metadata.CostAnalytics != nil && current.Metadata.CostAnalytics != nil:
		merged := saved.Metadata.CostAnalytics.Merge(*current.Metadata.CostAnalytics)
		cost = &merged
	case saved.Metadata.CostAnalytics != nil:
		cost = saved.Metadata.CostAnalytics
	default:
		cost = current.Metadata.CostAnalytics
	}

	index := saved.Index
	if index == "" {
		index = current.Index
	}

	return model.SessionState{
		Version:         sessionVersion,
		Timestamp:       current.Timestamp,
		Index:           index,
		CurrentFiles:    files,
		UserPreferences: prefs,
		Metadata: model.SessionMetadata{
			StartTime:     start,
			LastActivity:  lastActivity,
			TotalQueries:  saved.Metadata.TotalQueries + current.Metadata.TotalQueries,
			CostAnalytics: cost,
		},
	}
}

func unionFiles(saved, current []string, preferSaved bool) []string {
	seen := make(map[string]bool, len(saved)+len(current))
	out := make([]string, 0, len(saved)+len(current))
	add := func(paths []string) {
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	if preferSaved {
		add(saved)
		add(current)
	} else {
		add(current)
		add(saved)
	}
	return out
}

// Validate rejects a merged state missing an index, or whose
// current_files is nil. An empty list is valid: fromSessionFile and
// Merge both produce a non-nil slice even when there are no files.
func Validate(state model.SessionState) error {
	if state.Index == "" {
		return cerrors.New(cerrors.InputInvalid, "persistence.Validate", errMissingIndex)
	}
	if state.CurrentFiles == nil {
		return cerrors.New(cerrors.InputInvalid, "persistence.Validate", errCurrentFilesNotArray)
	}
	return nil
}

var (
	errMissingIndex         = simpleErr("merged state is missing a serialized index")
	errCurrentFilesNotArray = simpleErr("merged state's current_files is not an array")
)

type simpleErr string

func (e simpleErr) Error() string { return string(e) }
