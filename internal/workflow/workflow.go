// Package workflow resolves team-scoped workflow states by name, id, and
// the "first active" heuristic used when starting an issue.
package workflow

import (
	"sort"
	"strings"

	"github.com/cogflow/linear-engine/internal/models"
)

const (
	TypeStarted   = "started"
	TypeCompleted = "completed"
	TypeCanceled  = "canceled"
)

// activeNameHints are checked as case-insensitive substrings when no state
// carries an explicit started type.
var activeNameHints = []string{"in progress", "doing", "active", "started"}

// FindByName matches name against each state's name, trimmed and
// case-insensitive. Duplicate names are not disambiguated; the first match
// wins.
func FindByName(states []models.WorkflowState, name string) *models.WorkflowState {
	want := strings.ToLower(strings.TrimSpace(name))
	for i := range states {
		if strings.ToLower(states[i].Name) == want {
			return &states[i]
		}
	}
	return nil
}

// NameByID returns "Unknown" when id is empty or matches no state.
func NameByID(states []models.WorkflowState, id string) string {
	if id == "" {
		return "Unknown"
	}
	for i := range states {
		if states[i].ID == id {
			return states[i].Name
		}
	}
	return "Unknown"
}

// FirstActiveState picks the state an issue moves to when started. States
// are considered in ascending position order: first one typed "started",
// else the first whose name hints at active work, else the first
// non-terminal state. Explicit type tags beat name heuristics.
func FirstActiveState(states []models.WorkflowState) *models.WorkflowState {
	ordered := make([]models.WorkflowState, len(states))
	copy(ordered, states)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	for i := range ordered {
		if ordered[i].Type == TypeStarted {
			return &ordered[i]
		}
	}
	for i := range ordered {
		name := strings.ToLower(ordered[i].Name)
		for _, hint := range activeNameHints {
			if strings.Contains(name, hint) {
				return &ordered[i]
			}
		}
	}
	for i := range ordered {
		if ordered[i].Type != TypeCompleted && ordered[i].Type != TypeCanceled {
			return &ordered[i]
		}
	}
	return nil
}
