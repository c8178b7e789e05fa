// Package workflow holds the lifecycle transition tables for projects,
// expenses, and invoices. Each machine is plain mapping data consulted
// through pure functions; entity status is the caller's to persist.
package workflow

import (
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

// projectTransitions lists the allowed target states per current state.
// ARCHIVED is terminal.
var projectTransitions = map[entity.ProjectStatus][]entity.ProjectStatus{
	entity.ProjectDraft:     {entity.ProjectActive, entity.ProjectArchived},
	entity.ProjectActive:    {entity.ProjectOnHold, entity.ProjectCompleted},
	entity.ProjectOnHold:    {entity.ProjectActive},
	entity.ProjectCompleted: {entity.ProjectArchived},
	entity.ProjectArchived:  {},
}

// CanTransitionProject reports whether a project may move between the
// two states.
func CanTransitionProject(from, to entity.ProjectStatus) bool {
	for _, allowed := range projectTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateProjectTransition returns an invalid-transition fault naming
// both states when the move is not allowed.
func ValidateProjectTransition(from, to entity.ProjectStatus) error {
	if !to.IsValid() {
		return fault.Validation("status", "unknown project status "+to.String())
	}
	if !CanTransitionProject(from, to) {
		return fault.InvalidTransition("project", from.String(), to.String())
	}
	return nil
}
