package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

var allProjectStatuses = []entity.ProjectStatus{
	entity.ProjectDraft, entity.ProjectActive, entity.ProjectOnHold,
	entity.ProjectCompleted, entity.ProjectArchived,
}

func TestCanTransitionProject(t *testing.T) {
	allowed := map[[2]entity.ProjectStatus]bool{
		{entity.ProjectDraft, entity.ProjectActive}:       true,
		{entity.ProjectDraft, entity.ProjectArchived}:     true,
		{entity.ProjectActive, entity.ProjectOnHold}:      true,
		{entity.ProjectActive, entity.ProjectCompleted}:   true,
		{entity.ProjectOnHold, entity.ProjectActive}:      true,
		{entity.ProjectCompleted, entity.ProjectArchived}: true,
	}

	// Totality: every pair not in the table is rejected.
	for _, from := range allProjectStatuses {
		for _, to := range allProjectStatuses {
			got := CanTransitionProject(from, to)
			want := allowed[[2]entity.ProjectStatus{from, to}]
			assert.Equal(t, want, got, "%s -> %s", from, to)

			err := ValidateProjectTransition(from, to)
			if want {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, fault.ErrInvalidTransition), "%s -> %s", from, to)
			}
		}
	}
}

func TestValidateProjectTransition_ErrorNamesStates(t *testing.T) {
	err := ValidateProjectTransition(entity.ProjectArchived, entity.ProjectActive)
	assert.ErrorContains(t, err, "ARCHIVED")
	assert.ErrorContains(t, err, "ACTIVE")
}

func TestValidateProjectTransition_UnknownStatus(t *testing.T) {
	err := ValidateProjectTransition(entity.ProjectDraft, entity.ProjectStatus("BOGUS"))
	assert.True(t, errors.Is(err, fault.ErrValidation))
}
