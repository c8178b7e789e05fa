package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

var allExpenseStatuses = []entity.ExpenseStatus{
	entity.ExpenseDraft, entity.ExpenseSubmitted, entity.ExpenseApproved,
	entity.ExpenseRejected, entity.ExpenseReimbursed,
}

func TestCanTransitionExpense_Totality(t *testing.T) {
	allowed := map[[2]entity.ExpenseStatus]bool{
		{entity.ExpenseDraft, entity.ExpenseSubmitted}:     true,
		{entity.ExpenseSubmitted, entity.ExpenseApproved}:  true,
		{entity.ExpenseSubmitted, entity.ExpenseRejected}:  true,
		{entity.ExpenseApproved, entity.ExpenseReimbursed}: true,
	}

	for _, from := range allExpenseStatuses {
		for _, to := range allExpenseStatuses {
			want := allowed[[2]entity.ExpenseStatus{from, to}]
			assert.Equal(t, want, CanTransitionExpense(from, to), "%s -> %s", from, to)
		}
	}
}

func TestValidateApproval(t *testing.T) {
	expense := &entity.Expense{
		ID:            7,
		Status:        entity.ExpenseSubmitted,
		SubmittedByID: 42,
	}

	t.Run("finance role approving another user's expense", func(t *testing.T) {
		actor := entity.Actor{UserID: 9, Role: entity.RoleFinance}
		assert.NoError(t, ValidateApproval(expense, actor))
	})

	t.Run("member role denied", func(t *testing.T) {
		actor := entity.Actor{UserID: 9, Role: entity.RoleMember}
		err := ValidateApproval(expense, actor)
		assert.True(t, errors.Is(err, fault.ErrPermissionDenied))
	})

	t.Run("self approval forbidden regardless of role", func(t *testing.T) {
		for _, role := range []entity.Role{entity.RoleFinance, entity.RoleManager, entity.RoleAdmin} {
			actor := entity.Actor{UserID: 42, Role: role}
			err := ValidateApproval(expense, actor)
			assert.True(t, errors.Is(err, fault.ErrSelfApprovalForbidden), "role %s", role)
		}
	})

	t.Run("wrong source state", func(t *testing.T) {
		draft := &entity.Expense{Status: entity.ExpenseDraft, SubmittedByID: 42}
		err := ValidateApproval(draft, entity.Actor{UserID: 9, Role: entity.RoleAdmin})
		assert.True(t, errors.Is(err, fault.ErrInvalidTransition))
	})
}

func TestValidateRejection(t *testing.T) {
	expense := &entity.Expense{Status: entity.ExpenseSubmitted, SubmittedByID: 42}
	finance := entity.Actor{UserID: 9, Role: entity.RoleFinance}

	t.Run("valid rejection", func(t *testing.T) {
		assert.NoError(t, ValidateRejection(expense, finance, "missing receipt"))
	})

	t.Run("empty reason", func(t *testing.T) {
		err := ValidateRejection(expense, finance, "   ")
		assert.True(t, errors.Is(err, fault.ErrValidation))
	})

	t.Run("reason too long", func(t *testing.T) {
		err := ValidateRejection(expense, finance, strings.Repeat("x", entity.MaxRejectionReasonLength+1))
		assert.True(t, errors.Is(err, fault.ErrValidation))
	})

	t.Run("viewer denied", func(t *testing.T) {
		err := ValidateRejection(expense, entity.Actor{UserID: 9, Role: entity.RoleViewer}, "reason")
		assert.True(t, errors.Is(err, fault.ErrPermissionDenied))
	})
}
