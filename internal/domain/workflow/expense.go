package workflow

import (
	"strings"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

// expenseTransitions lists the allowed target states per current state.
// REJECTED and REIMBURSED are terminal.
var expenseTransitions = map[entity.ExpenseStatus][]entity.ExpenseStatus{
	entity.ExpenseDraft:      {entity.ExpenseSubmitted},
	entity.ExpenseSubmitted:  {entity.ExpenseApproved, entity.ExpenseRejected},
	entity.ExpenseApproved:   {entity.ExpenseReimbursed},
	entity.ExpenseRejected:   {},
	entity.ExpenseReimbursed: {},
}

// CanTransitionExpense reports whether an expense may move between the
// two states. Guard conditions (role, self-approval, rejection reason)
// are checked separately.
func CanTransitionExpense(from, to entity.ExpenseStatus) bool {
	for _, allowed := range expenseTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateExpenseTransition returns an invalid-transition fault naming
// both states when the move is not allowed.
func ValidateExpenseTransition(from, to entity.ExpenseStatus) error {
	if !to.IsValid() {
		return fault.Validation("status", "unknown expense status "+to.String())
	}
	if !CanTransitionExpense(from, to) {
		return fault.InvalidTransition("expense", from.String(), to.String())
	}
	return nil
}

// ValidateApproval checks the guard conditions for SUBMITTED -> APPROVED:
// the actor needs at least FINANCE and must not be the submitter.
func ValidateApproval(expense *entity.Expense, actor entity.Actor) error {
	if err := ValidateExpenseTransition(expense.Status, entity.ExpenseApproved); err != nil {
		return err
	}
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return fault.PermissionDenied("approve expenses", actor.Role.String())
	}
	if actor.UserID == expense.SubmittedByID {
		return fault.SelfApproval(expense.ID)
	}
	return nil
}

// ValidateRejection checks the guard conditions for SUBMITTED -> REJECTED:
// approver-level role and a non-empty bounded reason.
func ValidateRejection(expense *entity.Expense, actor entity.Actor, reason string) error {
	if err := ValidateExpenseTransition(expense.Status, entity.ExpenseRejected); err != nil {
		return err
	}
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return fault.PermissionDenied("reject expenses", actor.Role.String())
	}
	if strings.TrimSpace(reason) == "" {
		return fault.Validation("rejection_reason", "rejection requires a reason")
	}
	if len(reason) > entity.MaxRejectionReasonLength {
		return fault.Validation("rejection_reason", "reason exceeds maximum length")
	}
	return nil
}
