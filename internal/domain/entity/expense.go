package entity

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// ExpenseStatus is an expense's position in the approval lifecycle.
type ExpenseStatus string

const (
	ExpenseDraft      ExpenseStatus = "DRAFT"
	ExpenseSubmitted  ExpenseStatus = "SUBMITTED"
	ExpenseApproved   ExpenseStatus = "APPROVED"
	ExpenseRejected   ExpenseStatus = "REJECTED"
	ExpenseReimbursed ExpenseStatus = "REIMBURSED"
)

var validExpenseStatuses = map[ExpenseStatus]bool{
	ExpenseDraft:      true,
	ExpenseSubmitted:  true,
	ExpenseApproved:   true,
	ExpenseRejected:   true,
	ExpenseReimbursed: true,
}

// IsValid reports whether the status is a defined expense state.
func (s ExpenseStatus) IsValid() bool {
	return validExpenseStatuses[s]
}

// String returns the string representation of the status.
func (s ExpenseStatus) String() string {
	return string(s)
}

// CountsAsSpent reports whether the expense contributes to budget
// category spend rollups.
func (s ExpenseStatus) CountsAsSpent() bool {
	return s == ExpenseApproved || s == ExpenseReimbursed
}

// MaxRejectionReasonLength bounds the persisted rejection reason.
const MaxRejectionReasonLength = 1000

// Expense is a cost charged against a project, optionally attributed
// to a budget category and a vendor.
type Expense struct {
	ID               int64
	OrganizationID   int64
	ProjectID        int64
	BudgetCategoryID *int64
	VendorID         *int64
	Description      string
	AmountCents      money.Cents
	Date             time.Time
	Status           ExpenseStatus
	SubmittedByID    int64
	ApprovedByID     *int64
	RejectionReason  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
