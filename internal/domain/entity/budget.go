package entity

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// Budget is a project's spending plan. Effectively one-to-one with
// its project; categories partition the total allocation.
type Budget struct {
	ID               int64
	OrganizationID   int64
	ProjectID        int64
	TotalAmountCents money.Cents
	Categories       []BudgetCategory
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AllocatedCents sums the category allocations.
func (b *Budget) AllocatedCents() money.Cents {
	var total money.Cents
	for _, c := range b.Categories {
		total = total.Add(c.AllocatedCents)
	}
	return total
}

// SpentCents sums the derived category spend.
func (b *Budget) SpentCents() money.Cents {
	var total money.Cents
	for _, c := range b.Categories {
		total = total.Add(c.SpentCents)
	}
	return total
}

// BudgetCategory is one line of a budget. SpentCents is derived from
// linked APPROVED and REIMBURSED expenses at read time, never stored.
type BudgetCategory struct {
	ID             int64
	BudgetID       int64
	Name           string
	AllocatedCents money.Cents
	SpentCents     money.Cents
}

// RemainingCents returns what is left of the allocation. Negative when
// the category is over budget.
func (c *BudgetCategory) RemainingCents() money.Cents {
	return c.AllocatedCents.Sub(c.SpentCents)
}

// IsOverBudget reports whether spend has exceeded the allocation.
func (c *BudgetCategory) IsOverBudget() bool {
	return c.SpentCents > c.AllocatedCents
}
