package report

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// Basis selects how revenue is recognized in a P&L report.
type Basis string

const (
	// BasisAccrual recognizes revenue when an invoice is issued.
	BasisAccrual Basis = "ACCRUAL"
	// BasisCash recognizes revenue when a payment is received.
	BasisCash Basis = "CASH"
)

// IsValid reports whether the basis is a defined mode.
func (b Basis) IsValid() bool {
	return b == BasisAccrual || b == BasisCash
}

// ProjectProfitability is the per-project rollup of invoiced, received,
// and expensed amounts. Profit is accrual basis: recognized on invoice,
// not on cash receipt.
type ProjectProfitability struct {
	ProjectID                    int64             `json:"project_id"`
	InvoicedCents                money.Cents       `json:"invoiced_cents"`
	ReceivedCents                money.Cents       `json:"received_cents"`
	OutstandingCents             money.Cents       `json:"outstanding_cents"`
	WrittenOffCents              money.Cents       `json:"written_off_cents"`
	ExpensesCents                money.Cents       `json:"expenses_cents"`
	ProfitCents                  money.Cents       `json:"profit_cents"`
	MarginBasisPoints            money.BasisPoints `json:"margin_basis_points"`
	BudgetTotalCents             money.Cents       `json:"budget_total_cents"`
	BudgetUtilizationBasisPoints money.BasisPoints `json:"budget_utilization_basis_points"`
}

// Profitability rolls up one project's financials. Invoices still in
// DRAFT are ignored; written-off invoices are excluded from revenue and
// reported separately. Only APPROVED and REIMBURSED expenses count.
func Profitability(
	projectID int64,
	budgetTotal money.Cents,
	invoices []*entity.Invoice,
	expenses []*entity.Expense,
) ProjectProfitability {
	p := ProjectProfitability{ProjectID: projectID, BudgetTotalCents: budgetTotal}

	for _, inv := range invoices {
		if inv.Status == entity.InvoiceDraft {
			continue
		}
		// Write-off forgives the balance, not the cash already
		// received: payments collected before the write-off stay in
		// ReceivedCents.
		p.ReceivedCents = p.ReceivedCents.Add(inv.PaidCents())
		if inv.Status == entity.InvoiceWrittenOff {
			p.WrittenOffCents = p.WrittenOffCents.Add(inv.TotalCents)
			continue
		}
		p.InvoicedCents = p.InvoicedCents.Add(inv.TotalCents)
		p.OutstandingCents = p.OutstandingCents.Add(inv.BalanceDueCents)
	}

	for _, exp := range expenses {
		if !exp.Status.CountsAsSpent() {
			continue
		}
		p.ExpensesCents = p.ExpensesCents.Add(exp.AmountCents)
	}

	p.ProfitCents = p.InvoicedCents.Sub(p.ExpensesCents)
	p.MarginBasisPoints = money.Ratio(p.ProfitCents, p.InvoicedCents)
	p.BudgetUtilizationBasisPoints = money.Ratio(p.ExpensesCents, budgetTotal)
	return p
}

// ProfitLossStatement is the organization-wide P&L over a date range.
// PageTotals cover only the projects on this page; OrgTotals always
// cover the whole organization, so partial page summaries are never
// mistaken for the full picture.
type ProfitLossStatement struct {
	Basis         Basis                  `json:"basis"`
	From          time.Time              `json:"from"`
	To            time.Time              `json:"to"`
	Projects      []ProjectProfitability `json:"projects"`
	PageTotals    ProfitLossTotals       `json:"page_totals"`
	OrgTotals     ProfitLossTotals       `json:"org_totals"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
	TotalProjects int                    `json:"total_projects"`
}

// ProfitLossTotals aggregates revenue, expenses, and profit.
type ProfitLossTotals struct {
	RevenueCents      money.Cents       `json:"revenue_cents"`
	ExpensesCents     money.Cents       `json:"expenses_cents"`
	ProfitCents       money.Cents       `json:"profit_cents"`
	MarginBasisPoints money.BasisPoints `json:"margin_basis_points"`
}

// ProjectLedger is the raw material the P&L works from for one project.
type ProjectLedger struct {
	ProjectID int64
	Invoices  []*entity.Invoice
	Expenses  []*entity.Expense
}

// ProfitLossTotalsFor computes P&L totals over a set of project ledgers
// for the given basis and date range. The two bases differ only in
// revenue recognition and share the expense side:
//
//   - ACCRUAL counts the totals of non-draft, non-written-off invoices
//     issued inside the range.
//   - CASH counts payments received inside the range, regardless of
//     when the invoice was issued.
func ProfitLossTotalsFor(ledgers []ProjectLedger, basis Basis, from, to time.Time) ProfitLossTotals {
	var totals ProfitLossTotals
	for _, ledger := range ledgers {
		totals.RevenueCents = totals.RevenueCents.Add(recognizedRevenue(ledger.Invoices, basis, from, to))
		totals.ExpensesCents = totals.ExpensesCents.Add(recognizedExpenses(ledger.Expenses, from, to))
	}
	totals.ProfitCents = totals.RevenueCents.Sub(totals.ExpensesCents)
	totals.MarginBasisPoints = money.Ratio(totals.ProfitCents, totals.RevenueCents)
	return totals
}

func recognizedRevenue(invoices []*entity.Invoice, basis Basis, from, to time.Time) money.Cents {
	var revenue money.Cents
	for _, inv := range invoices {
		if inv.Status == entity.InvoiceDraft {
			continue
		}
		switch basis {
		case BasisCash:
			// Cash basis recognizes money as it arrives, so payments
			// collected before a later write-off still count.
			for _, pay := range inv.Payments {
				if inRange(pay.PaymentDate, from, to) {
					revenue = revenue.Add(pay.AmountCents)
				}
			}
		default: // accrual
			if inv.Status == entity.InvoiceWrittenOff {
				continue
			}
			if inRange(inv.IssueDate, from, to) {
				revenue = revenue.Add(inv.TotalCents)
			}
		}
	}
	return revenue
}

// recognizedExpenses is the shared expense-side logic for both bases.
func recognizedExpenses(expenses []*entity.Expense, from, to time.Time) money.Cents {
	var total money.Cents
	for _, exp := range expenses {
		if !exp.Status.CountsAsSpent() || !inRange(exp.Date, from, to) {
			continue
		}
		total = total.Add(exp.AmountCents)
	}
	return total
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
