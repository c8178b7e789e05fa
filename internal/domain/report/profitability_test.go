package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/money"
)

func TestProfitability_Rollup(t *testing.T) {
	invoices := []*entity.Invoice{
		{
			Status:          entity.InvoicePaid,
			TotalCents:      100000,
			BalanceDueCents: 0,
			Payments:        []entity.Payment{{AmountCents: 100000}},
		},
		{
			Status:          entity.InvoicePartiallyPaid,
			TotalCents:      50000,
			BalanceDueCents: 30000,
			Payments:        []entity.Payment{{AmountCents: 20000}},
		},
		// Draft invoices are not revenue yet.
		{Status: entity.InvoiceDraft, TotalCents: 77777},
	}
	expenses := []*entity.Expense{
		{Status: entity.ExpenseApproved, AmountCents: 40000},
		{Status: entity.ExpenseReimbursed, AmountCents: 10000},
		{Status: entity.ExpenseSubmitted, AmountCents: 5000}, // not yet approved
		{Status: entity.ExpenseRejected, AmountCents: 9000},
	}

	p := Profitability(3, 200000, invoices, expenses)

	assert.Equal(t, money.Cents(150000), p.InvoicedCents)
	assert.Equal(t, money.Cents(120000), p.ReceivedCents)
	assert.Equal(t, money.Cents(30000), p.OutstandingCents)
	assert.Equal(t, money.Cents(50000), p.ExpensesCents)
	assert.Equal(t, money.Cents(100000), p.ProfitCents)
	// 100000/150000 = 66.67% -> 6667bp
	assert.Equal(t, money.BasisPoints(6667), p.MarginBasisPoints)
	// 50000/200000 = 25% -> 2500bp
	assert.Equal(t, money.BasisPoints(2500), p.BudgetUtilizationBasisPoints)
}

func TestProfitability_ZeroDenominators(t *testing.T) {
	p := Profitability(1, 0, nil, []*entity.Expense{
		{Status: entity.ExpenseApproved, AmountCents: 5000},
	})

	assert.Equal(t, money.Cents(0), p.InvoicedCents)
	assert.Equal(t, money.BasisPoints(0), p.MarginBasisPoints)
	assert.Equal(t, money.BasisPoints(0), p.BudgetUtilizationBasisPoints)
}

func TestProfitability_WrittenOffExcludedFromRevenue(t *testing.T) {
	invoices := []*entity.Invoice{
		{Status: entity.InvoiceSent, TotalCents: 80000, BalanceDueCents: 80000},
		{Status: entity.InvoiceWrittenOff, TotalCents: 20000, BalanceDueCents: 0},
	}

	p := Profitability(1, 0, invoices, nil)
	assert.Equal(t, money.Cents(80000), p.InvoicedCents)
	assert.Equal(t, money.Cents(20000), p.WrittenOffCents)
}

func TestProfitability_WrittenOffKeepsReceivedPayments(t *testing.T) {
	// Writing off forgives the remaining balance; cash collected
	// beforehand is still real and stays in the rollup.
	invoices := []*entity.Invoice{
		{
			Status:          entity.InvoiceWrittenOff,
			TotalCents:      10000,
			BalanceDueCents: 0,
			Payments:        []entity.Payment{{AmountCents: 4000}},
		},
	}

	p := Profitability(1, 0, invoices, nil)
	assert.Equal(t, money.Cents(0), p.InvoicedCents)
	assert.Equal(t, money.Cents(4000), p.ReceivedCents)
	assert.Equal(t, money.Cents(0), p.OutstandingCents)
	assert.Equal(t, money.Cents(10000), p.WrittenOffCents)
}

func TestProfitLossTotalsFor_BasisModes(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	ledgers := []ProjectLedger{{
		ProjectID: 1,
		Invoices: []*entity.Invoice{
			{
				// Issued inside the range, paid after it.
				Status:     entity.InvoicePaid,
				TotalCents: 60000,
				IssueDate:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
				Payments: []entity.Payment{
					{AmountCents: 60000, PaymentDate: time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC)},
				},
			},
			{
				// Issued before the range, partially paid inside it.
				Status:     entity.InvoicePartiallyPaid,
				TotalCents: 40000,
				IssueDate:  time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
				Payments: []entity.Payment{
					{AmountCents: 15000, PaymentDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
				},
			},
		},
		Expenses: []*entity.Expense{
			{Status: entity.ExpenseApproved, AmountCents: 10000, Date: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
			{Status: entity.ExpenseApproved, AmountCents: 99999, Date: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)},
		},
	}}

	accrual := ProfitLossTotalsFor(ledgers, BasisAccrual, from, to)
	assert.Equal(t, money.Cents(60000), accrual.RevenueCents)
	assert.Equal(t, money.Cents(10000), accrual.ExpensesCents)
	assert.Equal(t, money.Cents(50000), accrual.ProfitCents)

	cash := ProfitLossTotalsFor(ledgers, BasisCash, from, to)
	assert.Equal(t, money.Cents(15000), cash.RevenueCents)
	// Expense side is shared between bases.
	assert.Equal(t, accrual.ExpensesCents, cash.ExpensesCents)
	assert.Equal(t, money.Cents(5000), cash.ProfitCents)
}

func TestProfitLossTotalsFor_WrittenOffByBasis(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)

	ledgers := []ProjectLedger{{
		ProjectID: 1,
		Invoices: []*entity.Invoice{
			{
				Status:     entity.InvoiceWrittenOff,
				TotalCents: 10000,
				IssueDate:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
				Payments: []entity.Payment{
					{AmountCents: 4000, PaymentDate: time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)},
				},
			},
		},
	}}

	// Accrual never recognizes a written-off invoice.
	accrual := ProfitLossTotalsFor(ledgers, BasisAccrual, from, to)
	assert.Equal(t, money.Cents(0), accrual.RevenueCents)

	// Cash basis keeps the payment that landed before the write-off.
	cash := ProfitLossTotalsFor(ledgers, BasisCash, from, to)
	assert.Equal(t, money.Cents(4000), cash.RevenueCents)
}

func TestBasis_IsValid(t *testing.T) {
	assert.True(t, BasisAccrual.IsValid())
	assert.True(t, BasisCash.IsValid())
	assert.False(t, Basis("HYBRID").IsValid())
}
