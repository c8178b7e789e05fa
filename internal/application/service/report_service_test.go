package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/domain/report"
)

func newReportService(projects *mockProjectRepo, budgets *mockBudgetRepo, expenses *mockExpenseRepo, invoices *mockInvoiceRepo) ReportService {
	return NewReportService(projects, budgets, expenses, invoices, noopLogger{})
}

func outstandingInvoice(id int64, balance money.Cents, due time.Time) *entity.Invoice {
	return &entity.Invoice{
		ID:              id,
		OrganizationID:  10,
		Status:          entity.InvoiceSent,
		TotalCents:      balance,
		BalanceDueCents: balance,
		DueDate:         due,
	}
}

func TestReportService_Aging(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	invRepo := &mockInvoiceRepo{
		listOutstandingFunc: func(ctx context.Context, orgID int64) ([]*entity.Invoice, error) {
			return []*entity.Invoice{
				outstandingInvoice(1, 100, now),
				outstandingInvoice(2, 200, now.AddDate(0, 0, -35)),
				outstandingInvoice(3, 300, now.AddDate(0, 0, -95)),
			}, nil
		},
	}
	svc := newReportService(&mockProjectRepo{}, &mockBudgetRepo{}, &mockExpenseRepo{}, invRepo)

	rep, err := svc.Aging(context.Background(), financeActor(), now)
	require.NoError(t, err)

	byLabel := map[report.AgingBucketLabel]report.AgingBucket{}
	for _, b := range rep.Buckets {
		byLabel[b.Label] = b
	}
	assert.Equal(t, money.Cents(100), byLabel[report.BucketCurrent].BalanceCents)
	assert.Equal(t, money.Cents(200), byLabel[report.BucketDays60].BalanceCents)
	assert.Equal(t, money.Cents(300), byLabel[report.BucketDays90Up].BalanceCents)
	assert.Equal(t, money.Cents(600), rep.TotalBalanceCents)
	assert.Equal(t, 3, rep.TotalCount)
}

func TestReportService_CashFlowForecast(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	invRepo := &mockInvoiceRepo{
		listOutstandingFunc: func(ctx context.Context, orgID int64) ([]*entity.Invoice, error) {
			return []*entity.Invoice{
				outstandingInvoice(1, 50000, now.AddDate(0, 0, 10)),
			}, nil
		},
	}
	expRepo := &mockExpenseRepo{
		listPlannedFunc: func(ctx context.Context, orgID int64, from, to time.Time) ([]*entity.Expense, error) {
			return []*entity.Expense{
				{AmountCents: 20000, Date: now.AddDate(0, 0, 3), Status: entity.ExpenseApproved},
			}, nil
		},
	}
	svc := newReportService(&mockProjectRepo{}, &mockBudgetRepo{}, expRepo, invRepo)

	fc, err := svc.CashFlowForecast(context.Background(), financeActor(), 100000, 4, now)
	require.NoError(t, err)
	require.Len(t, fc.Weeks, 4)

	assert.Equal(t, money.Cents(20000), fc.Weeks[0].OutflowCents)
	assert.Equal(t, money.Cents(50000), fc.Weeks[1].InflowCents)
	assert.Equal(t, money.Cents(130000), fc.Weeks[3].RunningBalanceCents)
}

func TestReportService_CashFlowForecast_HorizonBounds(t *testing.T) {
	svc := newReportService(&mockProjectRepo{}, &mockBudgetRepo{}, &mockExpenseRepo{}, &mockInvoiceRepo{})

	for _, weeks := range []int{0, -1, 53} {
		_, err := svc.CashFlowForecast(context.Background(), financeActor(), 0, weeks, time.Now())
		assert.True(t, errors.Is(err, fault.ErrValidation), "weeks %d", weeks)
	}
}

func TestReportService_ProjectProfitability(t *testing.T) {
	projRepo := &mockProjectRepo{
		getByIDFunc: func(ctx context.Context, orgID, id int64) (*entity.Project, error) {
			return &entity.Project{ID: id, OrganizationID: orgID, Status: entity.ProjectActive}, nil
		},
	}
	budgetRepo := &mockBudgetRepo{
		getByProjectIDFunc: func(ctx context.Context, orgID, projectID int64) (*entity.Budget, error) {
			return &entity.Budget{ProjectID: projectID, TotalAmountCents: 400000}, nil
		},
	}
	invRepo := &mockInvoiceRepo{
		listByProjectFunc: func(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error) {
			paid := &entity.Invoice{Status: entity.InvoicePaid, TotalCents: 300000}
			paid.Payments = []entity.Payment{{AmountCents: 300000}}
			return []*entity.Invoice{paid}, nil
		},
	}
	expRepo := &mockExpenseRepo{
		listByProjectFunc: func(ctx context.Context, orgID, projectID int64) ([]*entity.Expense, error) {
			return []*entity.Expense{
				{AmountCents: 100000, Status: entity.ExpenseApproved},
				{AmountCents: 50000, Status: entity.ExpenseRejected},
			}, nil
		},
	}
	svc := newReportService(projRepo, budgetRepo, expRepo, invRepo)

	p, err := svc.ProjectProfitability(context.Background(), financeActor(), 3)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(300000), p.InvoicedCents)
	assert.Equal(t, money.Cents(100000), p.ExpensesCents, "rejected expenses never count as spent")
	assert.Equal(t, money.Cents(200000), p.ProfitCents)
	assert.Equal(t, money.BasisPoints(6667), p.MarginBasisPoints)
	assert.Equal(t, money.BasisPoints(2500), p.BudgetUtilizationBasisPoints)
}

func TestReportService_ProjectProfitability_NotFound(t *testing.T) {
	projRepo := &mockProjectRepo{
		getByIDFunc: func(ctx context.Context, orgID, id int64) (*entity.Project, error) {
			return nil, nil
		},
	}
	svc := newReportService(projRepo, &mockBudgetRepo{}, &mockExpenseRepo{}, &mockInvoiceRepo{})

	_, err := svc.ProjectProfitability(context.Background(), financeActor(), 99)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}

func TestReportService_ProfitAndLoss(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	projects := []*entity.Project{
		{ID: 1, OrganizationID: 10, Status: entity.ProjectActive},
		{ID: 2, OrganizationID: 10, Status: entity.ProjectActive},
		{ID: 3, OrganizationID: 10, Status: entity.ProjectCompleted},
	}
	projRepo := &mockProjectRepo{
		countFunc: func(ctx context.Context, orgID int64) (int, error) { return len(projects), nil },
		listFunc: func(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Project, error) {
			return projects, nil
		},
	}
	invRepo := &mockInvoiceRepo{
		listByProjectFunc: func(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error) {
			inv := &entity.Invoice{
				Status:     entity.InvoiceSent,
				TotalCents: money.Cents(projectID * 10000),
				IssueDate:  from.AddDate(0, 3, 0),
			}
			return []*entity.Invoice{inv}, nil
		},
	}
	expRepo := &mockExpenseRepo{
		listByProjectFunc: func(ctx context.Context, orgID, projectID int64) ([]*entity.Expense, error) {
			return []*entity.Expense{
				{AmountCents: money.Cents(projectID * 1000), Status: entity.ExpenseApproved, Date: from.AddDate(0, 4, 0)},
			}, nil
		},
	}
	svc := newReportService(projRepo, &mockBudgetRepo{}, expRepo, invRepo)

	stmt, err := svc.ProfitAndLoss(context.Background(), financeActor(), report.BasisAccrual, from, to, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, stmt.TotalProjects)
	require.Len(t, stmt.Projects, 2, "page size bounds the listed projects")

	// Org totals span all three projects, page totals only the two listed.
	assert.Equal(t, money.Cents(60000), stmt.OrgTotals.RevenueCents)
	assert.Equal(t, money.Cents(6000), stmt.OrgTotals.ExpensesCents)
	assert.Equal(t, money.Cents(30000), stmt.PageTotals.RevenueCents)
	assert.Equal(t, money.Cents(3000), stmt.PageTotals.ExpensesCents)

	second, err := svc.ProfitAndLoss(context.Background(), financeActor(), report.BasisAccrual, from, to, 2, 2)
	require.NoError(t, err)
	require.Len(t, second.Projects, 1)
	assert.Equal(t, money.Cents(30000), second.PageTotals.RevenueCents)
	assert.Equal(t, stmt.OrgTotals, second.OrgTotals)
}

func TestReportService_ProfitAndLoss_CashBasis(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	projRepo := &mockProjectRepo{
		countFunc: func(ctx context.Context, orgID int64) (int, error) { return 1, nil },
		listFunc: func(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Project, error) {
			return []*entity.Project{{ID: 1, OrganizationID: orgID}}, nil
		},
	}
	invRepo := &mockInvoiceRepo{
		listByProjectFunc: func(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error) {
			inv := &entity.Invoice{
				Status:     entity.InvoicePartiallyPaid,
				TotalCents: 50000,
				IssueDate:  from.AddDate(0, 1, 0),
				Payments: []entity.Payment{
					{AmountCents: 20000, PaymentDate: from.AddDate(0, 2, 0)},
					{AmountCents: 10000, PaymentDate: to.AddDate(0, 2, 0)},
				},
			}
			return []*entity.Invoice{inv}, nil
		},
	}
	svc := newReportService(projRepo, &mockBudgetRepo{}, &mockExpenseRepo{}, invRepo)

	stmt, err := svc.ProfitAndLoss(context.Background(), financeActor(), report.BasisCash, from, to, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(20000), stmt.OrgTotals.RevenueCents,
		"cash basis counts only payments received inside the range")

	accrual, err := svc.ProfitAndLoss(context.Background(), financeActor(), report.BasisAccrual, from, to, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(50000), accrual.OrgTotals.RevenueCents)
}

func TestReportService_ProfitAndLoss_Validation(t *testing.T) {
	svc := newReportService(&mockProjectRepo{}, &mockBudgetRepo{}, &mockExpenseRepo{}, &mockInvoiceRepo{})
	now := time.Now()

	_, err := svc.ProfitAndLoss(context.Background(), financeActor(), report.Basis("WEIRD"), now.AddDate(0, -1, 0), now, 1, 10)
	assert.True(t, errors.Is(err, fault.ErrValidation))

	_, err = svc.ProfitAndLoss(context.Background(), financeActor(), report.BasisAccrual, now, now.AddDate(0, -1, 0), 1, 10)
	assert.True(t, errors.Is(err, fault.ErrValidation))
}
