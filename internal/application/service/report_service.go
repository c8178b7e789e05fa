package service

import (
	"context"
	"time"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/domain/report"
)

// DefaultReportPageSize bounds project-level pagination on the P&L.
const DefaultReportPageSize = 25

// ReportService assembles the read-side reports: it fetches a
// consistent snapshot through the repositories and delegates all
// arithmetic to the pure functions in the report package.
type ReportService interface {
	Aging(ctx context.Context, actor entity.Actor, now time.Time) (report.AgingReport, error)
	CashFlowForecast(ctx context.Context, actor entity.Actor, startingBalance money.Cents, weeks int, now time.Time) (report.CashFlowForecast, error)
	ProjectProfitability(ctx context.Context, actor entity.Actor, projectID int64) (report.ProjectProfitability, error)
	ProfitAndLoss(ctx context.Context, actor entity.Actor, basis report.Basis, from, to time.Time, page, pageSize int) (report.ProfitLossStatement, error)
}

type reportServiceImpl struct {
	projectRepo port.ProjectRepository
	budgetRepo  port.BudgetRepository
	expenseRepo port.ExpenseRepository
	invoiceRepo port.InvoiceRepository
	logger      Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	projectRepo port.ProjectRepository,
	budgetRepo port.BudgetRepository,
	expenseRepo port.ExpenseRepository,
	invoiceRepo port.InvoiceRepository,
	logger Logger,
) ReportService {
	return &reportServiceImpl{
		projectRepo: projectRepo,
		budgetRepo:  budgetRepo,
		expenseRepo: expenseRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// Aging buckets the organization's outstanding receivables by days
// overdue at the given instant.
func (s *reportServiceImpl) Aging(ctx context.Context, actor entity.Actor, now time.Time) (report.AgingReport, error) {
	outstanding, err := s.invoiceRepo.ListOutstanding(ctx, actor.OrganizationID)
	if err != nil {
		return report.AgingReport{}, err
	}
	return report.Aging(outstanding, now), nil
}

// CashFlowForecast projects the weekly net cash position from
// outstanding receivables and planned (submitted or approved, not yet
// reimbursed) expenses inside the horizon.
func (s *reportServiceImpl) CashFlowForecast(ctx context.Context, actor entity.Actor, startingBalance money.Cents, weeks int, now time.Time) (report.CashFlowForecast, error) {
	if weeks < 1 || weeks > report.MaxForecastWeeks {
		return report.CashFlowForecast{}, fault.Validation("weeks", "forecast horizon must be between 1 and 52 weeks")
	}

	outstanding, err := s.invoiceRepo.ListOutstanding(ctx, actor.OrganizationID)
	if err != nil {
		return report.CashFlowForecast{}, err
	}

	horizonEnd := now.AddDate(0, 0, 7*weeks)
	planned, err := s.expenseRepo.ListPlanned(ctx, actor.OrganizationID, now, horizonEnd)
	if err != nil {
		return report.CashFlowForecast{}, err
	}

	outflows := make([]report.PlannedOutflow, 0, len(planned))
	for _, exp := range planned {
		outflows = append(outflows, report.PlannedOutflow{
			Date:        exp.Date,
			AmountCents: exp.AmountCents,
		})
	}

	return report.Forecast(startingBalance, weeks, outstanding, outflows, now)
}

// ProjectProfitability rolls up one project's financials.
func (s *reportServiceImpl) ProjectProfitability(ctx context.Context, actor entity.Actor, projectID int64) (report.ProjectProfitability, error) {
	project, err := s.projectRepo.GetByID(ctx, actor.OrganizationID, projectID)
	if err != nil {
		return report.ProjectProfitability{}, err
	}
	if project == nil {
		return report.ProjectProfitability{}, fault.NotFound("project", projectID)
	}

	ledger, budgetTotal, err := s.loadLedger(ctx, actor.OrganizationID, projectID)
	if err != nil {
		return report.ProjectProfitability{}, err
	}
	return report.Profitability(projectID, budgetTotal, ledger.Invoices, ledger.Expenses), nil
}

// ProfitAndLoss builds the organization P&L for the requested basis
// and date range. Pagination is applied at the project level: the page
// totals cover only the listed projects, while the org totals always
// span every project so the two are never conflated.
func (s *reportServiceImpl) ProfitAndLoss(ctx context.Context, actor entity.Actor, basis report.Basis, from, to time.Time, page, pageSize int) (report.ProfitLossStatement, error) {
	if !basis.IsValid() {
		return report.ProfitLossStatement{}, fault.Validation("basis", "basis must be ACCRUAL or CASH")
	}
	if to.Before(from) {
		return report.ProfitLossStatement{}, fault.Validation("to", "range end precedes range start")
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultReportPageSize
	}

	total, err := s.projectRepo.Count(ctx, actor.OrganizationID)
	if err != nil {
		return report.ProfitLossStatement{}, err
	}

	// Org-wide totals need every project's ledger regardless of page.
	all, err := s.projectRepo.List(ctx, actor.OrganizationID, total, 0)
	if err != nil {
		return report.ProfitLossStatement{}, err
	}

	ledgers := make([]report.ProjectLedger, 0, len(all))
	profits := make(map[int64]report.ProjectProfitability, len(all))
	for _, p := range all {
		ledger, budgetTotal, err := s.loadLedger(ctx, actor.OrganizationID, p.ID)
		if err != nil {
			return report.ProfitLossStatement{}, err
		}
		ledgers = append(ledgers, ledger)
		profits[p.ID] = report.Profitability(p.ID, budgetTotal, ledger.Invoices, ledger.Expenses)
	}

	stmt := report.ProfitLossStatement{
		Basis:         basis,
		From:          from,
		To:            to,
		Page:          page,
		PageSize:      pageSize,
		TotalProjects: total,
		OrgTotals:     report.ProfitLossTotalsFor(ledgers, basis, from, to),
	}

	start := (page - 1) * pageSize
	if start < len(all) {
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		for _, p := range all[start:end] {
			stmt.Projects = append(stmt.Projects, profits[p.ID])
		}
		stmt.PageTotals = report.ProfitLossTotalsFor(ledgers[start:end], basis, from, to)
	}

	return stmt, nil
}

// loadLedger fetches one project's invoices, expenses, and budget total.
func (s *reportServiceImpl) loadLedger(ctx context.Context, orgID, projectID int64) (report.ProjectLedger, money.Cents, error) {
	invoices, err := s.invoiceRepo.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return report.ProjectLedger{}, 0, err
	}
	expenses, err := s.expenseRepo.ListByProject(ctx, orgID, projectID)
	if err != nil {
		return report.ProjectLedger{}, 0, err
	}

	var budgetTotal money.Cents
	budget, err := s.budgetRepo.GetByProjectID(ctx, orgID, projectID)
	if err != nil {
		return report.ProjectLedger{}, 0, err
	}
	if budget != nil {
		budgetTotal = budget.TotalAmountCents
	}

	return report.ProjectLedger{
		ProjectID: projectID,
		Invoices:  invoices,
		Expenses:  expenses,
	}, budgetTotal, nil
}
