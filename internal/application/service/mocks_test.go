package service

import (
	"context"
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/event"
)

// Hand-rolled mocks: function fields override the default behavior
// per test.

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockAuditSink struct {
	recordFunc func(ctx context.Context, e *event.Event) error
	events     []*event.Event
}

func (m *mockAuditSink) Record(ctx context.Context, e *event.Event) error {
	if m.recordFunc != nil {
		return m.recordFunc(ctx, e)
	}
	m.events = append(m.events, e)
	return nil
}

type mockNotifier struct {
	projectsChangedCalls [][]int64
	reminderCalls        [][]*entity.Invoice
	reminderFunc         func(ctx context.Context, orgID int64, invoices []*entity.Invoice) error
}

func (m *mockNotifier) ProjectsChanged(ctx context.Context, orgID int64, projectIDs []int64) {
	m.projectsChangedCalls = append(m.projectsChangedCalls, projectIDs)
}

func (m *mockNotifier) PaymentReminder(ctx context.Context, orgID int64, invoices []*entity.Invoice) error {
	m.reminderCalls = append(m.reminderCalls, invoices)
	if m.reminderFunc != nil {
		return m.reminderFunc(ctx, orgID, invoices)
	}
	return nil
}

type mockProjectRepo struct {
	createFunc       func(ctx context.Context, project *entity.Project) error
	getByIDFunc      func(ctx context.Context, orgID, id int64) (*entity.Project, error)
	updateStatusFunc func(ctx context.Context, orgID, id int64, status entity.ProjectStatus) error
	listFunc         func(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Project, error)
	countFunc        func(ctx context.Context, orgID int64) (int, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, project)
	}
	project.ID = 1
	return nil
}

func (m *mockProjectRepo) GetByID(ctx context.Context, orgID, id int64) (*entity.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, orgID, id)
	}
	return &entity.Project{ID: id, OrganizationID: orgID, Status: entity.ProjectDraft}, nil
}

func (m *mockProjectRepo) UpdateStatus(ctx context.Context, orgID, id int64, status entity.ProjectStatus) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, orgID, id, status)
	}
	return nil
}

func (m *mockProjectRepo) List(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Project, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, orgID, limit, offset)
	}
	return []*entity.Project{}, nil
}

func (m *mockProjectRepo) Count(ctx context.Context, orgID int64) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, orgID)
	}
	return 0, nil
}

type mockExpenseRepo struct {
	createFunc          func(ctx context.Context, expense *entity.Expense) error
	getByIDFunc         func(ctx context.Context, orgID, id int64) (*entity.Expense, error)
	updateFunc          func(ctx context.Context, expense *entity.Expense) error
	listByProjectFunc   func(ctx context.Context, orgID, projectID int64) ([]*entity.Expense, error)
	listPlannedFunc     func(ctx context.Context, orgID int64, from, to time.Time) ([]*entity.Expense, error)
	countByCategoryFunc func(ctx context.Context, orgID, categoryID int64) (int, error)
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, expense)
	}
	expense.ID = 1
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, orgID, id int64) (*entity.Expense, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, orgID, id)
	}
	return nil, nil
}

func (m *mockExpenseRepo) Update(ctx context.Context, expense *entity.Expense) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, expense)
	}
	return nil
}

func (m *mockExpenseRepo) ListByProject(ctx context.Context, orgID, projectID int64) ([]*entity.Expense, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, orgID, projectID)
	}
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) ListPlanned(ctx context.Context, orgID int64, from, to time.Time) ([]*entity.Expense, error) {
	if m.listPlannedFunc != nil {
		return m.listPlannedFunc(ctx, orgID, from, to)
	}
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) CountByCategory(ctx context.Context, orgID, categoryID int64) (int, error) {
	if m.countByCategoryFunc != nil {
		return m.countByCategoryFunc(ctx, orgID, categoryID)
	}
	return 0, nil
}

type mockInvoiceRepo struct {
	createFunc                 func(ctx context.Context, invoice *entity.Invoice) error
	getByIDFunc                func(ctx context.Context, orgID, id int64) (*entity.Invoice, error)
	updateFunc                 func(ctx context.Context, invoice *entity.Invoice) error
	replaceLineItemsFunc       func(ctx context.Context, invoice *entity.Invoice) error
	listByProjectFunc          func(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error)
	listOutstandingFunc        func(ctx context.Context, orgID int64) ([]*entity.Invoice, error)
	updateBalanceAndStatusFunc func(ctx context.Context, orgID, id int64, balance int64, status entity.InvoiceStatus, expectedVersion int64) error
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, invoice)
	}
	invoice.ID = 1
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, orgID, id int64) (*entity.Invoice, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, orgID, id)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, invoice)
	}
	return nil
}

func (m *mockInvoiceRepo) ReplaceLineItems(ctx context.Context, invoice *entity.Invoice) error {
	if m.replaceLineItemsFunc != nil {
		return m.replaceLineItemsFunc(ctx, invoice)
	}
	return nil
}

func (m *mockInvoiceRepo) ListByProject(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, orgID, projectID)
	}
	return []*entity.Invoice{}, nil
}

func (m *mockInvoiceRepo) ListOutstanding(ctx context.Context, orgID int64) ([]*entity.Invoice, error) {
	if m.listOutstandingFunc != nil {
		return m.listOutstandingFunc(ctx, orgID)
	}
	return []*entity.Invoice{}, nil
}

func (m *mockInvoiceRepo) UpdateBalanceAndStatus(ctx context.Context, orgID, id int64, balance int64, status entity.InvoiceStatus, expectedVersion int64) error {
	if m.updateBalanceAndStatusFunc != nil {
		return m.updateBalanceAndStatusFunc(ctx, orgID, id, balance, status, expectedVersion)
	}
	return nil
}

type mockPaymentRepo struct {
	createFunc        func(ctx context.Context, payment *entity.Payment) error
	listByInvoiceFunc func(ctx context.Context, orgID, invoiceID int64) ([]*entity.Payment, error)
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *entity.Payment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, payment)
	}
	payment.ID = 1
	return nil
}

func (m *mockPaymentRepo) ListByInvoice(ctx context.Context, orgID, invoiceID int64) ([]*entity.Payment, error) {
	if m.listByInvoiceFunc != nil {
		return m.listByInvoiceFunc(ctx, orgID, invoiceID)
	}
	return []*entity.Payment{}, nil
}

type mockBudgetRepo struct {
	createFunc         func(ctx context.Context, budget *entity.Budget) error
	getByProjectIDFunc func(ctx context.Context, orgID, projectID int64) (*entity.Budget, error)
	createCategoryFunc func(ctx context.Context, orgID int64, category *entity.BudgetCategory) error
	updateCategoryFunc func(ctx context.Context, orgID int64, category *entity.BudgetCategory) error
	deleteCategoryFunc func(ctx context.Context, orgID, categoryID int64) error
}

func (m *mockBudgetRepo) Create(ctx context.Context, budget *entity.Budget) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, budget)
	}
	budget.ID = 1
	return nil
}

func (m *mockBudgetRepo) GetByProjectID(ctx context.Context, orgID, projectID int64) (*entity.Budget, error) {
	if m.getByProjectIDFunc != nil {
		return m.getByProjectIDFunc(ctx, orgID, projectID)
	}
	return nil, nil
}

func (m *mockBudgetRepo) CreateCategory(ctx context.Context, orgID int64, category *entity.BudgetCategory) error {
	if m.createCategoryFunc != nil {
		return m.createCategoryFunc(ctx, orgID, category)
	}
	category.ID = 1
	return nil
}

func (m *mockBudgetRepo) UpdateCategory(ctx context.Context, orgID int64, category *entity.BudgetCategory) error {
	if m.updateCategoryFunc != nil {
		return m.updateCategoryFunc(ctx, orgID, category)
	}
	return nil
}

func (m *mockBudgetRepo) DeleteCategory(ctx context.Context, orgID, categoryID int64) error {
	if m.deleteCategoryFunc != nil {
		return m.deleteCategoryFunc(ctx, orgID, categoryID)
	}
	return nil
}

type mockVendorRepo struct {
	createFunc  func(ctx context.Context, vendor *entity.Vendor) error
	getByIDFunc func(ctx context.Context, orgID, id int64) (*entity.Vendor, error)
	updateFunc  func(ctx context.Context, vendor *entity.Vendor) error
	listFunc    func(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Vendor, error)
}

func (m *mockVendorRepo) Create(ctx context.Context, vendor *entity.Vendor) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, vendor)
	}
	vendor.ID = 1
	return nil
}

func (m *mockVendorRepo) GetByID(ctx context.Context, orgID, id int64) (*entity.Vendor, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, orgID, id)
	}
	return nil, nil
}

func (m *mockVendorRepo) Update(ctx context.Context, vendor *entity.Vendor) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, vendor)
	}
	return nil
}

func (m *mockVendorRepo) List(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Vendor, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, orgID, limit, offset)
	}
	return []*entity.Vendor{}, nil
}
