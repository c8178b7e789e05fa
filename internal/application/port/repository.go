// Package port defines the boundary contracts the financial core
// depends on: persistence, transactions, and the audit/notification
// collaborators. Every repository method is scoped by organization id;
// rows outside the acting organization behave exactly like missing rows.
package port

import (
	"context"
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
)

// ProjectRepository defines persistence operations for Project.
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, orgID, id int64) (*entity.Project, error)
	UpdateStatus(ctx context.Context, orgID, id int64, status entity.ProjectStatus) error
	List(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Project, error)
	Count(ctx context.Context, orgID int64) (int, error)
}

// BudgetRepository defines persistence operations for Budget and its
// categories. Reads return categories hydrated with derived spend.
type BudgetRepository interface {
	Create(ctx context.Context, budget *entity.Budget) error
	GetByProjectID(ctx context.Context, orgID, projectID int64) (*entity.Budget, error)
	CreateCategory(ctx context.Context, orgID int64, category *entity.BudgetCategory) error
	UpdateCategory(ctx context.Context, orgID int64, category *entity.BudgetCategory) error
	DeleteCategory(ctx context.Context, orgID, categoryID int64) error
}

// ExpenseRepository defines persistence operations for Expense.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, orgID, id int64) (*entity.Expense, error)
	Update(ctx context.Context, expense *entity.Expense) error
	ListByProject(ctx context.Context, orgID, projectID int64) ([]*entity.Expense, error)
	ListPlanned(ctx context.Context, orgID int64, from, to time.Time) ([]*entity.Expense, error)
	CountByCategory(ctx context.Context, orgID, categoryID int64) (int, error)
}

// InvoiceRepository defines persistence operations for Invoice.
// Reads return invoices hydrated with line items and payments.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, orgID, id int64) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	ReplaceLineItems(ctx context.Context, invoice *entity.Invoice) error
	ListByProject(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error)
	ListOutstanding(ctx context.Context, orgID int64) ([]*entity.Invoice, error)

	// UpdateBalanceAndStatus applies the payment-side recomputation
	// guarded by an optimistic version check: the write succeeds only
	// if the stored version still equals expectedVersion, and bumps
	// the version. Returns fault.ErrConcurrencyConflict otherwise.
	UpdateBalanceAndStatus(ctx context.Context, orgID, id int64, balance int64, status entity.InvoiceStatus, expectedVersion int64) error
}

// PaymentRepository defines persistence operations for Payment.
// Payments are append-only; there is no update or delete.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByInvoice(ctx context.Context, orgID, invoiceID int64) ([]*entity.Payment, error)
}

// VendorRepository defines persistence operations for Vendor.
type VendorRepository interface {
	Create(ctx context.Context, vendor *entity.Vendor) error
	GetByID(ctx context.Context, orgID, id int64) (*entity.Vendor, error)
	Update(ctx context.Context, vendor *entity.Vendor) error
	List(ctx context.Context, orgID int64, limit, offset int) ([]*entity.Vendor, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
