package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
)

// ExpenseRepository implements port.ExpenseRepository
type ExpenseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB, logger *zap.Logger) port.ExpenseRepository {
	return &ExpenseRepository{
		db:     db,
		logger: logger,
	}
}

const expenseColumns = `
	id, organization_id, project_id, budget_category_id, vendor_id,
	description, amount_cents, expense_date, status,
	submitted_by_id, approved_by_id, rejection_reason,
	created_at, updated_at
`

// Create inserts a new expense record
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	query := `
		INSERT INTO expenses (
			organization_id, project_id, budget_category_id, vendor_id,
			description, amount_cents, expense_date, status,
			submitted_by_id, approved_by_id, rejection_reason,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		expense.OrganizationID,
		expense.ProjectID,
		expense.BudgetCategoryID,
		expense.VendorID,
		expense.Description,
		int64(expense.AmountCents),
		expense.Date,
		string(expense.Status),
		expense.SubmittedByID,
		expense.ApprovedByID,
		expense.RejectionReason,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense",
			zap.Int64("project_id", expense.ProjectID),
			zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	expense.ID = id
	return nil
}

// GetByID retrieves an expense by ID within the organization
func (r *ExpenseRepository) GetByID(ctx context.Context, orgID, id int64) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE organization_id = ? AND id = ?`

	expense, err := scanExpense(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get expense",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// Update rewrites the mutable expense columns
func (r *ExpenseRepository) Update(ctx context.Context, expense *entity.Expense) error {
	query := `
		UPDATE expenses
		SET budget_category_id = ?, vendor_id = ?, description = ?,
			amount_cents = ?, expense_date = ?, status = ?,
			approved_by_id = ?, rejection_reason = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		expense.BudgetCategoryID,
		expense.VendorID,
		expense.Description,
		int64(expense.AmountCents),
		expense.Date,
		string(expense.Status),
		expense.ApprovedByID,
		expense.RejectionReason,
		expense.UpdatedAt,
		expense.OrganizationID,
		expense.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense",
			zap.Int64("id", expense.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// ListByProject returns all of a project's expenses
func (r *ExpenseRepository) ListByProject(ctx context.Context, orgID, projectID int64) ([]*entity.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE organization_id = ? AND project_id = ?
		ORDER BY expense_date, id
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, orgID, projectID)
	if err != nil {
		r.logger.Error("Failed to list expenses by project",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListPlanned returns SUBMITTED and APPROVED expenses dated inside the
// window. These are committed-but-unpaid costs, the outflow side of
// the cash-flow forecast.
func (r *ExpenseRepository) ListPlanned(ctx context.Context, orgID int64, from, to time.Time) ([]*entity.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE organization_id = ?
			AND status IN ('SUBMITTED', 'APPROVED')
			AND expense_date >= ? AND expense_date < ?
		ORDER BY expense_date, id
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, orgID, from, to)
	if err != nil {
		r.logger.Error("Failed to list planned expenses",
			zap.Int64("organization_id", orgID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list planned expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// CountByCategory counts expenses linked to a budget category
func (r *ExpenseRepository) CountByCategory(ctx context.Context, orgID, categoryID int64) (int, error) {
	var count int
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE organization_id = ? AND budget_category_id = ?`,
		orgID, categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses by category: %w", err)
	}
	return count, nil
}

func scanExpense(row scanner) (*entity.Expense, error) {
	var expense entity.Expense
	var status string
	var categoryID, vendorID, approvedByID sql.NullInt64
	var amount int64

	err := row.Scan(
		&expense.ID,
		&expense.OrganizationID,
		&expense.ProjectID,
		&categoryID,
		&vendorID,
		&expense.Description,
		&amount,
		&expense.Date,
		&status,
		&expense.SubmittedByID,
		&approvedByID,
		&expense.RejectionReason,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	expense.AmountCents = money.Cents(amount)
	expense.Status = entity.ExpenseStatus(status)
	if categoryID.Valid {
		expense.BudgetCategoryID = &categoryID.Int64
	}
	if vendorID.Valid {
		expense.VendorID = &vendorID.Int64
	}
	if approvedByID.Valid {
		expense.ApprovedByID = &approvedByID.Int64
	}
	return &expense, nil
}

func scanExpenses(rows *sql.Rows) ([]*entity.Expense, error) {
	var expenses []*entity.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Verify interface compliance
var _ port.ExpenseRepository = (*ExpenseRepository)(nil)
