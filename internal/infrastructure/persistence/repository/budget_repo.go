package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
)

// BudgetRepository implements port.BudgetRepository. Category spend is
// never stored: reads derive it from APPROVED and REIMBURSED expenses
// with a join, so rollups cannot drift from the expense ledger.
type BudgetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *sql.DB, logger *zap.Logger) port.BudgetRepository {
	return &BudgetRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a budget and its initial categories
func (r *BudgetRepository) Create(ctx context.Context, budget *entity.Budget) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		INSERT INTO budgets (organization_id, project_id, total_amount_cents, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`,
		budget.OrganizationID,
		budget.ProjectID,
		int64(budget.TotalAmountCents),
	)
	if err != nil {
		r.logger.Error("Failed to create budget",
			zap.Int64("project_id", budget.ProjectID),
			zap.Error(err))
		return fmt.Errorf("failed to create budget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	budget.ID = id

	for i := range budget.Categories {
		budget.Categories[i].BudgetID = id
		if err := r.CreateCategory(ctx, budget.OrganizationID, &budget.Categories[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByProjectID returns the project's budget with categories and
// their derived spend hydrated
func (r *BudgetRepository) GetByProjectID(ctx context.Context, orgID, projectID int64) (*entity.Budget, error) {
	var budget entity.Budget
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, organization_id, project_id, total_amount_cents
		FROM budgets
		WHERE organization_id = ? AND project_id = ?
	`, orgID, projectID).Scan(
		&budget.ID,
		&budget.OrganizationID,
		&budget.ProjectID,
		&budget.TotalAmountCents,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get budget",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, `
		SELECT c.id, c.budget_id, c.name, c.allocated_cents,
			COALESCE(SUM(CASE WHEN e.status IN ('APPROVED', 'REIMBURSED') THEN e.amount_cents ELSE 0 END), 0)
		FROM budget_categories c
		LEFT JOIN expenses e ON e.budget_category_id = c.id
		WHERE c.budget_id = ?
		GROUP BY c.id, c.budget_id, c.name, c.allocated_cents
		ORDER BY c.id
	`, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c entity.BudgetCategory
		err := rows.Scan(&c.ID, &c.BudgetID, &c.Name, &c.AllocatedCents, &c.SpentCents)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget category: %w", err)
		}
		budget.Categories = append(budget.Categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &budget, nil
}

// CreateCategory inserts one budget line
func (r *BudgetRepository) CreateCategory(ctx context.Context, orgID int64, category *entity.BudgetCategory) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		INSERT INTO budget_categories (budget_id, name, allocated_cents)
		SELECT id, ?, ? FROM budgets WHERE id = ? AND organization_id = ?
	`,
		category.Name,
		int64(category.AllocatedCents),
		category.BudgetID,
		orgID,
	)
	if err != nil {
		r.logger.Error("Failed to create budget category",
			zap.Int64("budget_id", category.BudgetID),
			zap.Error(err))
		return fmt.Errorf("failed to create budget category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	category.ID = id
	return nil
}

// UpdateCategory renames or reallocates a budget line
func (r *BudgetRepository) UpdateCategory(ctx context.Context, orgID int64, category *entity.BudgetCategory) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		UPDATE budget_categories
		SET name = ?, allocated_cents = ?
		WHERE id = ?
			AND budget_id IN (SELECT id FROM budgets WHERE organization_id = ?)
	`,
		category.Name,
		int64(category.AllocatedCents),
		category.ID,
		orgID,
	)
	if err != nil {
		r.logger.Error("Failed to update budget category",
			zap.Int64("id", category.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update budget category: %w", err)
	}
	return nil
}

// DeleteCategory removes a budget line. The service layer has already
// verified no expenses reference it.
func (r *BudgetRepository) DeleteCategory(ctx context.Context, orgID, categoryID int64) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, `
		DELETE FROM budget_categories
		WHERE id = ?
			AND budget_id IN (SELECT id FROM budgets WHERE organization_id = ?)
	`, categoryID, orgID)
	if err != nil {
		r.logger.Error("Failed to delete budget category",
			zap.Int64("id", categoryID),
			zap.Error(err))
		return fmt.Errorf("failed to delete budget category: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.BudgetRepository = (*BudgetRepository)(nil)
