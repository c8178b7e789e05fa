package service

import (
	"context"
	"strings"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/event"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

// BudgetService manages project budgets and their category rollups.
type BudgetService interface {
	Create(ctx context.Context, actor entity.Actor, budget *entity.Budget) error
	GetByProject(ctx context.Context, actor entity.Actor, projectID int64) (*entity.Budget, error)
	AddCategory(ctx context.Context, actor entity.Actor, category *entity.BudgetCategory) error
	UpdateCategory(ctx context.Context, actor entity.Actor, category *entity.BudgetCategory) error
	DeleteCategory(ctx context.Context, actor entity.Actor, categoryID int64) error
}

type budgetServiceImpl struct {
	budgetRepo  port.BudgetRepository
	expenseRepo port.ExpenseRepository
	txManager   port.TransactionManager
	auditSink   port.AuditSink
	logger      Logger
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(
	budgetRepo port.BudgetRepository,
	expenseRepo port.ExpenseRepository,
	txManager port.TransactionManager,
	auditSink port.AuditSink,
	logger Logger,
) BudgetService {
	return &budgetServiceImpl{
		budgetRepo:  budgetRepo,
		expenseRepo: expenseRepo,
		txManager:   txManager,
		auditSink:   auditSink,
		logger:      logger,
	}
}

// Create persists a project budget.
func (s *budgetServiceImpl) Create(ctx context.Context, actor entity.Actor, budget *entity.Budget) error {
	if !actor.Role.AtLeast(entity.RoleManager) {
		return fault.PermissionDenied("create budgets", actor.Role.String())
	}
	if budget.TotalAmountCents < 0 {
		return fault.Validation("total_amount_cents", "budget total cannot be negative")
	}
	budget.OrganizationID = actor.OrganizationID
	return s.budgetRepo.Create(ctx, budget)
}

// GetByProject returns the project's budget with categories hydrated:
// spent is derived from APPROVED and REIMBURSED expenses at read time.
func (s *budgetServiceImpl) GetByProject(ctx context.Context, actor entity.Actor, projectID int64) (*entity.Budget, error) {
	budget, err := s.budgetRepo.GetByProjectID(ctx, actor.OrganizationID, projectID)
	if err != nil {
		return nil, err
	}
	if budget == nil {
		return nil, fault.NotFound("budget", projectID)
	}
	return budget, nil
}

// AddCategory adds a budget line.
func (s *budgetServiceImpl) AddCategory(ctx context.Context, actor entity.Actor, category *entity.BudgetCategory) error {
	if err := s.validateCategory(actor, category); err != nil {
		return err
	}
	if err := s.budgetRepo.CreateCategory(ctx, actor.OrganizationID, category); err != nil {
		return err
	}
	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeBudgetCategoryChanged, "budget_category", category.ID,
		actor.OrganizationID, actor.UserID, nil, category,
	))
	return nil
}

// UpdateCategory renames or reallocates a budget line.
func (s *budgetServiceImpl) UpdateCategory(ctx context.Context, actor entity.Actor, category *entity.BudgetCategory) error {
	if err := s.validateCategory(actor, category); err != nil {
		return err
	}
	if err := s.budgetRepo.UpdateCategory(ctx, actor.OrganizationID, category); err != nil {
		return err
	}
	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeBudgetCategoryChanged, "budget_category", category.ID,
		actor.OrganizationID, actor.UserID, nil, category,
	))
	return nil
}

// DeleteCategory removes a budget line. A category with linked
// expenses cannot be deleted: that would silently orphan the expense
// totals the rollup is built from.
func (s *budgetServiceImpl) DeleteCategory(ctx context.Context, actor entity.Actor, categoryID int64) error {
	if !actor.Role.AtLeast(entity.RoleManager) {
		return fault.PermissionDenied("delete budget categories", actor.Role.String())
	}

	linked, err := s.expenseRepo.CountByCategory(ctx, actor.OrganizationID, categoryID)
	if err != nil {
		return err
	}
	if linked > 0 {
		return fault.Validation("category_id", "category has linked expenses; reassign them first")
	}

	if err := s.budgetRepo.DeleteCategory(ctx, actor.OrganizationID, categoryID); err != nil {
		return err
	}
	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeBudgetCategoryChanged, "budget_category", categoryID,
		actor.OrganizationID, actor.UserID, nil, nil,
	))
	return nil
}

func (s *budgetServiceImpl) validateCategory(actor entity.Actor, category *entity.BudgetCategory) error {
	if !actor.Role.AtLeast(entity.RoleManager) {
		return fault.PermissionDenied("manage budget categories", actor.Role.String())
	}
	if strings.TrimSpace(category.Name) == "" {
		return fault.Validation("name", "category name is required")
	}
	if category.AllocatedCents < 0 {
		return fault.Validation("allocated_cents", "allocation cannot be negative")
	}
	return nil
}
