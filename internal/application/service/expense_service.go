package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/event"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/workflow"
)

// MaxBatchSize caps bulk expense operations to bound transaction cost.
const MaxBatchSize = 50

// BatchItemError reports why one item of a bulk operation failed.
type BatchItemError struct {
	ExpenseID int64  `json:"expense_id"`
	Message   string `json:"message"`
}

// BatchResult aggregates the per-item outcomes of a bulk operation.
// Items fail independently; the batch never aborts on first error.
type BatchResult struct {
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
	Errors    []BatchItemError `json:"errors,omitempty"`
}

// ExpenseService manages the expense approval lifecycle.
type ExpenseService interface {
	Create(ctx context.Context, actor entity.Actor, expense *entity.Expense) error
	Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error)
	Submit(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error)
	Approve(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error)
	Reject(ctx context.Context, actor entity.Actor, id int64, reason string) (*entity.Expense, error)
	Reimburse(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error)
	BulkApprove(ctx context.Context, actor entity.Actor, ids []int64) (*BatchResult, error)
}

type expenseServiceImpl struct {
	expenseRepo port.ExpenseRepository
	txManager   port.TransactionManager
	auditSink   port.AuditSink
	notifier    port.Notifier
	logger      Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	txManager port.TransactionManager,
	auditSink port.AuditSink,
	notifier port.Notifier,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo: expenseRepo,
		txManager:   txManager,
		auditSink:   auditSink,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create persists a new DRAFT expense owned by the actor.
func (s *expenseServiceImpl) Create(ctx context.Context, actor entity.Actor, expense *entity.Expense) error {
	if expense.AmountCents <= 0 {
		return fault.Validation("amount_cents", "amount must be positive")
	}
	if strings.TrimSpace(expense.Description) == "" {
		return fault.Validation("description", "description is required")
	}

	now := time.Now().UTC()
	expense.OrganizationID = actor.OrganizationID
	expense.Status = entity.ExpenseDraft
	expense.SubmittedByID = actor.UserID
	expense.CreatedAt = now
	expense.UpdatedAt = now

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		s.logger.Error("failed to create expense", "error", err, "org_id", actor.OrganizationID)
		return err
	}
	return nil
}

// Get retrieves an expense within the actor's organization.
func (s *expenseServiceImpl) Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fault.NotFound("expense", id)
	}
	return expense, nil
}

// Submit moves a DRAFT expense into review. Only the owner submits.
func (s *expenseServiceImpl) Submit(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error) {
	expense, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if expense.SubmittedByID != actor.UserID {
		return nil, fault.PermissionDenied("submit another user's expense", actor.Role.String())
	}
	if err := workflow.ValidateExpenseTransition(expense.Status, entity.ExpenseSubmitted); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, expense, entity.ExpenseSubmitted, event.TypeExpenseSubmitted, func(e *entity.Expense) {})
}

// Approve moves a SUBMITTED expense to APPROVED. The actor needs at
// least FINANCE and must not be the submitter.
func (s *expenseServiceImpl) Approve(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error) {
	expense, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateApproval(expense, actor); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, expense, entity.ExpenseApproved, event.TypeExpenseApproved, func(e *entity.Expense) {
		e.ApprovedByID = &actor.UserID
	})
}

// Reject moves a SUBMITTED expense to REJECTED, persisting the reason.
func (s *expenseServiceImpl) Reject(ctx context.Context, actor entity.Actor, id int64, reason string) (*entity.Expense, error) {
	expense, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateRejection(expense, actor, reason); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, expense, entity.ExpenseRejected, event.TypeExpenseRejected, func(e *entity.Expense) {
		e.RejectionReason = reason
	})
}

// Reimburse marks an APPROVED expense as paid out. Terminal.
func (s *expenseServiceImpl) Reimburse(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error) {
	expense, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return nil, fault.PermissionDenied("reimburse expenses", actor.Role.String())
	}
	if err := workflow.ValidateExpenseTransition(expense.Status, entity.ExpenseReimbursed); err != nil {
		return nil, err
	}

	return s.transition(ctx, actor, expense, entity.ExpenseReimbursed, event.TypeExpenseReimbursed, func(e *entity.Expense) {})
}

// BulkApprove evaluates each expense independently against the
// approval rules. Partial failure is expected: the result reports
// per-item errors and the batch never aborts mid-way. Batches over
// MaxBatchSize fail fast before touching any row. Affected projects
// are notified once each, however many of their expenses were in the
// batch.
func (s *expenseServiceImpl) BulkApprove(ctx context.Context, actor entity.Actor, ids []int64) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, fault.Validation("expense_ids", "no expenses selected")
	}
	if len(ids) > MaxBatchSize {
		return nil, fault.BatchSizeExceeded(len(ids), MaxBatchSize)
	}

	correlationID := uuid.NewString()
	result := &BatchResult{}
	touchedProjects := make(map[int64]bool)

	for _, id := range ids {
		expense, err := s.expenseRepo.GetByID(ctx, actor.OrganizationID, id)
		if err == nil && expense == nil {
			err = fault.NotFound("expense", id)
		}
		if err == nil {
			err = workflow.ValidateApproval(expense, actor)
		}
		if err == nil {
			err = s.applyTransition(ctx, actor, expense, entity.ExpenseApproved, func(e *entity.Expense) {
				e.ApprovedByID = &actor.UserID
			})
		}

		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, BatchItemError{ExpenseID: id, Message: err.Error()})
			continue
		}

		result.Processed++
		touchedProjects[expense.ProjectID] = true
		recordAudit(ctx, s.auditSink, s.logger, event.New(
			event.TypeExpenseApproved, "expense", expense.ID,
			actor.OrganizationID, actor.UserID, nil, expense,
		).WithCorrelation(correlationID))
	}

	if len(touchedProjects) > 0 {
		projectIDs := make([]int64, 0, len(touchedProjects))
		for pid := range touchedProjects {
			projectIDs = append(projectIDs, pid)
		}
		s.notifier.ProjectsChanged(ctx, actor.OrganizationID, projectIDs)
	}

	s.logger.Info("bulk approval finished",
		"org_id", actor.OrganizationID,
		"processed", result.Processed,
		"failed", result.Failed,
	)
	return result, nil
}

// transition applies a single-expense status change with audit event
// and per-project notification.
func (s *expenseServiceImpl) transition(
	ctx context.Context,
	actor entity.Actor,
	expense *entity.Expense,
	to entity.ExpenseStatus,
	eventType event.Type,
	mutate func(*entity.Expense),
) (*entity.Expense, error) {
	before := *expense
	if err := s.applyTransition(ctx, actor, expense, to, mutate); err != nil {
		s.logger.Error("failed to transition expense",
			"error", err, "expense_id", expense.ID, "to", to.String())
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		eventType, "expense", expense.ID,
		actor.OrganizationID, actor.UserID, before, expense,
	))
	s.notifier.ProjectsChanged(ctx, actor.OrganizationID, []int64{expense.ProjectID})
	return expense, nil
}

// applyTransition persists the status change inside a transaction.
func (s *expenseServiceImpl) applyTransition(
	ctx context.Context,
	actor entity.Actor,
	expense *entity.Expense,
	to entity.ExpenseStatus,
	mutate func(*entity.Expense),
) error {
	expense.Status = to
	expense.UpdatedAt = time.Now().UTC()
	mutate(expense)

	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.expenseRepo.Update(txCtx, expense)
	})
}
