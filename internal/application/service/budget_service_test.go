package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

func newBudgetService(budgetRepo *mockBudgetRepo, expenseRepo *mockExpenseRepo, sink *mockAuditSink) BudgetService {
	return NewBudgetService(budgetRepo, expenseRepo, &mockTxManager{}, sink, noopLogger{})
}

func TestBudgetService_Create(t *testing.T) {
	var created *entity.Budget
	repo := &mockBudgetRepo{
		createFunc: func(ctx context.Context, budget *entity.Budget) error {
			created = budget
			return nil
		},
	}
	svc := newBudgetService(repo, &mockExpenseRepo{}, &mockAuditSink{})

	budget := &entity.Budget{ProjectID: 3, TotalAmountCents: 500000}
	require.NoError(t, svc.Create(context.Background(), managerActor(), budget))
	require.NotNil(t, created)
	assert.Equal(t, int64(10), created.OrganizationID)

	err := svc.Create(context.Background(), managerActor(), &entity.Budget{TotalAmountCents: -1})
	assert.True(t, errors.Is(err, fault.ErrValidation))
}

func TestBudgetService_AddCategory(t *testing.T) {
	sink := &mockAuditSink{}
	svc := newBudgetService(&mockBudgetRepo{}, &mockExpenseRepo{}, sink)

	category := &entity.BudgetCategory{BudgetID: 1, Name: "Materials", AllocatedCents: 100000}
	require.NoError(t, svc.AddCategory(context.Background(), managerActor(), category))
	assert.Len(t, sink.events, 1)

	t.Run("blank name", func(t *testing.T) {
		err := svc.AddCategory(context.Background(), managerActor(), &entity.BudgetCategory{Name: " "})
		assert.True(t, errors.Is(err, fault.ErrValidation))
	})

	t.Run("negative allocation", func(t *testing.T) {
		err := svc.AddCategory(context.Background(), managerActor(), &entity.BudgetCategory{Name: "x", AllocatedCents: -5})
		assert.True(t, errors.Is(err, fault.ErrValidation))
	})

	t.Run("finance role denied", func(t *testing.T) {
		finance := entity.Actor{UserID: 7, OrganizationID: 10, Role: entity.RoleFinance}
		err := svc.AddCategory(context.Background(), finance, &entity.BudgetCategory{Name: "x"})
		assert.True(t, errors.Is(err, fault.ErrPermissionDenied))
	})
}

func TestBudgetService_DeleteCategory_LinkedExpensesRejected(t *testing.T) {
	expenseRepo := &mockExpenseRepo{
		countByCategoryFunc: func(ctx context.Context, orgID, categoryID int64) (int, error) {
			return 2, nil
		},
	}
	var deleted bool
	budgetRepo := &mockBudgetRepo{
		deleteCategoryFunc: func(ctx context.Context, orgID, categoryID int64) error {
			deleted = true
			return nil
		},
	}
	svc := newBudgetService(budgetRepo, expenseRepo, &mockAuditSink{})

	err := svc.DeleteCategory(context.Background(), managerActor(), 4)
	assert.True(t, errors.Is(err, fault.ErrValidation))
	assert.ErrorContains(t, err, "linked expenses")
	assert.False(t, deleted)
}

func TestBudgetService_DeleteCategory_Unlinked(t *testing.T) {
	sink := &mockAuditSink{}
	svc := newBudgetService(&mockBudgetRepo{}, &mockExpenseRepo{}, sink)

	require.NoError(t, svc.DeleteCategory(context.Background(), managerActor(), 4))
	require.Len(t, sink.events, 1)
	assert.Equal(t, "budget.category_changed", sink.events[0].Type.String())
}

func TestBudgetService_GetByProject_NotFound(t *testing.T) {
	svc := newBudgetService(&mockBudgetRepo{}, &mockExpenseRepo{}, &mockAuditSink{})

	_, err := svc.GetByProject(context.Background(), managerActor(), 3)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}
