package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	services       Services
	defaultTaxRate int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, defaultTaxRate int64, logger Logger) *Handlers {
	return &Handlers{
		services:       services,
		defaultTaxRate: defaultTaxRate,
		logger:         logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// respondError maps domain errors onto HTTP statuses.
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, fault.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, fault.ErrValidation),
		errors.Is(err, fault.ErrBatchSizeExceeded):
		status = http.StatusBadRequest
	case errors.Is(err, fault.ErrPermissionDenied),
		errors.Is(err, fault.ErrSelfApprovalForbidden):
		status = http.StatusForbidden
	case errors.Is(err, fault.ErrInvalidTransition),
		errors.Is(err, fault.ErrConcurrencyConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func (h *Handlers) respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

type pageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (q *pageQuery) normalize() {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

// CreateProjectRequest is the POST /projects payload
type CreateProjectRequest struct {
	Name       string     `json:"name" binding:"required"`
	ClientName string     `json:"client_name"`
	Type       string     `json:"type" binding:"required,oneof=INTERIOR_DESIGN EVENT EXHIBITION OTHER"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
}

// CreateProject handles POST /api/v1/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	project := &entity.Project{
		Name:       req.Name,
		ClientName: req.ClientName,
		Type:       entity.ProjectType(req.Type),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	if err := h.services.Projects.Create(c.Request.Context(), actorFrom(c), project); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: project})
}

// ListProjects handles GET /api/v1/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondBadRequest(c, err)
		return
	}
	q.normalize()

	projects, err := h.services.Projects.List(c.Request.Context(), actorFrom(c), q.Limit, q.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: projects})
}

// GetProject handles GET /api/v1/projects/:id
func (h *Handlers) GetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	project, err := h.services.Projects.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if project == nil {
		h.respondError(c, fault.NotFound("project", id))
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: project})
}

// ChangeProjectStatusRequest is the POST /projects/:id/status payload
type ChangeProjectStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ACTIVE ON_HOLD COMPLETED ARCHIVED"`
}

// ChangeProjectStatus handles POST /api/v1/projects/:id/status
func (h *Handlers) ChangeProjectStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ChangeProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	project, err := h.services.Projects.ChangeStatus(c.Request.Context(), actorFrom(c), id, entity.ProjectStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: project})
}

// CreateBudgetRequest is the POST /projects/:id/budget payload
type CreateBudgetRequest struct {
	TotalAmountCents int64 `json:"total_amount_cents" binding:"min=0"`
	Categories       []struct {
		Name           string `json:"name" binding:"required"`
		AllocatedCents int64  `json:"allocated_cents" binding:"min=0"`
	} `json:"categories"`
}

// CreateBudget handles POST /api/v1/projects/:id/budget
func (h *Handlers) CreateBudget(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}
	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	budget := &entity.Budget{
		ProjectID:        projectID,
		TotalAmountCents: money.Cents(req.TotalAmountCents),
	}
	for _, cat := range req.Categories {
		budget.Categories = append(budget.Categories, entity.BudgetCategory{
			Name:           cat.Name,
			AllocatedCents: money.Cents(cat.AllocatedCents),
		})
	}

	if err := h.services.Budgets.Create(c.Request.Context(), actorFrom(c), budget); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: budget})
}

// GetBudget handles GET /api/v1/projects/:id/budget
func (h *Handlers) GetBudget(c *gin.Context) {
	projectID, ok := pathID(c)
	if !ok {
		return
	}
	budget, err := h.services.Budgets.GetByProject(c.Request.Context(), actorFrom(c), projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: budget})
}

// BudgetCategoryRequest is the payload for category create and update
type BudgetCategoryRequest struct {
	BudgetID       int64  `json:"budget_id" binding:"required"`
	Name           string `json:"name" binding:"required"`
	AllocatedCents int64  `json:"allocated_cents" binding:"min=0"`
}

// AddBudgetCategory handles POST /api/v1/budget-categories
func (h *Handlers) AddBudgetCategory(c *gin.Context) {
	var req BudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	category := &entity.BudgetCategory{
		BudgetID:       req.BudgetID,
		Name:           req.Name,
		AllocatedCents: money.Cents(req.AllocatedCents),
	}
	if err := h.services.Budgets.AddCategory(c.Request.Context(), actorFrom(c), category); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: category})
}

// UpdateBudgetCategory handles PUT /api/v1/budget-categories/:id
func (h *Handlers) UpdateBudgetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req BudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	category := &entity.BudgetCategory{
		ID:             id,
		BudgetID:       req.BudgetID,
		Name:           req.Name,
		AllocatedCents: money.Cents(req.AllocatedCents),
	}
	if err := h.services.Budgets.UpdateCategory(c.Request.Context(), actorFrom(c), category); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: category})
}

// DeleteBudgetCategory handles DELETE /api/v1/budget-categories/:id
func (h *Handlers) DeleteBudgetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.services.Budgets.DeleteCategory(c.Request.Context(), actorFrom(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// CreateExpenseRequest is the POST /expenses payload
type CreateExpenseRequest struct {
	ProjectID        int64     `json:"project_id" binding:"required"`
	BudgetCategoryID *int64    `json:"budget_category_id"`
	VendorID         *int64    `json:"vendor_id"`
	Description      string    `json:"description" binding:"required"`
	AmountCents      int64     `json:"amount_cents" binding:"required,gt=0"`
	Date             time.Time `json:"date" binding:"required"`
}

// CreateExpense handles POST /api/v1/expenses
func (h *Handlers) CreateExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	expense := &entity.Expense{
		ProjectID:        req.ProjectID,
		BudgetCategoryID: req.BudgetCategoryID,
		VendorID:         req.VendorID,
		Description:      req.Description,
		AmountCents:      money.Cents(req.AmountCents),
		Date:             req.Date,
	}
	if err := h.services.Expenses.Create(c.Request.Context(), actorFrom(c), expense); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// GetExpense handles GET /api/v1/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	expense, err := h.services.Expenses.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// SubmitExpense handles POST /api/v1/expenses/:id/submit
func (h *Handlers) SubmitExpense(c *gin.Context) {
	h.expenseTransition(c, h.services.Expenses.Submit)
}

// ApproveExpense handles POST /api/v1/expenses/:id/approve
func (h *Handlers) ApproveExpense(c *gin.Context) {
	h.expenseTransition(c, h.services.Expenses.Approve)
}

// ReimburseExpense handles POST /api/v1/expenses/:id/reimburse
func (h *Handlers) ReimburseExpense(c *gin.Context) {
	h.expenseTransition(c, h.services.Expenses.Reimburse)
}

func (h *Handlers) expenseTransition(c *gin.Context, op func(ctx context.Context, actor entity.Actor, id int64) (*entity.Expense, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	expense, err := op(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// RejectExpenseRequest is the POST /expenses/:id/reject payload
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// RejectExpense handles POST /api/v1/expenses/:id/reject
func (h *Handlers) RejectExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RejectExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	expense, err := h.services.Expenses.Reject(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// BulkApproveRequest is the POST /expenses/bulk-approve payload
type BulkApproveRequest struct {
	ExpenseIDs []int64 `json:"expense_ids" binding:"required,min=1"`
}

// BulkApproveExpenses handles POST /api/v1/expenses/bulk-approve
func (h *Handlers) BulkApproveExpenses(c *gin.Context) {
	var req BulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	result, err := h.services.Expenses.BulkApprove(c.Request.Context(), actorFrom(c), req.ExpenseIDs)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

// VendorRequest is the payload for vendor create and update
type VendorRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}

// CreateVendor handles POST /api/v1/vendors
func (h *Handlers) CreateVendor(c *gin.Context) {
	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	vendor := &entity.Vendor{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       req.Notes,
	}
	if err := h.services.Vendors.Create(c.Request.Context(), actorFrom(c), vendor); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: vendor})
}

// ListVendors handles GET /api/v1/vendors
func (h *Handlers) ListVendors(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondBadRequest(c, err)
		return
	}
	q.normalize()

	vendors, err := h.services.Vendors.List(c.Request.Context(), actorFrom(c), q.Limit, q.Offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vendors})
}

// GetVendor handles GET /api/v1/vendors/:id
func (h *Handlers) GetVendor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	vendor, err := h.services.Vendors.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vendor})
}

// UpdateVendor handles PUT /api/v1/vendors/:id
func (h *Handlers) UpdateVendor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	vendor := &entity.Vendor{
		ID:          id,
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Notes:       req.Notes,
	}
	if err := h.services.Vendors.Update(c.Request.Context(), actorFrom(c), vendor); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: vendor})
}

// auditEntityTypes limits the audit endpoint to entities that emit events.
var auditEntityTypes = map[string]bool{
	"project":         true,
	"budget_category": true,
	"expense":         true,
	"invoice":         true,
	"payment":         true,
}

// AuditTrail handles GET /api/v1/audit/:entity_type/:id
func (h *Handlers) AuditTrail(c *gin.Context) {
	entityType := c.Param("entity_type")
	if !auditEntityTypes[entityType] {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid entity type"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid limit"})
		return
	}

	actor := actorFrom(c)
	events, err := h.services.Audit.ListByEntity(c.Request.Context(), actor.OrganizationID, entityType, id, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}
