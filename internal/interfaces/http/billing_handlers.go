package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/domain/report"
)

// LineItemRequest is one invoice line in create and update payloads.
// Quantity is in thousandths: 1500 means 1.5 units.
type LineItemRequest struct {
	Description         string `json:"description"`
	QuantityThousandths int64  `json:"quantity_thousandths" binding:"required,gt=0"`
	UnitPriceCents      int64  `json:"unit_price_cents" binding:"min=0"`
}

// CreateInvoiceRequest is the POST /invoices payload. A nil tax rate
// takes the configured default.
type CreateInvoiceRequest struct {
	ProjectID          int64             `json:"project_id" binding:"required"`
	Number             string            `json:"number"`
	IssueDate          time.Time         `json:"issue_date" binding:"required"`
	DueDate            time.Time         `json:"due_date" binding:"required"`
	TaxRateBasisPoints *int64            `json:"tax_rate_basis_points" binding:"omitempty,basispoints"`
	Notes              string            `json:"notes"`
	LineItems          []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

// CreateInvoice handles POST /api/v1/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	taxRate := h.defaultTaxRate
	if req.TaxRateBasisPoints != nil {
		taxRate = *req.TaxRateBasisPoints
	}
	invoice := &entity.Invoice{
		ProjectID:          req.ProjectID,
		Number:             req.Number,
		IssueDate:          req.IssueDate,
		DueDate:            req.DueDate,
		TaxRateBasisPoints: money.BasisPoints(taxRate),
		Notes:              req.Notes,
		LineItems:          toLineItems(req.LineItems),
	}
	if err := h.services.Invoices.Create(c.Request.Context(), actorFrom(c), invoice); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: invoice})
}

// GetInvoice handles GET /api/v1/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.services.Invoices.Get(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: invoice})
}

// UpdateLineItemsRequest is the PUT /invoices/:id/line-items payload
type UpdateLineItemsRequest struct {
	TaxRateBasisPoints int64             `json:"tax_rate_basis_points" binding:"basispoints"`
	LineItems          []LineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

// UpdateInvoiceLineItems handles PUT /api/v1/invoices/:id/line-items
func (h *Handlers) UpdateInvoiceLineItems(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateLineItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	invoice, err := h.services.Invoices.UpdateLineItems(
		c.Request.Context(), actorFrom(c), id,
		toLineItems(req.LineItems), money.BasisPoints(req.TaxRateBasisPoints),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: invoice})
}

// SendInvoice handles POST /api/v1/invoices/:id/send
func (h *Handlers) SendInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.services.Invoices.Send(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: invoice})
}

// MarkInvoiceViewed handles POST /api/v1/invoices/:id/viewed
func (h *Handlers) MarkInvoiceViewed(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	invoice, err := h.services.Invoices.MarkViewed(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: invoice})
}

// WriteOffRequest is the POST /invoices/:id/write-off payload
type WriteOffRequest struct {
	Reason string `json:"reason"`
}

// WriteOffInvoice handles POST /api/v1/invoices/:id/write-off
func (h *Handlers) WriteOffInvoice(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req WriteOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	invoice, err := h.services.Invoices.WriteOff(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: invoice})
}

// RecordPaymentRequest is the POST /invoices/:id/payments payload
type RecordPaymentRequest struct {
	AmountCents int64     `json:"amount_cents" binding:"required,gt=0"`
	PaymentDate time.Time `json:"payment_date" binding:"required"`
	Method      string    `json:"method" binding:"omitempty,oneof=BANK_TRANSFER CASH CARD CHECK OTHER"`
	Reference   string    `json:"reference"`
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
func (h *Handlers) RecordPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	payment := &entity.Payment{
		AmountCents: money.Cents(req.AmountCents),
		PaymentDate: req.PaymentDate,
		Method:      entity.PaymentMethod(req.Method),
		Reference:   req.Reference,
	}
	invoice, err := h.services.Invoices.RecordPayment(c.Request.Context(), actorFrom(c), id, payment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"invoice": invoice,
		"payment": payment,
	}})
}

// AgingReport handles GET /api/v1/reports/aging
func (h *Handlers) AgingReport(c *gin.Context) {
	rep, err := h.services.Reports.Aging(c.Request.Context(), actorFrom(c), time.Now().UTC())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rep})
}

// CashFlowQuery is the GET /reports/cash-flow query string
type CashFlowQuery struct {
	StartingBalanceCents int64 `form:"starting_balance_cents"`
	Weeks                int   `form:"weeks,default=12"`
}

// CashFlowForecast handles GET /api/v1/reports/cash-flow
func (h *Handlers) CashFlowForecast(c *gin.Context) {
	var q CashFlowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	forecast, err := h.services.Reports.CashFlowForecast(
		c.Request.Context(), actorFrom(c),
		money.Cents(q.StartingBalanceCents), q.Weeks, time.Now().UTC(),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: forecast})
}

// ProjectProfitability handles GET /api/v1/reports/projects/:id/profitability
func (h *Handlers) ProjectProfitability(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rep, err := h.services.Reports.ProjectProfitability(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rep})
}

// ProfitLossQuery is the GET /reports/profit-loss query string
type ProfitLossQuery struct {
	Basis    string    `form:"basis,default=ACCRUAL" binding:"oneof=ACCRUAL CASH"`
	From     time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To       time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	Page     int       `form:"page,default=1"`
	PageSize int       `form:"page_size,default=25"`
}

// ProfitAndLoss handles GET /api/v1/reports/profit-loss
func (h *Handlers) ProfitAndLoss(c *gin.Context) {
	var q ProfitLossQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	stmt, err := h.services.Reports.ProfitAndLoss(
		c.Request.Context(), actorFrom(c),
		report.Basis(q.Basis), q.From, q.To, q.Page, q.PageSize,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: stmt})
}

// ExportAging handles POST /api/v1/reports/aging/export
func (h *Handlers) ExportAging(c *gin.Context) {
	actor := actorFrom(c)
	rep, err := h.services.Reports.Aging(c.Request.Context(), actor, time.Now().UTC())
	if err != nil {
		h.respondError(c, err)
		return
	}
	path, err := h.services.Exporter.WriteAging(rep, actor.OrganizationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"file": path}})
}

// ExportProfitAndLoss handles POST /api/v1/reports/profit-loss/export
func (h *Handlers) ExportProfitAndLoss(c *gin.Context) {
	var q ProfitLossQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.respondBadRequest(c, err)
		return
	}

	actor := actorFrom(c)
	stmt, err := h.services.Reports.ProfitAndLoss(
		c.Request.Context(), actor,
		report.Basis(q.Basis), q.From, q.To, q.Page, q.PageSize,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}
	path, err := h.services.Exporter.WriteProfitAndLoss(stmt, actor.OrganizationID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"file": path}})
}

func toLineItems(reqs []LineItemRequest) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(reqs))
	for _, li := range reqs {
		items = append(items, entity.LineItem{
			Description:         li.Description,
			QuantityThousandths: li.QuantityThousandths,
			UnitPriceCents:      money.Cents(li.UnitPriceCents),
		})
	}
	return items
}
