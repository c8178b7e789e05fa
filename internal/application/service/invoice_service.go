package service

import (
	"context"
	"errors"
	"time"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/event"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/domain/money"
	"github.com/atelierhq/studiobooks/internal/domain/workflow"
)

// InvoiceService manages the invoice lifecycle and the payment-driven
// balance engine.
type InvoiceService interface {
	Create(ctx context.Context, actor entity.Actor, invoice *entity.Invoice) error
	Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Invoice, error)
	UpdateLineItems(ctx context.Context, actor entity.Actor, id int64, items []entity.LineItem, taxRate money.BasisPoints) (*entity.Invoice, error)
	Send(ctx context.Context, actor entity.Actor, id int64) (*entity.Invoice, error)
	MarkViewed(ctx context.Context, actor entity.Actor, id int64) (*entity.Invoice, error)
	RecordPayment(ctx context.Context, actor entity.Actor, invoiceID int64, payment *entity.Payment) (*entity.Invoice, error)
	WriteOff(ctx context.Context, actor entity.Actor, id int64, reason string) (*entity.Invoice, error)

	// SweepOverdue and ScanPaymentReminders back the scheduled-trigger
	// collaborator: both are idempotent and parameterless beyond "now".
	SweepOverdue(ctx context.Context, orgID int64, now time.Time) (int, error)
	ScanPaymentReminders(ctx context.Context, orgID int64, now time.Time, dueWithinDays int) error
}

type invoiceServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	paymentRepo port.PaymentRepository
	txManager   port.TransactionManager
	auditSink   port.AuditSink
	notifier    port.Notifier
	logger      Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	paymentRepo port.PaymentRepository,
	txManager port.TransactionManager,
	auditSink port.AuditSink,
	notifier port.Notifier,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		txManager:   txManager,
		auditSink:   auditSink,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create persists a new DRAFT invoice with all derived fields computed.
func (s *invoiceServiceImpl) Create(ctx context.Context, actor entity.Actor, invoice *entity.Invoice) error {
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return fault.PermissionDenied("create invoices", actor.Role.String())
	}
	if err := validateLineItems(invoice.LineItems); err != nil {
		return err
	}
	if !invoice.TaxRateBasisPoints.IsValid() {
		return fault.Validation("tax_rate_basis_points", "tax rate must be between 0 and 10000 basis points")
	}
	if invoice.DueDate.IsZero() {
		return fault.Validation("due_date", "due date is required")
	}

	now := time.Now().UTC()
	invoice.OrganizationID = actor.OrganizationID
	invoice.Status = entity.InvoiceDraft
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	invoice.Recalculate()

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		s.logger.Error("failed to create invoice", "error", err, "org_id", actor.OrganizationID)
		return err
	}
	return nil
}

// Get retrieves an invoice within the actor's organization, hydrated
// with line items and payments.
func (s *invoiceServiceImpl) Get(ctx context.Context, actor entity.Actor, id int64) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, fault.NotFound("invoice", id)
	}
	return invoice, nil
}

// UpdateLineItems replaces a DRAFT invoice's line items and tax rate,
// recomputing every derived field before persisting.
func (s *invoiceServiceImpl) UpdateLineItems(ctx context.Context, actor entity.Actor, id int64, items []entity.LineItem, taxRate money.BasisPoints) (*entity.Invoice, error) {
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return nil, fault.PermissionDenied("edit invoices", actor.Role.String())
	}
	invoice, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != entity.InvoiceDraft {
		return nil, fault.InvalidTransition("invoice", invoice.Status.String(), "line item change")
	}
	if err := validateLineItems(items); err != nil {
		return nil, err
	}
	if !taxRate.IsValid() {
		return nil, fault.Validation("tax_rate_basis_points", "tax rate must be between 0 and 10000 basis points")
	}

	before := *invoice
	invoice.LineItems = items
	invoice.TaxRateBasisPoints = taxRate
	invoice.UpdatedAt = time.Now().UTC()
	invoice.Recalculate()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.ReplaceLineItems(txCtx, invoice)
	})
	if err != nil {
		s.logger.Error("failed to update line items", "error", err, "invoice_id", id)
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeInvoiceLineItemsChanged, "invoice", id,
		actor.OrganizationID, actor.UserID, before, invoice,
	))
	return invoice, nil
}

// Send issues a DRAFT invoice: requires at least one line item and
// stamps sentAt.
func (s *invoiceServiceImpl) Send(ctx context.Context, actor entity.Actor, id int64) (*entity.Invoice, error) {
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return nil, fault.PermissionDenied("send invoices", actor.Role.String())
	}
	invoice, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateSend(invoice); err != nil {
		return nil, err
	}

	before := *invoice
	now := time.Now().UTC()
	invoice.Status = entity.InvoiceSent
	invoice.SentAt = &now
	invoice.UpdatedAt = now

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		s.logger.Error("failed to send invoice", "error", err, "invoice_id", id)
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeInvoiceSent, "invoice", id,
		actor.OrganizationID, actor.UserID, before, invoice,
	))
	return invoice, nil
}

// MarkViewed records that the client opened the invoice.
func (s *invoiceServiceImpl) MarkViewed(ctx context.Context, actor entity.Actor, id int64) (*entity.Invoice, error) {
	invoice, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	// Viewing again is a no-op, not an error.
	if invoice.Status == entity.InvoiceViewed {
		return invoice, nil
	}
	if err := workflow.ValidateInvoiceTransition(invoice.Status, entity.InvoiceViewed); err != nil {
		return nil, err
	}

	before := *invoice
	invoice.Status = entity.InvoiceViewed
	invoice.UpdatedAt = time.Now().UTC()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeInvoiceViewed, "invoice", id,
		actor.OrganizationID, actor.UserID, before, invoice,
	))
	return invoice, nil
}

// RecordPayment creates a payment and recomputes the invoice balance
// and status as one atomic unit. Concurrent payments against the same
// invoice serialize through the optimistic version check; a conflict
// is retried once with a re-read before surfacing to the caller.
//
// Overpayment is rejected: a payment larger than the balance due fails
// validation rather than producing a credit or silently clamping.
func (s *invoiceServiceImpl) RecordPayment(ctx context.Context, actor entity.Actor, invoiceID int64, payment *entity.Payment) (*entity.Invoice, error) {
	if !actor.Role.AtLeast(entity.RoleFinance) {
		return nil, fault.PermissionDenied("record payments", actor.Role.String())
	}
	if payment.AmountCents <= 0 {
		return nil, fault.Validation("amount_cents", "payment amount must be positive")
	}
	if payment.PaymentDate.IsZero() {
		return nil, fault.Validation("payment_date", "payment date is required")
	}

	invoice, err := s.applyPayment(ctx, actor, invoiceID, payment)
	if errors.Is(err, fault.ErrConcurrencyConflict) {
		s.logger.Warn("payment hit concurrent invoice update, retrying",
			"invoice_id", invoiceID, "amount_cents", payment.AmountCents)
		invoice, err = s.applyPayment(ctx, actor, invoiceID, payment)
	}
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypePaymentRecorded, "payment", payment.ID,
		actor.OrganizationID, actor.UserID, nil, payment,
	))
	s.notifier.ProjectsChanged(ctx, actor.OrganizationID, []int64{invoice.ProjectID})

	s.logger.Info("payment recorded",
		"invoice_id", invoiceID,
		"amount_cents", payment.AmountCents,
		"balance_due_cents", invoice.BalanceDueCents,
		"status", invoice.Status.String(),
	)
	return invoice, nil
}

// applyPayment runs one attempt of the payment transaction against a
// fresh read of the invoice.
func (s *invoiceServiceImpl) applyPayment(ctx context.Context, actor entity.Actor, invoiceID int64, payment *entity.Payment) (*entity.Invoice, error) {
	invoice, err := s.Get(ctx, actor, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.IsOutstanding() {
		return nil, fault.InvalidTransition("invoice", invoice.Status.String(), "payment")
	}
	if payment.AmountCents > invoice.BalanceDueCents {
		return nil, fault.Validation("amount_cents", "payment exceeds balance due")
	}

	remaining := invoice.BalanceDueCents.Sub(payment.AmountCents)
	newStatus := workflow.PaymentResultStatus(int64(remaining))
	if newStatus != invoice.Status {
		if err := workflow.ValidateInvoiceTransition(invoice.Status, newStatus); err != nil {
			return nil, err
		}
	}

	payment.OrganizationID = actor.OrganizationID
	payment.InvoiceID = invoiceID
	payment.RecordedByID = actor.UserID
	payment.CreatedAt = time.Now().UTC()

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.paymentRepo.Create(txCtx, payment); err != nil {
			return err
		}
		return s.invoiceRepo.UpdateBalanceAndStatus(
			txCtx, actor.OrganizationID, invoiceID,
			int64(remaining), newStatus, invoice.Version,
		)
	})
	if err != nil {
		return nil, err
	}

	invoice.BalanceDueCents = remaining
	invoice.Status = newStatus
	invoice.Version++
	invoice.Payments = append(invoice.Payments, *payment)
	return invoice, nil
}

// WriteOff closes an invoice as bad debt: balance zeroed without a
// payment record, distinguishable from payment-based closure in the
// audit log.
func (s *invoiceServiceImpl) WriteOff(ctx context.Context, actor entity.Actor, id int64, reason string) (*entity.Invoice, error) {
	if !actor.Role.AtLeast(entity.RoleManager) {
		return nil, fault.PermissionDenied("write off invoices", actor.Role.String())
	}
	invoice, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := workflow.ValidateWriteOff(invoice); err != nil {
		return nil, err
	}

	before := *invoice
	now := time.Now().UTC()
	invoice.Status = entity.InvoiceWrittenOff
	invoice.WrittenOffAt = &now
	invoice.BalanceDueCents = 0
	invoice.UpdatedAt = now
	if reason != "" {
		invoice.Notes = reason
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		s.logger.Error("failed to write off invoice", "error", err, "invoice_id", id)
		return nil, err
	}

	recordAudit(ctx, s.auditSink, s.logger, event.New(
		event.TypeInvoiceWrittenOff, "invoice", id,
		actor.OrganizationID, actor.UserID, before, invoice,
	))
	return invoice, nil
}

// SweepOverdue marks outstanding invoices past their due date as
// OVERDUE. Idempotent: invoices already OVERDUE or fully settled are
// untouched, so the external scheduler may re-run it freely. Returns
// the number of invoices transitioned.
func (s *invoiceServiceImpl) SweepOverdue(ctx context.Context, orgID int64, now time.Time) (int, error) {
	outstanding, err := s.invoiceRepo.ListOutstanding(ctx, orgID)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, invoice := range outstanding {
		if invoice.Status == entity.InvoiceOverdue {
			continue
		}
		if !invoice.DueDate.Before(now) || invoice.BalanceDueCents <= 0 {
			continue
		}

		before := *invoice
		invoice.Status = entity.InvoiceOverdue
		invoice.UpdatedAt = now
		err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.invoiceRepo.UpdateBalanceAndStatus(
				txCtx, orgID, invoice.ID,
				int64(invoice.BalanceDueCents), entity.InvoiceOverdue, invoice.Version,
			)
		})
		if err != nil {
			// A conflicting payment may have settled it; skip rather
			// than fail the sweep.
			s.logger.Warn("sweep skipped invoice", "invoice_id", invoice.ID, "error", err)
			continue
		}

		swept++
		recordAudit(ctx, s.auditSink, s.logger, event.New(
			event.TypeInvoiceMarkedOverdue, "invoice", invoice.ID,
			orgID, 0, before, invoice,
		))
	}

	s.logger.Info("overdue sweep finished", "org_id", orgID, "swept", swept)
	return swept, nil
}

// ScanPaymentReminders collects outstanding invoices due within the
// window (or already overdue) and hands them to the notifier in one
// call per organization. Read-only.
func (s *invoiceServiceImpl) ScanPaymentReminders(ctx context.Context, orgID int64, now time.Time, dueWithinDays int) error {
	outstanding, err := s.invoiceRepo.ListOutstanding(ctx, orgID)
	if err != nil {
		return err
	}

	cutoff := now.AddDate(0, 0, dueWithinDays)
	var due []*entity.Invoice
	for _, invoice := range outstanding {
		if invoice.BalanceDueCents > 0 && invoice.DueDate.Before(cutoff) {
			due = append(due, invoice)
		}
	}
	if len(due) == 0 {
		return nil
	}

	if err := s.notifier.PaymentReminder(ctx, orgID, due); err != nil {
		s.logger.Error("payment reminder delivery failed", "org_id", orgID, "error", err)
		return err
	}
	s.logger.Info("payment reminders sent", "org_id", orgID, "invoices", len(due))
	return nil
}

// validateLineItems checks quantities and prices before any derivation.
func validateLineItems(items []entity.LineItem) error {
	for i := range items {
		if items[i].QuantityThousandths <= 0 {
			return fault.Validation("line_items.quantity", "quantity must be positive")
		}
		if items[i].UnitPriceCents < 0 {
			return fault.Validation("line_items.unit_price_cents", "unit price cannot be negative")
		}
	}
	return nil
}
