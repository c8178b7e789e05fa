package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
)

// InvoiceRepository implements port.InvoiceRepository. Every read
// returns invoices hydrated with line items and payments so callers
// always hold the full balance picture.
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

const invoiceColumns = `
	id, organization_id, project_id, number, status,
	issue_date, due_date, sent_at, written_off_at,
	subtotal_cents, tax_rate_basis_points, tax_amount_cents,
	total_cents, balance_due_cents, version, notes,
	created_at, updated_at
`

// Create inserts the invoice and its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (
			organization_id, project_id, number, status,
			issue_date, due_date, sent_at, written_off_at,
			subtotal_cents, tax_rate_basis_points, tax_amount_cents,
			total_cents, balance_due_cents, version, notes,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		invoice.OrganizationID,
		invoice.ProjectID,
		invoice.Number,
		string(invoice.Status),
		invoice.IssueDate,
		invoice.DueDate,
		invoice.SentAt,
		invoice.WrittenOffAt,
		int64(invoice.SubtotalCents),
		int64(invoice.TaxRateBasisPoints),
		int64(invoice.TaxAmountCents),
		int64(invoice.TotalCents),
		int64(invoice.BalanceDueCents),
		invoice.Version,
		invoice.Notes,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.Int64("project_id", invoice.ProjectID),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	invoice.ID = id

	if err := r.insertLineItems(ctx, invoice); err != nil {
		return err
	}
	return nil
}

// GetByID retrieves a hydrated invoice by ID within the organization
func (r *InvoiceRepository) GetByID(ctx context.Context, orgID, id int64) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE organization_id = ? AND id = ?`

	invoice, err := scanInvoice(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, orgID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if err := r.hydrate(ctx, []*entity.Invoice{invoice}); err != nil {
		return nil, err
	}
	return invoice, nil
}

// Update rewrites the invoice header row
func (r *InvoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET number = ?, status = ?, issue_date = ?, due_date = ?,
			sent_at = ?, written_off_at = ?,
			subtotal_cents = ?, tax_rate_basis_points = ?, tax_amount_cents = ?,
			total_cents = ?, balance_due_cents = ?, notes = ?, updated_at = ?
		WHERE organization_id = ? AND id = ?
	`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		invoice.Number,
		string(invoice.Status),
		invoice.IssueDate,
		invoice.DueDate,
		invoice.SentAt,
		invoice.WrittenOffAt,
		int64(invoice.SubtotalCents),
		int64(invoice.TaxRateBasisPoints),
		int64(invoice.TaxAmountCents),
		int64(invoice.TotalCents),
		int64(invoice.BalanceDueCents),
		invoice.Notes,
		invoice.UpdatedAt,
		invoice.OrganizationID,
		invoice.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update invoice",
			zap.Int64("id", invoice.ID),
			zap.Error(err))
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// ReplaceLineItems deletes and reinserts the line items, then rewrites
// the recomputed header. Callers run this inside a transaction.
func (r *InvoiceRepository) ReplaceLineItems(ctx context.Context, invoice *entity.Invoice) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`DELETE FROM invoice_line_items WHERE invoice_id = ?`, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to clear line items: %w", err)
	}
	if err := r.insertLineItems(ctx, invoice); err != nil {
		return err
	}
	return r.Update(ctx, invoice)
}

// ListByProject returns all of a project's invoices, hydrated
func (r *InvoiceRepository) ListByProject(ctx context.Context, orgID, projectID int64) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE organization_id = ? AND project_id = ?
		ORDER BY issue_date, id
	`
	return r.list(ctx, query, orgID, projectID)
}

// ListOutstanding returns the organization's invoices in a state where
// money is still owed: SENT, VIEWED, PARTIALLY_PAID or OVERDUE.
func (r *InvoiceRepository) ListOutstanding(ctx context.Context, orgID int64) ([]*entity.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE organization_id = ?
			AND status IN ('SENT', 'VIEWED', 'PARTIALLY_PAID', 'OVERDUE')
		ORDER BY due_date, id
	`
	return r.list(ctx, query, orgID)
}

// UpdateBalanceAndStatus applies the balance recomputation guarded by
// the optimistic version check. Zero rows affected means another
// writer got there first.
func (r *InvoiceRepository) UpdateBalanceAndStatus(ctx context.Context, orgID, id int64, balance int64, status entity.InvoiceStatus, expectedVersion int64) error {
	query := `
		UPDATE invoices
		SET balance_due_cents = ?, status = ?, version = version + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE organization_id = ? AND id = ? AND version = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		balance, string(status), orgID, id, expectedVersion)
	if err != nil {
		r.logger.Error("Failed to update invoice balance",
			zap.Int64("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to update invoice balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fault.ConcurrencyConflict("invoice", id)
	}
	return nil
}

func (r *InvoiceRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Invoice, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *InvoiceRepository) insertLineItems(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoice_line_items (
			invoice_id, position, description,
			quantity_thousandths, unit_price_cents, amount_cents
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		item.InvoiceID = invoice.ID
		item.Position = i

		result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
			invoice.ID,
			item.Position,
			item.Description,
			item.QuantityThousandths,
			int64(item.UnitPriceCents),
			int64(item.AmountCents),
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}
	return nil
}

// hydrate attaches line items and payments to the given invoices
func (r *InvoiceRepository) hydrate(ctx context.Context, invoices []*entity.Invoice) error {
	for _, inv := range invoices {
		items, err := r.lineItems(ctx, inv.ID)
		if err != nil {
			return err
		}
		inv.LineItems = items

		payments, err := r.payments(ctx, inv.OrganizationID, inv.ID)
		if err != nil {
			return err
		}
		inv.Payments = payments
	}
	return nil
}

func (r *InvoiceRepository) lineItems(ctx context.Context, invoiceID int64) ([]entity.LineItem, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, `
		SELECT id, invoice_id, position, description,
			quantity_thousandths, unit_price_cents, amount_cents
		FROM invoice_line_items
		WHERE invoice_id = ?
		ORDER BY position
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list line items: %w", err)
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var item entity.LineItem
		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Position,
			&item.Description,
			&item.QuantityThousandths,
			&item.UnitPriceCents,
			&item.AmountCents,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *InvoiceRepository) payments(ctx context.Context, orgID, invoiceID int64) ([]entity.Payment, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, `
		SELECT id, organization_id, invoice_id, amount_cents,
			payment_date, method, reference, recorded_by_id, created_at
		FROM payments
		WHERE organization_id = ? AND invoice_id = ?
		ORDER BY payment_date, id
	`, orgID, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []entity.Payment
	for rows.Next() {
		var p entity.Payment
		var method string
		err := rows.Scan(
			&p.ID,
			&p.OrganizationID,
			&p.InvoiceID,
			&p.AmountCents,
			&p.PaymentDate,
			&method,
			&p.Reference,
			&p.RecordedByID,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Method = entity.PaymentMethod(method)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanInvoice(row scanner) (*entity.Invoice, error) {
	var invoice entity.Invoice
	var status string
	var sentAt, writtenOffAt sql.NullTime

	err := row.Scan(
		&invoice.ID,
		&invoice.OrganizationID,
		&invoice.ProjectID,
		&invoice.Number,
		&status,
		&invoice.IssueDate,
		&invoice.DueDate,
		&sentAt,
		&writtenOffAt,
		&invoice.SubtotalCents,
		&invoice.TaxRateBasisPoints,
		&invoice.TaxAmountCents,
		&invoice.TotalCents,
		&invoice.BalanceDueCents,
		&invoice.Version,
		&invoice.Notes,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	invoice.Status = entity.InvoiceStatus(status)
	if sentAt.Valid {
		invoice.SentAt = &sentAt.Time
	}
	if writtenOffAt.Valid {
		invoice.WrittenOffAt = &writtenOffAt.Time
	}
	return &invoice, nil
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
