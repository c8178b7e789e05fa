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

// PaymentRepository implements port.PaymentRepository. The payments
// table is append-only: no update or delete statements exist here.
type PaymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) port.PaymentRepository {
	return &PaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new payment record
func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			organization_id, invoice_id, amount_cents, payment_date,
			method, reference, recorded_by_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		payment.OrganizationID,
		payment.InvoiceID,
		int64(payment.AmountCents),
		payment.PaymentDate,
		string(payment.Method),
		payment.Reference,
		payment.RecordedByID,
		payment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create payment",
			zap.Int64("invoice_id", payment.InvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	payment.ID = id
	return nil
}

// ListByInvoice returns an invoice's payments in date order
func (r *PaymentRepository) ListByInvoice(ctx context.Context, orgID, invoiceID int64) ([]*entity.Payment, error) {
	query := `
		SELECT id, organization_id, invoice_id, amount_cents,
			payment_date, method, reference, recorded_by_id, created_at
		FROM payments
		WHERE organization_id = ? AND invoice_id = ?
		ORDER BY payment_date, id
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, orgID, invoiceID)
	if err != nil {
		r.logger.Error("Failed to list payments",
			zap.Int64("invoice_id", invoiceID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
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
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// Verify interface compliance
var _ port.PaymentRepository = (*PaymentRepository)(nil)
