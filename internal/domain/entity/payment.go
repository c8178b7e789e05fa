package entity

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// PaymentMethod records how a payment arrived.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// Payment is money received against an invoice. Payments are immutable
// once created: the audit trail never edits or deletes them.
type Payment struct {
	ID             int64
	OrganizationID int64
	InvoiceID      int64
	AmountCents    money.Cents
	PaymentDate    time.Time
	Method         PaymentMethod
	Reference      string
	RecordedByID   int64
	CreatedAt      time.Time
}
