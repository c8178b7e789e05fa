package entity

import (
	"time"

	"github.com/atelierhq/studiobooks/internal/domain/money"
)

// InvoiceStatus is an invoice's position in the billing lifecycle.
type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoiceSent          InvoiceStatus = "SENT"
	InvoiceViewed        InvoiceStatus = "VIEWED"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoiceWrittenOff    InvoiceStatus = "WRITTEN_OFF"
)

var validInvoiceStatuses = map[InvoiceStatus]bool{
	InvoiceDraft:         true,
	InvoiceSent:          true,
	InvoiceViewed:        true,
	InvoicePartiallyPaid: true,
	InvoicePaid:          true,
	InvoiceOverdue:       true,
	InvoiceWrittenOff:    true,
}

// IsValid reports whether the status is a defined invoice state.
func (s InvoiceStatus) IsValid() bool {
	return validInvoiceStatuses[s]
}

// String returns the string representation of the status.
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsOutstanding reports whether the invoice can still collect money:
// sent to the client and not yet fully settled or written off.
func (s InvoiceStatus) IsOutstanding() bool {
	switch s {
	case InvoiceSent, InvoiceViewed, InvoicePartiallyPaid, InvoiceOverdue:
		return true
	default:
		return false
	}
}

// LineItem is one billed line of an invoice. Quantity is fixed-point
// thousandths of a unit; AmountCents is derived, never entered.
type LineItem struct {
	ID                  int64
	InvoiceID           int64
	Position            int
	Description         string
	QuantityThousandths int64
	UnitPriceCents      money.Cents
	AmountCents         money.Cents
}

// Invoice bills a client for project work. All monetary fields are
// derived from line items and the tax rate via Recalculate; Version
// backs the optimistic concurrency check on payment recording.
type Invoice struct {
	ID                 int64
	OrganizationID     int64
	ProjectID          int64
	Number             string
	Status             InvoiceStatus
	IssueDate          time.Time
	DueDate            time.Time
	SentAt             *time.Time
	WrittenOffAt       *time.Time
	SubtotalCents      money.Cents
	TaxRateBasisPoints money.BasisPoints
	TaxAmountCents     money.Cents
	TotalCents         money.Cents
	BalanceDueCents    money.Cents
	Version            int64
	Notes              string
	LineItems          []LineItem
	Payments           []Payment
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Recalculate recomputes every derived monetary field from line items,
// tax rate, and recorded payments. Must run whenever line items or the
// tax rate change, before persisting.
func (inv *Invoice) Recalculate() {
	var subtotal money.Cents
	for i := range inv.LineItems {
		inv.LineItems[i].AmountCents = money.LineAmount(
			inv.LineItems[i].QuantityThousandths,
			inv.LineItems[i].UnitPriceCents,
		)
		subtotal = subtotal.Add(inv.LineItems[i].AmountCents)
	}
	inv.SubtotalCents = subtotal
	inv.TaxAmountCents = money.ApplyRate(subtotal, inv.TaxRateBasisPoints)
	inv.TotalCents = subtotal.Add(inv.TaxAmountCents)

	if inv.Status == InvoiceWrittenOff {
		inv.BalanceDueCents = 0
		return
	}
	balance := inv.TotalCents.Sub(inv.PaidCents())
	if balance.IsNegative() {
		balance = 0
	}
	inv.BalanceDueCents = balance
}

// PaidCents sums the recorded payments.
func (inv *Invoice) PaidCents() money.Cents {
	var total money.Cents
	for _, p := range inv.Payments {
		total = total.Add(p.AmountCents)
	}
	return total
}

// DaysOverdue returns how many whole days past due the invoice is at
// the given instant, 0 if not yet due.
func (inv *Invoice) DaysOverdue(now time.Time) int {
	if !now.After(inv.DueDate) {
		return 0
	}
	return int(now.Sub(inv.DueDate).Hours() / 24)
}
