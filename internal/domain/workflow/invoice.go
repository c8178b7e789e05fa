package workflow

import (
	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/fault"
)

// invoiceTransitions lists the allowed target states per current state.
// Payment-driven moves (to PARTIALLY_PAID and PAID) and the overdue
// sweep both route through this table; PAID and WRITTEN_OFF are
// terminal. Write-off is reachable from every non-PAID state.
var invoiceTransitions = map[entity.InvoiceStatus][]entity.InvoiceStatus{
	entity.InvoiceDraft: {entity.InvoiceSent, entity.InvoiceWrittenOff},
	entity.InvoiceSent: {
		entity.InvoiceViewed, entity.InvoicePartiallyPaid, entity.InvoicePaid,
		entity.InvoiceOverdue, entity.InvoiceWrittenOff,
	},
	entity.InvoiceViewed: {
		entity.InvoicePartiallyPaid, entity.InvoicePaid,
		entity.InvoiceOverdue, entity.InvoiceWrittenOff,
	},
	entity.InvoicePartiallyPaid: {
		entity.InvoicePaid, entity.InvoiceOverdue, entity.InvoiceWrittenOff,
	},
	entity.InvoiceOverdue: {
		entity.InvoicePartiallyPaid, entity.InvoicePaid, entity.InvoiceWrittenOff,
	},
	entity.InvoicePaid:       {},
	entity.InvoiceWrittenOff: {},
}

// CanTransitionInvoice reports whether an invoice may move between the
// two states.
func CanTransitionInvoice(from, to entity.InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateInvoiceTransition returns an invalid-transition fault naming
// both states when the move is not allowed.
func ValidateInvoiceTransition(from, to entity.InvoiceStatus) error {
	if !to.IsValid() {
		return fault.Validation("status", "unknown invoice status "+to.String())
	}
	if !CanTransitionInvoice(from, to) {
		return fault.InvalidTransition("invoice", from.String(), to.String())
	}
	return nil
}

// ValidateSend checks the guard for DRAFT -> SENT: at least one line item.
func ValidateSend(inv *entity.Invoice) error {
	if err := ValidateInvoiceTransition(inv.Status, entity.InvoiceSent); err != nil {
		return err
	}
	if len(inv.LineItems) == 0 {
		return fault.Validation("line_items", "invoice must have at least one line item before sending")
	}
	return nil
}

// ValidateWriteOff checks the guard for writing off: any non-PAID,
// non-written-off state qualifies.
func ValidateWriteOff(inv *entity.Invoice) error {
	return ValidateInvoiceTransition(inv.Status, entity.InvoiceWrittenOff)
}

// PaymentResultStatus decides the status an invoice lands in after a
// payment leaves it with the given balance.
func PaymentResultStatus(remaining int64) entity.InvoiceStatus {
	if remaining <= 0 {
		return entity.InvoicePaid
	}
	return entity.InvoicePartiallyPaid
}
