package event

// Type identifies the type of audit event
type Type string

const (
	TypeProjectStatusChanged    Type = "project.status_changed"
	TypeExpenseSubmitted        Type = "expense.submitted"
	TypeExpenseApproved         Type = "expense.approved"
	TypeExpenseRejected         Type = "expense.rejected"
	TypeExpenseReimbursed       Type = "expense.reimbursed"
	TypeInvoiceSent             Type = "invoice.sent"
	TypeInvoiceViewed           Type = "invoice.viewed"
	TypeInvoiceLineItemsChanged Type = "invoice.line_items_changed"
	TypeInvoiceMarkedOverdue    Type = "invoice.marked_overdue"
	TypeInvoiceWrittenOff       Type = "invoice.written_off"
	TypePaymentRecorded         Type = "payment.recorded"
	TypeBudgetCategoryChanged   Type = "budget.category_changed"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeProjectStatusChanged,
		TypeExpenseSubmitted,
		TypeExpenseApproved,
		TypeExpenseRejected,
		TypeExpenseReimbursed,
		TypeInvoiceSent,
		TypeInvoiceViewed,
		TypeInvoiceLineItemsChanged,
		TypeInvoiceMarkedOverdue,
		TypeInvoiceWrittenOff,
		TypePaymentRecorded,
		TypeBudgetCategoryChanged:
		return true
	default:
		return false
	}
}
