package port

import (
	"context"

	"github.com/atelierhq/studiobooks/internal/domain/entity"
	"github.com/atelierhq/studiobooks/internal/domain/event"
)

// AuditSink receives the audit event every mutating operation emits.
// Delivery is best-effort: a failing sink is logged by the caller and
// never rolls back or blocks the financial mutation.
type AuditSink interface {
	Record(ctx context.Context, e *event.Event) error
}

// Notifier pushes change notifications out to whatever channels the
// organization has configured. Bulk operations call ProjectsChanged
// once per affected project, not once per item.
type Notifier interface {
	ProjectsChanged(ctx context.Context, orgID int64, projectIDs []int64)
	PaymentReminder(ctx context.Context, orgID int64, invoices []*entity.Invoice) error
}
