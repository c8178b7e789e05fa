// Package notify implements the outbound notification port. The
// current implementation writes structured log lines; swapping in a
// webhook or email channel is a matter of replacing this type behind
// the port.
package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/entity"
)

// LogNotifier implements port.Notifier. Payment reminders are
// deduplicated per invoice per calendar day so a re-run of the
// reminder scan does not spam the organization.
type LogNotifier struct {
	logger *zap.Logger

	mu       sync.Mutex
	reminded map[int64]time.Time
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger:   logger,
		reminded: make(map[int64]time.Time),
	}
}

// ProjectsChanged announces that the listed projects' financials moved
func (n *LogNotifier) ProjectsChanged(ctx context.Context, orgID int64, projectIDs []int64) {
	n.logger.Info("Projects changed",
		zap.Int64("organization_id", orgID),
		zap.Int64s("project_ids", projectIDs))
}

// PaymentReminder emits one reminder per organization covering every
// invoice not already reminded today
func (n *LogNotifier) PaymentReminder(ctx context.Context, orgID int64, invoices []*entity.Invoice) error {
	fresh := n.filterReminded(invoices)
	if len(fresh) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(fresh))
	var totalDue int64
	for _, inv := range fresh {
		ids = append(ids, inv.ID)
		totalDue += int64(inv.BalanceDueCents)
	}

	n.logger.Info("Payment reminder",
		zap.Int64("organization_id", orgID),
		zap.Int64s("invoice_ids", ids),
		zap.Int64("total_due_cents", totalDue))
	return nil
}

func (n *LogNotifier) filterReminded(invoices []*entity.Invoice) []*entity.Invoice {
	n.mu.Lock()
	defer n.mu.Unlock()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	var fresh []*entity.Invoice
	for _, inv := range invoices {
		if last, ok := n.reminded[inv.ID]; ok && !last.Before(today) {
			continue
		}
		n.reminded[inv.ID] = today
		fresh = append(fresh, inv)
	}
	return fresh
}

// Verify interface compliance
var _ port.Notifier = (*LogNotifier)(nil)
