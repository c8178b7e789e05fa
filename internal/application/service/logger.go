package service

import (
	"context"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/event"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// recordAudit delivers an audit event to the sink. Sink failures are
// surfaced to the operational log but never fail the caller: an audit
// outage must not stop a financial operation, nor pass silently.
func recordAudit(ctx context.Context, sink port.AuditSink, logger Logger, e *event.Event) {
	if err := sink.Record(ctx, e); err != nil {
		logger.Error("audit sink write failed",
			"event_type", e.Type.String(),
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}
