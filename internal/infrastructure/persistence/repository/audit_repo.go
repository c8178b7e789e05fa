package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atelierhq/studiobooks/internal/application/port"
	"github.com/atelierhq/studiobooks/internal/domain/event"
	"github.com/atelierhq/studiobooks/internal/infrastructure/persistence/sqlite"
)

// AuditLogRepository implements port.AuditSink on the audit_log table.
// Events always write through the bare connection, never the caller's
// transaction: an audit row must survive even when the surrounding
// mutation is retried, and a failed write is the caller's to log, not
// to roll back on.
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) *AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

// Record persists one audit event
func (r *AuditLogRepository) Record(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO audit_log (
			id, event_type, entity_type, entity_id, organization_id,
			actor_id, before_state, after_state, occurred_at, correlation_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Type.String(),
		e.EntityType,
		e.EntityID,
		e.OrganizationID,
		e.ActorID,
		nullableJSON(e.Before),
		nullableJSON(e.After),
		e.Timestamp,
		e.CorrelationID,
	)
	if err != nil {
		r.logger.Error("Failed to record audit event",
			zap.String("event_id", e.ID),
			zap.String("event_type", e.Type.String()),
			zap.Error(err))
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}

// ListByEntity returns an entity's audit trail, newest first
func (r *AuditLogRepository) ListByEntity(ctx context.Context, orgID int64, entityType string, entityID int64, limit int) ([]*event.Event, error) {
	query := `
		SELECT id, event_type, entity_type, entity_id, organization_id,
			actor_id, before_state, after_state, occurred_at, correlation_id
		FROM audit_log
		WHERE organization_id = ? AND entity_type = ? AND entity_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, orgID, entityType, entityID, limit)
	if err != nil {
		r.logger.Error("Failed to list audit events",
			zap.String("entity_type", entityType),
			zap.Int64("entity_id", entityID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*event.Event
	for rows.Next() {
		var e event.Event
		var eventType string
		var before, after sql.NullString
		var occurredAt time.Time
		err := rows.Scan(
			&e.ID,
			&eventType,
			&e.EntityType,
			&e.EntityID,
			&e.OrganizationID,
			&e.ActorID,
			&before,
			&after,
			&occurredAt,
			&e.CorrelationID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		e.Type = event.Type(eventType)
		e.Timestamp = occurredAt
		if before.Valid {
			e.Before = []byte(before.String)
		}
		if after.Valid {
			e.After = []byte(after.String)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// Verify interface compliance
var _ port.AuditSink = (*AuditLogRepository)(nil)
