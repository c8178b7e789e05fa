// Package event defines the audit events every mutating financial
// operation emits: exactly one per mutation, carrying before/after
// snapshots of the affected entity.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one audit record. Before and After hold JSON snapshots of
// the entity around the mutation; Before is nil on creation.
type Event struct {
	ID             string          `json:"id"`
	Type           Type            `json:"type"`
	EntityType     string          `json:"entity_type"`
	EntityID       int64           `json:"entity_id"`
	OrganizationID int64           `json:"organization_id"`
	ActorID        int64           `json:"actor_id"`
	Before         json.RawMessage `json:"before,omitempty"`
	After          json.RawMessage `json:"after,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	CorrelationID  string          `json:"correlation_id"`
}

// New creates an audit event with generated ID and a fresh correlation ID.
func New(eventType Type, entityType string, entityID, orgID, actorID int64, before, after interface{}) *Event {
	return &Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		EntityType:     entityType,
		EntityID:       entityID,
		OrganizationID: orgID,
		ActorID:        actorID,
		Before:         snapshot(before),
		After:          snapshot(after),
		Timestamp:      time.Now().UTC(),
		CorrelationID:  uuid.NewString(),
	}
}

// WithCorrelation links the event into an existing correlation chain,
// used by bulk operations so all per-item events share one ID.
func (e *Event) WithCorrelation(correlationID string) *Event {
	e.CorrelationID = correlationID
	return e
}

// snapshot marshals an entity state, swallowing marshal errors: a
// snapshot that cannot serialize must not block the business mutation.
func snapshot(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
