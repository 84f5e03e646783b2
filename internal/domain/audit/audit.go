package audit

import (
	"context"
	"time"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry is one immutable audit trail row. Before and After hold JSON
// snapshots of the entity around the mutation.
type Entry struct {
	ID         string
	ActorID    string
	EntityType string
	EntityID   string
	Action     Action
	Before     *string
	After      *string
	CreatedAt  time.Time
}

// Sink receives audit entries for every state-mutating operation. Emission is
// best-effort: a sink failure must never roll back the primary mutation.
type Sink interface {
	LogDataModification(ctx context.Context, entry Entry) error
}
