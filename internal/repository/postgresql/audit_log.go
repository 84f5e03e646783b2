package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/audit"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type auditLogRepository struct {
	db *database.DB
}

func NewAuditLogRepository(db *database.DB) audit.Sink {
	return &auditLogRepository{db: db}
}

// LogDataModification implements audit.Sink. Entries are written outside the
// caller's transaction so a failed emission never blocks the mutation.
func (a *auditLogRepository) LogDataModification(ctx context.Context, entry audit.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_logs (id, actor_id, entity_type, entity_id, action, before, after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := a.db.Pool.Exec(ctx, query,
		entry.ID, entry.ActorID, entry.EntityType, entry.EntityID,
		string(entry.Action), entry.Before, entry.After, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}
