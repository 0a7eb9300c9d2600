package postgres

import (
	"context"
	"fmt"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
)

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, action, entity_type, entity_id, changes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var changes interface{}
	if len(log.Changes) > 0 {
		changes = string(log.Changes)
	}

	_, err := r.exec.ExecuteUpdate(ctx, query,
		log.ID,
		log.Action,
		log.EntityType,
		log.EntityID,
		changes,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
