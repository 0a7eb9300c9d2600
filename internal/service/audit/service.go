package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/the1323/cs166-project-the033-hbai013/internal/model"
	"github.com/the1323/cs166-project-the033-hbai013/internal/repository"
)

type Service struct {
	repo repository.AuditRepository
}

// NewService binds the auditor to repo. Pass the transaction's repository to
// have the audit row commit or roll back with the write it describes.
func NewService(repo repository.AuditRepository) *Service {
	return &Service{repo: repo}
}

// Log creates an audit log entry
func (s *Service) Log(ctx context.Context, action, entityType, entityID string, changes interface{}) error {
	var raw json.RawMessage
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("failed to marshal audit changes: %w", err)
		}
		raw = b
	}

	log := &model.AuditLog{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    raw,
		CreatedAt:  time.Now().UTC(),
	}
	return s.repo.Create(ctx, log)
}
