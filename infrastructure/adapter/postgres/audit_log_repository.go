package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
)

type AuditLogRepositoryAdapter struct {
	db *sql.DB
}

func NewAuditLogRepositoryAdapter(db *sql.DB) outbound.AuditLogRepository {
	return &AuditLogRepositoryAdapter{db: db}
}

func (r *AuditLogRepositoryAdapter) Append(ctx context.Context, entry *entity.AdminLogEntry) error {
	metadata := []byte("{}")
	if entry.Metadata != nil {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
		metadata = raw
	}

	query := `
		INSERT INTO admin_logs (admin_id, action, target_type, target_id, details, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.AdminID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Details,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to append admin log entry: %w", err)
	}
	return nil
}
