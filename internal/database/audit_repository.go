package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// AuditRepository stores admin actions in audit_logs
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Insert writes one audit entry. JSON columns are passed as raw bytes.
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			admin_id, action, entity_type, entity_id,
			old_value, new_value, ip_address, user_agent, device_info
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING audit_id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		entry.AdminID, entry.Action, entry.EntityType, entry.EntityID,
		nullableJSON(entry.OldValue), nullableJSON(entry.NewValue),
		entry.IPAddress, entry.UserAgent, nullableJSON(entry.DeviceInfo),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}
	return nil
}

// ListRecent returns the newest audit entries with the acting admin's name
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT al.audit_id, al.admin_id, a.name AS admin_name, al.action, al.entity_type, al.entity_id,
		       al.old_value, al.new_value, al.ip_address, al.user_agent, al.device_info, al.created_at
		FROM audit_logs al
		LEFT JOIN admins a ON al.admin_id = a.admin_id
		ORDER BY al.created_at DESC
		LIMIT $1`

	logs := []*models.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}

// DeleteOlderThan removes entries created before cutoff and returns how many were removed
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
