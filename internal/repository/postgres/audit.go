package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shopchat/shopchat-backend/internal/models"
)

// AuditRepository persists audit rows in PostgreSQL.
type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_log (id, user_id, session_id, action, details, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :session_id, :action, :details, :ip_address, :user_agent, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func (r *AuditRepository) GetBySession(ctx context.Context, sessionID string, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := `SELECT * FROM audit_log WHERE session_id = $1 ORDER BY created_at DESC LIMIT $2`

	if err := r.db.SelectContext(ctx, &logs, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("failed to load audit logs: %w", err)
	}
	return logs, nil
}
