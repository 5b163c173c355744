package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gearguard/gearguard-api/internal/models"
)

// MaintenanceLogRepository appends and reads request timeline entries.
type MaintenanceLogRepository struct {
	db *sqlx.DB
}

// NewMaintenanceLogRepository constructs the repository.
func NewMaintenanceLogRepository(db *sqlx.DB) *MaintenanceLogRepository {
	return &MaintenanceLogRepository{db: db}
}

// Create appends a log entry. Entries are never updated or deleted.
func (r *MaintenanceLogRepository) Create(ctx context.Context, entry *models.MaintenanceLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO maintenance_logs
	(id, request_id, user_id, action, field_changed, old_value, new_value, notes, created_at)
	VALUES (:id, :request_id, :user_id, :action, :field_changed, :old_value, :new_value, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create maintenance log: %w", err)
	}
	return nil
}

// ListByRequest returns the timeline of a request, newest first.
func (r *MaintenanceLogRepository) ListByRequest(ctx context.Context, requestID string) ([]models.MaintenanceLog, error) {
	const query = `SELECT id, request_id, user_id, action, field_changed, old_value, new_value, notes, created_at
	FROM maintenance_logs WHERE request_id = $1 ORDER BY created_at DESC`
	var logs []models.MaintenanceLog
	if err := r.db.SelectContext(ctx, &logs, query, requestID); err != nil {
		return nil, fmt.Errorf("list maintenance logs: %w", err)
	}
	return logs, nil
}
