package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gearguard/gearguard-api/internal/models"
)

// PreventiveScheduleRepository reads and advances recurring maintenance plans.
type PreventiveScheduleRepository struct {
	db *sqlx.DB
}

// NewPreventiveScheduleRepository constructs the repository.
func NewPreventiveScheduleRepository(db *sqlx.DB) *PreventiveScheduleRepository {
	return &PreventiveScheduleRepository{db: db}
}

// ListDue returns active schedules due on or before cutoff joined with their equipment.
func (r *PreventiveScheduleRepository) ListDue(ctx context.Context, cutoff time.Time) ([]models.PreventiveSchedule, error) {
	const query = `SELECT s.id, s.name, s.description, s.equipment_id, s.frequency_type, s.frequency_value,
       s.next_due, s.last_generated, s.created_by,
       e.name AS equipment_name, e.status AS equipment_status, e.default_team_id AS equipment_default_team_id
	FROM preventive_schedules s
	JOIN equipment e ON e.id = s.equipment_id
	WHERE s.is_active = TRUE AND s.next_due <= $1
	ORDER BY s.next_due ASC`
	var schedules []models.PreventiveSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, cutoff); err != nil {
		return nil, fmt.Errorf("list due schedules: %w", err)
	}
	return schedules, nil
}

// MarkGenerated moves the schedule to its next due date and records the generation time.
func (r *PreventiveScheduleRepository) MarkGenerated(ctx context.Context, id string, nextDue, generatedAt time.Time) error {
	const query = `UPDATE preventive_schedules SET next_due = $2, last_generated = $3, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, nextDue, generatedAt); err != nil {
		return fmt.Errorf("advance schedule: %w", err)
	}
	return nil
}
