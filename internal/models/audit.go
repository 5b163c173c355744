package models

import "time"

// System audit actions written by scheduled jobs.
const (
	AuditActionCheckOverdue       = "scheduled_check_overdue"
	AuditActionGeneratePreventive = "scheduled_generate_preventive"
)

// AuditLog is a system-level audit record, separate from per-request maintenance logs.
type AuditLog struct {
	ID                string    `db:"id" json:"id"`
	UserID            *string   `db:"user_id" json:"user_id,omitempty"`
	Action            string    `db:"action" json:"action"`
	EntityType        string    `db:"entity_type" json:"entity_type"`
	EntityID          *string   `db:"entity_id" json:"entity_id,omitempty"`
	AdditionalContext []byte    `db:"additional_context" json:"additional_context,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
