package models

import "time"

// LogAction names the kind of event recorded on a request timeline.
type LogAction string

const (
	LogActionCreated       LogAction = "created"
	LogActionStatusChanged LogAction = "status_changed"
	LogActionAssigned      LogAction = "assigned"
	LogActionNoteAdded     LogAction = "note_added"
	LogActionCompleted     LogAction = "completed"
	LogActionVerified      LogAction = "verified"
	LogActionCancelled     LogAction = "cancelled"
	LogActionReopened      LogAction = "reopened"
)

// MaintenanceLog is one append-only entry in a request's audit trail.
type MaintenanceLog struct {
	ID           string    `db:"id" json:"id"`
	RequestID    string    `db:"request_id" json:"request_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Action       LogAction `db:"action" json:"action"`
	FieldChanged *string   `db:"field_changed" json:"field_changed,omitempty"`
	OldValue     *string   `db:"old_value" json:"old_value,omitempty"`
	NewValue     *string   `db:"new_value" json:"new_value,omitempty"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
