package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceRequest is the work order whose status is governed by the lifecycle engine.
type MaintenanceRequest struct {
	ID                 string              `db:"id" json:"id"`
	RequestNumber      string              `db:"request_number" json:"request_number"`
	Title              string              `db:"title" json:"title"`
	Description        string              `db:"description" json:"description"`
	EquipmentID        string              `db:"equipment_id" json:"equipment_id"`
	RequesterID        string              `db:"requester_id" json:"requester_id"`
	RequestType        RequestType         `db:"request_type" json:"request_type"`
	Priority           Priority            `db:"priority" json:"priority"`
	Status             RequestStatus       `db:"status" json:"status"`
	AssignedTeamID     *string             `db:"assigned_team_id" json:"assigned_team_id,omitempty"`
	AssignedToID       *string             `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	AssignedByID       *string             `db:"assigned_by_id" json:"assigned_by_id,omitempty"`
	ScheduleID         *string             `db:"schedule_id" json:"schedule_id,omitempty"`
	DueDate            *time.Time          `db:"due_date" json:"due_date,omitempty"`
	StartedAt          *time.Time          `db:"started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time          `db:"completed_at" json:"completed_at,omitempty"`
	VerifiedAt         *time.Time          `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedByID       *string             `db:"verified_by_id" json:"verified_by_id,omitempty"`
	CancelledAt        *time.Time          `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelledByID      *string             `db:"cancelled_by_id" json:"cancelled_by_id,omitempty"`
	CancellationReason *string             `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	ResolutionNotes    *string             `db:"resolution_notes" json:"resolution_notes,omitempty"`
	LaborHours         *float64            `db:"labor_hours" json:"labor_hours,omitempty"`
	PartsUsed          *string             `db:"parts_used" json:"parts_used,omitempty"`
	ActualCost         decimal.NullDecimal `db:"actual_cost" json:"actual_cost"`
	CreatedAt          time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `db:"updated_at" json:"updated_at"`
	IsOverdue          bool                `db:"-" json:"is_overdue"`
}

// Overdue reports whether the request is past due and still open at now.
func (r *MaintenanceRequest) Overdue(now time.Time) bool {
	return r.DueDate != nil && r.DueDate.Before(now) && !r.Status.Closed()
}

// RequestFilter constrains request listing queries.
type RequestFilter struct {
	Search         string
	Statuses       []RequestStatus
	Priority       Priority
	RequestType    RequestType
	AssignedTeamID string
	AssignedToID   string
	RequesterID    string
	OverdueOnly    bool
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Now            time.Time
	Limit          int
	Offset         int
}
