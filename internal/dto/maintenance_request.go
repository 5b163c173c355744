package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gearguard/gearguard-api/internal/models"
)

// CreateRequestPayload opens a new maintenance request.
type CreateRequestPayload struct {
	EquipmentID    string             `json:"equipment_id" validate:"required,uuid"`
	Title          string             `json:"title" validate:"required,max=200"`
	Description    string             `json:"description" validate:"required"`
	RequestType    models.RequestType `json:"request_type" validate:"required,oneof=corrective preventive"`
	Priority       models.Priority    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	DueDate        *time.Time         `json:"due_date"`
	AssignedTeamID *string            `json:"assigned_team_id" validate:"omitempty,uuid"`
}

// UpdateStatusPayload moves a request along the lifecycle.
type UpdateStatusPayload struct {
	Status models.RequestStatus `json:"status" validate:"required"`
	Notes  string               `json:"notes"`
}

// AssignRequestPayload assigns a new request to a technician and optionally a team.
type AssignRequestPayload struct {
	TechnicianID string  `json:"technician_id" validate:"required"`
	TeamID       *string `json:"team_id"`
}

// CompleteRequestPayload closes the work on a request.
type CompleteRequestPayload struct {
	ResolutionNotes string           `json:"resolution_notes"`
	LaborHours      *float64         `json:"labor_hours"`
	PartsUsed       *string          `json:"parts_used"`
	ActualCost      *decimal.Decimal `json:"actual_cost"`
}

// WorkLogPayload records progress notes against a request.
type WorkLogPayload struct {
	Notes      string   `json:"notes"`
	LaborHours *float64 `json:"labor_hours"`
	PartsUsed  *string  `json:"parts_used"`
}

// RequestQuery mirrors supported listing filters.
type RequestQuery struct {
	Search         string
	Statuses       []models.RequestStatus
	Priority       models.Priority
	RequestType    models.RequestType
	AssignedTeamID string
	AssignedToID   string
	RequesterID    string
	OverdueOnly    bool
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	Page           int
	PageSize       int
}

// JobRunResponse summarises a scheduled job execution.
type JobRunResponse struct {
	Job     string                 `json:"job"`
	Skipped bool                   `json:"skipped"`
	Summary map[string]interface{} `json:"summary,omitempty"`
}
