package models

import "time"

// FrequencyType is the unit of a preventive schedule's recurrence.
type FrequencyType string

const (
	FrequencyDaily     FrequencyType = "daily"
	FrequencyWeekly    FrequencyType = "weekly"
	FrequencyMonthly   FrequencyType = "monthly"
	FrequencyQuarterly FrequencyType = "quarterly"
	FrequencyYearly    FrequencyType = "yearly"
)

// EquipmentStatusScrapped marks equipment that no longer receives maintenance.
const EquipmentStatusScrapped = "scrapped"

// PreventiveSchedule joins a recurring plan with the equipment fields the generator needs.
type PreventiveSchedule struct {
	ID                   string        `db:"id" json:"id"`
	Name                 string        `db:"name" json:"name"`
	Description          *string       `db:"description" json:"description,omitempty"`
	EquipmentID          string        `db:"equipment_id" json:"equipment_id"`
	FrequencyType        FrequencyType `db:"frequency_type" json:"frequency_type"`
	FrequencyValue       int           `db:"frequency_value" json:"frequency_value"`
	NextDue              time.Time     `db:"next_due" json:"next_due"`
	LastGenerated        *time.Time    `db:"last_generated" json:"last_generated,omitempty"`
	CreatedBy            string        `db:"created_by" json:"created_by"`
	EquipmentName        string        `db:"equipment_name" json:"equipment_name"`
	EquipmentStatus      string        `db:"equipment_status" json:"equipment_status"`
	EquipmentDefaultTeam *string       `db:"equipment_default_team_id" json:"equipment_default_team_id,omitempty"`
}

// Valid reports whether f is a known recurrence unit.
func (f FrequencyType) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// Advance returns the next due date after from according to the schedule frequency.
// It reports false for an unknown frequency type.
func (s *PreventiveSchedule) Advance(from time.Time) (time.Time, bool) {
	value := s.FrequencyValue
	if value <= 0 {
		value = 1
	}
	switch s.FrequencyType {
	case FrequencyDaily:
		return from.AddDate(0, 0, value), true
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7*value), true
	case FrequencyMonthly:
		return from.AddDate(0, value, 0), true
	case FrequencyQuarterly:
		return from.AddDate(0, 3*value, 0), true
	case FrequencyYearly:
		return from.AddDate(value, 0, 0), true
	default:
		return from, false
	}
}
