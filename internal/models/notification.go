package models

import "time"

// NotificationType categorises in-app notifications.
type NotificationType string

const (
	NotificationRequestCreated NotificationType = "request_created"
	NotificationRequestOverdue NotificationType = "request_overdue"
)

// ReferenceMaintenanceRequest is the reference_type for request notifications.
const ReferenceMaintenanceRequest = "maintenance_request"

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID            string           `db:"id" json:"id"`
	UserID        string           `db:"user_id" json:"user_id"`
	Type          NotificationType `db:"type" json:"type"`
	Title         string           `db:"title" json:"title"`
	Message       string           `db:"message" json:"message"`
	ReferenceType *string          `db:"reference_type" json:"reference_type,omitempty"`
	ReferenceID   *string          `db:"reference_id" json:"reference_id,omitempty"`
	IsRead        bool             `db:"is_read" json:"is_read"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}
