package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleTeamLeader UserRole = "team_leader"
	RoleTechnician UserRole = "technician"
	RoleRequester  UserRole = "requester"
)

var roleRank = map[UserRole]int{
	RoleRequester:  1,
	RoleTechnician: 2,
	RoleTeamLeader: 3,
	RoleManager:    4,
	RoleAdmin:      5,
}

// AtLeast reports whether r sits at or above min in the role hierarchy.
func (r UserRole) AtLeast(min UserRole) bool {
	rank, ok := roleRank[r]
	return ok && rank >= roleRank[min]
}

// Role groups used for route guards.
var (
	RolesAssignRequest = []UserRole{RoleAdmin, RoleManager, RoleTeamLeader}
	RolesUpdateStatus  = []UserRole{RoleAdmin, RoleManager, RoleTeamLeader, RoleTechnician}
	RolesVerifyRequest = []UserRole{RoleAdmin, RoleManager, RoleRequester}
	RolesExportReports = []UserRole{RoleAdmin, RoleManager}
	RolesRunJobs       = []UserRole{RoleAdmin}
)

// HasRole reports whether role is a member of roles.
func HasRole(role UserRole, roles []UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanSetStatus reports whether role may move a request into target.
// Verification is the requester's sign-off, so it uses its own group.
func CanSetStatus(role UserRole, target RequestStatus) bool {
	if target == RequestStatusVerified {
		return HasRole(role, RolesVerifyRequest)
	}
	return HasRole(role, RolesUpdateStatus)
}

// User mirrors the application profile row linked to the hosted auth account.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	Active       bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
