package models

// RequestStatus is the lifecycle state of a maintenance request.
type RequestStatus string

const (
	RequestStatusNew        RequestStatus = "new"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusOnHold     RequestStatus = "on_hold"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusVerified   RequestStatus = "verified"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// RequestStatuses lists every status in board order.
var RequestStatuses = []RequestStatus{
	RequestStatusNew,
	RequestStatusAssigned,
	RequestStatusInProgress,
	RequestStatusOnHold,
	RequestStatusCompleted,
	RequestStatusVerified,
	RequestStatusCancelled,
}

// BoardStatuses are the non-terminal statuses shown as kanban columns.
var BoardStatuses = []RequestStatus{
	RequestStatusNew,
	RequestStatusAssigned,
	RequestStatusInProgress,
	RequestStatusOnHold,
	RequestStatusCompleted,
}

// ClosedRequestStatuses never count as overdue.
var ClosedRequestStatuses = []RequestStatus{
	RequestStatusCompleted,
	RequestStatusVerified,
	RequestStatusCancelled,
}

// AllowedTransitions is the directed edge table of the request state machine.
var AllowedTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusNew:        {RequestStatusAssigned, RequestStatusCancelled},
	RequestStatusAssigned:   {RequestStatusInProgress, RequestStatusNew, RequestStatusCancelled},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusOnHold, RequestStatusCancelled},
	RequestStatusOnHold:     {RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusCompleted:  {RequestStatusVerified, RequestStatusInProgress},
	RequestStatusVerified:   {},
	RequestStatusCancelled:  {},
}

// Valid reports whether s is one of the defined statuses.
func (s RequestStatus) Valid() bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// Terminal reports whether s has no outbound transitions.
func (s RequestStatus) Terminal() bool {
	return s.Valid() && len(AllowedTransitions[s]) == 0
}

// Closed reports whether s ends the active work on a request.
func (s RequestStatus) Closed() bool {
	for _, closed := range ClosedRequestStatuses {
		if s == closed {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is an allowed target from s.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, target := range AllowedTransitions[s] {
		if target == next {
			return true
		}
	}
	return false
}

// RequestType distinguishes breakdown repairs from scheduled maintenance.
type RequestType string

const (
	RequestTypeCorrective RequestType = "corrective"
	RequestTypePreventive RequestType = "preventive"
)

// Priority ranks the urgency of a request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)
