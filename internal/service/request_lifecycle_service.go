package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gearguard/gearguard-api/internal/models"
	"github.com/gearguard/gearguard-api/internal/repository"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

type requestStore interface {
	GetByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, id string, expected models.RequestStatus, patch repository.RequestPatch) (*models.MaintenanceRequest, error)
	UpdateFields(ctx context.Context, id string, patch repository.RequestPatch) (*models.MaintenanceRequest, error)
}

type actionLogger interface {
	LogAction(ctx context.Context, requestID, userID string, action models.LogAction, fields AuditFields) AuditOutcome
}

// LifecycleResult is returned by every lifecycle mutation. The request reflects the committed
// write; the audit flags report whether its log entry was stored.
type LifecycleResult struct {
	Request         *models.MaintenanceRequest `json:"request"`
	AuditLogSuccess bool                       `json:"auditLogSuccess"`
	AuditLogError   string                     `json:"auditLogError,omitempty"`
}

func newLifecycleResult(req *models.MaintenanceRequest, outcome AuditOutcome) *LifecycleResult {
	return &LifecycleResult{Request: req, AuditLogSuccess: outcome.Success, AuditLogError: outcome.Error}
}

// CompleteInput carries the resolution details written alongside the completed status.
type CompleteInput struct {
	ResolutionNotes string
	LaborHours      *float64
	PartsUsed       *string
	ActualCost      *decimal.Decimal
}

// WorkLogInput carries a progress note and optional effort fields.
type WorkLogInput struct {
	Notes      string
	LaborHours *float64
	PartsUsed  *string
}

// RequestLifecycleService owns the maintenance request state machine.
type RequestLifecycleService struct {
	store   requestStore
	audit   actionLogger
	clock   clockwork.Clock
	metrics *MetricsService
	cache   *CacheService
	logger  *zap.Logger
}

// LifecycleOption configures the lifecycle service.
type LifecycleOption func(*RequestLifecycleService)

// WithLifecycleMetrics records accepted transitions.
func WithLifecycleMetrics(metrics *MetricsService) LifecycleOption {
	return func(s *RequestLifecycleService) {
		s.metrics = metrics
	}
}

// WithLifecycleCache drops cached request aggregates after each status change.
func WithLifecycleCache(cache *CacheService) LifecycleOption {
	return func(s *RequestLifecycleService) {
		s.cache = cache
	}
}

// NewRequestLifecycleService constructs the service with defaults.
func NewRequestLifecycleService(store requestStore, audit actionLogger, clock clockwork.Clock, logger *zap.Logger, opts ...LifecycleOption) *RequestLifecycleService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RequestLifecycleService{store: store, audit: audit, clock: clock, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// ValidateTransition reports whether next is reachable from current in one step.
func ValidateTransition(current, next models.RequestStatus) error {
	if current.CanTransitionTo(next) {
		return nil
	}
	allowed := "none (terminal state)"
	if targets := models.AllowedTransitions[current]; len(targets) > 0 {
		names := make([]string, len(targets))
		for i, target := range targets {
			names[i] = string(target)
		}
		allowed = strings.Join(names, ", ")
	}
	return appErrors.Clone(appErrors.ErrInvalidTransition,
		fmt.Sprintf("cannot transition from '%s' to '%s'; allowed: %s", current, next, allowed))
}

// UpdateStatus moves a request to next and stamps the timestamps that belong to the target status.
func (s *RequestLifecycleService) UpdateStatus(ctx context.Context, id string, next models.RequestStatus, actingUserID, notes string) (*LifecycleResult, error) {
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status '%s'", next))
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, next); err != nil {
		return nil, err
	}
	if next == models.RequestStatusCompleted && (current.ResolutionNotes == nil || strings.TrimSpace(*current.ResolutionNotes) == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resolution notes are required to complete a request")
	}

	patch := s.transitionPatch(current, next, actingUserID, notes)
	updated, err := s.store.Update(ctx, id, current.Status, patch)
	if err != nil {
		return nil, s.storeError(err, "update request status")
	}
	s.committed(ctx, current.Status, next)

	outcome := s.audit.LogAction(ctx, id, actingUserID, transitionAction(current.Status, next), AuditFields{
		FieldChanged: "status",
		OldValue:     string(current.Status),
		NewValue:     string(next),
		Notes:        notes,
	})
	return newLifecycleResult(updated, outcome), nil
}

// AssignRequest assigns a new request to a technician. Only requests in 'new' can be assigned.
func (s *RequestLifecycleService) AssignRequest(ctx context.Context, id, technicianID, assignedByID string, teamID *string) (*LifecycleResult, error) {
	if strings.TrimSpace(technicianID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "technician is required")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.RequestStatusNew {
		return nil, appErrors.Clone(appErrors.ErrInvalidState,
			fmt.Sprintf("request must be in 'new' status to be assigned (current: '%s')", current.Status))
	}
	if err := ValidateTransition(current.Status, models.RequestStatusAssigned); err != nil {
		return nil, err
	}

	patch := s.transitionPatch(current, models.RequestStatusAssigned, assignedByID, "")
	patch.AssignedToID = &technicianID
	patch.AssignedByID = &assignedByID
	if teamID != nil && strings.TrimSpace(*teamID) != "" {
		patch.AssignedTeamID = teamID
	}
	updated, err := s.store.Update(ctx, id, current.Status, patch)
	if err != nil {
		return nil, s.storeError(err, "assign request")
	}
	s.committed(ctx, current.Status, models.RequestStatusAssigned)

	previous := ""
	if current.AssignedToID != nil {
		previous = *current.AssignedToID
	}
	outcome := s.audit.LogAction(ctx, id, assignedByID, models.LogActionAssigned, AuditFields{
		FieldChanged: "assigned_to_id",
		OldValue:     previous,
		NewValue:     technicianID,
	})
	return newLifecycleResult(updated, outcome), nil
}

// CompleteRequest moves a request to completed together with its resolution details.
func (s *RequestLifecycleService) CompleteRequest(ctx context.Context, id, actingUserID string, in CompleteInput) (*LifecycleResult, error) {
	if strings.TrimSpace(in.ResolutionNotes) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resolution notes are required to complete a request")
	}
	if in.LaborHours != nil && *in.LaborHours < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "labor hours must not be negative")
	}
	if in.ActualCost != nil && in.ActualCost.IsNegative() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "actual cost must not be negative")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(current.Status, models.RequestStatusCompleted); err != nil {
		return nil, err
	}

	patch := s.transitionPatch(current, models.RequestStatusCompleted, actingUserID, "")
	patch.ResolutionNotes = &in.ResolutionNotes
	patch.LaborHours = in.LaborHours
	patch.PartsUsed = in.PartsUsed
	patch.ActualCost = in.ActualCost
	updated, err := s.store.Update(ctx, id, current.Status, patch)
	if err != nil {
		return nil, s.storeError(err, "complete request")
	}
	s.committed(ctx, current.Status, models.RequestStatusCompleted)

	outcome := s.audit.LogAction(ctx, id, actingUserID, models.LogActionCompleted, AuditFields{
		FieldChanged: "status",
		OldValue:     string(current.Status),
		NewValue:     string(models.RequestStatusCompleted),
		Notes:        in.ResolutionNotes,
	})
	return newLifecycleResult(updated, outcome), nil
}

// AddWorkLog records a progress note without changing status. Effort fields are written when given,
// outside the status guard, and the note is logged even when that write fails.
// The note itself lives only in the log entry, so a failed log write loses it.
func (s *RequestLifecycleService) AddWorkLog(ctx context.Context, id, userID string, in WorkLogInput) (*LifecycleResult, error) {
	hasNotes := strings.TrimSpace(in.Notes) != ""
	hasParts := in.PartsUsed != nil && strings.TrimSpace(*in.PartsUsed) != ""
	if !hasNotes && in.LaborHours == nil && !hasParts {
		return nil, appErrors.Clone(appErrors.ErrValidation, "notes, labor hours or parts used are required")
	}
	if in.LaborHours != nil && *in.LaborHours < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "labor hours must not be negative")
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := current
	var writeErr error
	if in.LaborHours != nil || hasParts {
		patch := repository.RequestPatch{LaborHours: in.LaborHours, UpdatedAt: s.now()}
		if hasParts {
			patch.PartsUsed = in.PartsUsed
		}
		updated, writeErr = s.store.UpdateFields(ctx, id, patch)
	}

	outcome := AuditOutcome{Success: true}
	if hasNotes {
		outcome = s.audit.LogAction(ctx, id, userID, models.LogActionNoteAdded, AuditFields{Notes: in.Notes})
	}
	if writeErr != nil {
		return nil, s.storeError(writeErr, "record work effort")
	}
	return newLifecycleResult(updated, outcome), nil
}

func (s *RequestLifecycleService) load(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "maintenance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load maintenance request")
	}
	return req, nil
}

func (s *RequestLifecycleService) storeError(err error, op string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, "maintenance request not found")
	case errors.Is(err, repository.ErrStatusChanged):
		return appErrors.Wrap(err, appErrors.ErrConcurrentModification.Code, appErrors.ErrConcurrentModification.Status,
			"request was modified by another user; reload and retry")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to "+op)
	}
}

func (s *RequestLifecycleService) now() time.Time {
	return s.clock.Now().UTC()
}

// transitionPatch computes the status change and its timestamp side effects.
func (s *RequestLifecycleService) transitionPatch(current *models.MaintenanceRequest, next models.RequestStatus, actingUserID, notes string) repository.RequestPatch {
	now := s.now()
	patch := repository.RequestPatch{Status: &next, UpdatedAt: now}
	switch next {
	case models.RequestStatusInProgress:
		if current.StartedAt == nil {
			patch.StartedAt = &now
		}
		if current.Status == models.RequestStatusCompleted {
			patch.ClearCompletedAt = true
		}
	case models.RequestStatusCompleted:
		patch.CompletedAt = &now
	case models.RequestStatusVerified:
		patch.VerifiedAt = &now
		patch.VerifiedByID = &actingUserID
	case models.RequestStatusCancelled:
		patch.CancelledAt = &now
		patch.CancelledByID = &actingUserID
		if strings.TrimSpace(notes) != "" {
			patch.CancellationReason = &notes
		}
	}
	return patch
}

func (s *RequestLifecycleService) committed(ctx context.Context, from, to models.RequestStatus) {
	s.metrics.RecordTransition(string(from), string(to))
	s.cache.Invalidate(ctx, overdueCountCacheKey)
	s.logger.Debug("request transition committed", zap.String("from", string(from)), zap.String("to", string(to)))
}

func transitionAction(from, to models.RequestStatus) models.LogAction {
	switch {
	case from == models.RequestStatusCompleted && to == models.RequestStatusInProgress:
		return models.LogActionReopened
	case to == models.RequestStatusCompleted:
		return models.LogActionCompleted
	case to == models.RequestStatusVerified:
		return models.LogActionVerified
	case to == models.RequestStatusCancelled:
		return models.LogActionCancelled
	default:
		return models.LogActionStatusChanged
	}
}
