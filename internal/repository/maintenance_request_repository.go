package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gearguard/gearguard-api/internal/models"
)

// ErrStatusChanged is returned by Update when the row exists but no longer holds the expected status.
var ErrStatusChanged = errors.New("request status changed")

const requestColumns = `id, request_number, title, description, equipment_id, requester_id, request_type, priority, status,
       assigned_team_id, assigned_to_id, assigned_by_id, schedule_id, due_date, started_at, completed_at,
       verified_at, verified_by_id, cancelled_at, cancelled_by_id, cancellation_reason, resolution_notes,
       labor_hours, parts_used, actual_cost, created_at, updated_at`

// MaintenanceRequestRepository persists maintenance requests.
type MaintenanceRequestRepository struct {
	db *sqlx.DB
}

// NewMaintenanceRequestRepository constructs the repository.
func NewMaintenanceRequestRepository(db *sqlx.DB) *MaintenanceRequestRepository {
	return &MaintenanceRequestRepository{db: db}
}

// Create inserts a new request row.
func (r *MaintenanceRequestRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = models.RequestStatusNew
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt
	const query = `INSERT INTO maintenance_requests
	(id, request_number, title, description, equipment_id, requester_id, request_type, priority, status,
	 assigned_team_id, schedule_id, due_date, created_at, updated_at)
	VALUES (:id, :request_number, :title, :description, :equipment_id, :requester_id, :request_type, :priority, :status,
	 :assigned_team_id, :schedule_id, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create maintenance request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier. Missing rows return sql.ErrNoRows.
func (r *MaintenanceRequestRepository) GetByID(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests WHERE id = $1`
	var req models.MaintenanceRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get maintenance request: %w", err)
	}
	return &req, nil
}

// RequestPatch lists the columns a lifecycle operation writes. Nil fields are left untouched.
type RequestPatch struct {
	Status             *models.RequestStatus
	AssignedTeamID     *string
	AssignedToID       *string
	AssignedByID       *string
	StartedAt          *time.Time
	CompletedAt        *time.Time
	ClearCompletedAt   bool
	VerifiedAt         *time.Time
	VerifiedByID       *string
	CancelledAt        *time.Time
	CancelledByID      *string
	CancellationReason *string
	ResolutionNotes    *string
	LaborHours         *float64
	PartsUsed          *string
	ActualCost         *decimal.Decimal
	UpdatedAt          time.Time
}

func (p RequestPatch) assignments() ([]string, []interface{}) {
	sets := make([]string, 0, 16)
	args := make([]interface{}, 0, 16)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.AssignedTeamID != nil {
		add("assigned_team_id", *p.AssignedTeamID)
	}
	if p.AssignedToID != nil {
		add("assigned_to_id", *p.AssignedToID)
	}
	if p.AssignedByID != nil {
		add("assigned_by_id", *p.AssignedByID)
	}
	if p.StartedAt != nil {
		add("started_at", *p.StartedAt)
	}
	if p.CompletedAt != nil {
		add("completed_at", *p.CompletedAt)
	} else if p.ClearCompletedAt {
		sets = append(sets, "completed_at = NULL")
	}
	if p.VerifiedAt != nil {
		add("verified_at", *p.VerifiedAt)
	}
	if p.VerifiedByID != nil {
		add("verified_by_id", *p.VerifiedByID)
	}
	if p.CancelledAt != nil {
		add("cancelled_at", *p.CancelledAt)
	}
	if p.CancelledByID != nil {
		add("cancelled_by_id", *p.CancelledByID)
	}
	if p.CancellationReason != nil {
		add("cancellation_reason", *p.CancellationReason)
	}
	if p.ResolutionNotes != nil {
		add("resolution_notes", *p.ResolutionNotes)
	}
	if p.LaborHours != nil {
		add("labor_hours", *p.LaborHours)
	}
	if p.PartsUsed != nil {
		add("parts_used", *p.PartsUsed)
	}
	if p.ActualCost != nil {
		add("actual_cost", *p.ActualCost)
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	add("updated_at", updatedAt)
	return sets, args
}

// Update applies patch only while the row still holds the expected status and returns the stored row.
// A missing row yields sql.ErrNoRows; a row whose status moved yields ErrStatusChanged.
func (r *MaintenanceRequestRepository) Update(ctx context.Context, id string, expected models.RequestStatus, patch RequestPatch) (*models.MaintenanceRequest, error) {
	sets, args := patch.assignments()
	args = append(args, id, expected)
	query := fmt.Sprintf(`UPDATE maintenance_requests SET %s WHERE id = $%d AND status = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), requestColumns)

	var req models.MaintenanceRequest
	err := r.db.GetContext(ctx, &req, query, args...)
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update maintenance request: %w", err)
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM maintenance_requests WHERE id = $1)`, id); err != nil {
		return nil, fmt.Errorf("check maintenance request: %w", err)
	}
	if exists {
		return nil, ErrStatusChanged
	}
	return nil, sql.ErrNoRows
}

// UpdateFields applies a patch that carries no status change, whatever the current status is.
// A missing row yields sql.ErrNoRows.
func (r *MaintenanceRequestRepository) UpdateFields(ctx context.Context, id string, patch RequestPatch) (*models.MaintenanceRequest, error) {
	if patch.Status != nil {
		return nil, errors.New("update maintenance request fields: status changes need the guarded update")
	}
	sets, args := patch.assignments()
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE maintenance_requests SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), requestColumns)

	var req models.MaintenanceRequest
	if err := r.db.GetContext(ctx, &req, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update maintenance request fields: %w", err)
	}
	return &req, nil
}

func buildRequestConditions(filter models.RequestFilter) (string, []interface{}) {
	conditions := make([]string, 0, 8)
	args := make([]interface{}, 0, 10)

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		idx := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR request_number ILIKE $%d OR description ILIKE $%d)", idx, idx, idx))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}
	if filter.RequestType != "" {
		args = append(args, filter.RequestType)
		conditions = append(conditions, fmt.Sprintf("request_type = $%d", len(args)))
	}
	if filter.AssignedTeamID != "" {
		args = append(args, filter.AssignedTeamID)
		conditions = append(conditions, fmt.Sprintf("assigned_team_id = $%d", len(args)))
	}
	if filter.AssignedToID != "" {
		args = append(args, filter.AssignedToID)
		conditions = append(conditions, fmt.Sprintf("assigned_to_id = $%d", len(args)))
	}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", len(args)))
	}
	if filter.OverdueOnly {
		now := filter.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		args = append(args, now, pq.Array(closedStatuses()))
		conditions = append(conditions, fmt.Sprintf("due_date < $%d AND NOT (status = ANY($%d))", len(args)-1, len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func closedStatuses() []string {
	out := make([]string, len(models.ClosedRequestStatuses))
	for i, status := range models.ClosedRequestStatuses {
		out[i] = string(status)
	}
	return out
}

// List returns requests matching the filter, newest first, with the total count.
func (r *MaintenanceRequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.MaintenanceRequest, int, error) {
	where, args := buildRequestConditions(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM maintenance_requests`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count maintenance requests: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests%s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		requestColumns, where, limit, offset)

	var requests []models.MaintenanceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list maintenance requests: %w", err)
	}
	return requests, total, nil
}

// ListByStatuses returns every request in one of statuses ordered for the board.
func (r *MaintenanceRequestRepository) ListByStatuses(ctx context.Context, statuses []models.RequestStatus) ([]models.MaintenanceRequest, error) {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests WHERE status = ANY($1) ORDER BY due_date ASC NULLS LAST, created_at DESC`
	var requests []models.MaintenanceRequest
	if err := r.db.SelectContext(ctx, &requests, query, pq.Array(values)); err != nil {
		return nil, fmt.Errorf("list requests by status: %w", err)
	}
	return requests, nil
}

// CountOverdue counts open requests whose due date has passed at now.
func (r *MaintenanceRequestRepository) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM maintenance_requests WHERE due_date < $1 AND NOT (status = ANY($2))`
	var count int
	if err := r.db.GetContext(ctx, &count, query, now, pq.Array(closedStatuses())); err != nil {
		return 0, fmt.Errorf("count overdue requests: %w", err)
	}
	return count, nil
}

// ListOverdue returns open requests whose due date has passed at now, oldest due first.
func (r *MaintenanceRequestRepository) ListOverdue(ctx context.Context, now time.Time) ([]models.MaintenanceRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM maintenance_requests WHERE due_date < $1 AND NOT (status = ANY($2)) ORDER BY due_date ASC`
	var requests []models.MaintenanceRequest
	if err := r.db.SelectContext(ctx, &requests, query, now, pq.Array(closedStatuses())); err != nil {
		return nil, fmt.Errorf("list overdue requests: %w", err)
	}
	return requests, nil
}

// HasOpenForSchedule reports whether a non-closed request already exists for the schedule.
func (r *MaintenanceRequestRepository) HasOpenForSchedule(ctx context.Context, scheduleID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM maintenance_requests WHERE schedule_id = $1 AND NOT (status = ANY($2)))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, scheduleID, pq.Array(closedStatuses())); err != nil {
		return false, fmt.Errorf("check open schedule request: %w", err)
	}
	return exists, nil
}
