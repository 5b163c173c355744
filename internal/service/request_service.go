package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/gearguard/gearguard-api/internal/dto"
	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

const (
	overdueCountCacheKey = "gearguard:requests:overdue_count"
	requestNumberRetries = 3
	uniqueViolation      = "23505"
)

type requestRegistryStore interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.MaintenanceRequest, int, error)
	ListByStatuses(ctx context.Context, statuses []models.RequestStatus) ([]models.MaintenanceRequest, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)
}

type timelineStore interface {
	ListByRequest(ctx context.Context, requestID string) ([]models.MaintenanceLog, error)
}

// RequestServiceConfig tunes listing and caching.
type RequestServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	OverdueCacheTTL time.Duration
}

// BoardColumn groups requests of one status for the kanban view.
type BoardColumn struct {
	Status   models.RequestStatus        `json:"status"`
	Count    int                         `json:"count"`
	Requests []models.MaintenanceRequest `json:"requests"`
}

// RequestService handles request intake and read models around the lifecycle engine.
type RequestService struct {
	store     requestRegistryStore
	logs      timelineStore
	audit     actionLogger
	cache     *CacheService
	validator *validator.Validate
	clock     clockwork.Clock
	cfg       RequestServiceConfig
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(store requestRegistryStore, logs timelineStore, audit actionLogger, cache *CacheService, validate *validator.Validate, clock clockwork.Clock, cfg RequestServiceConfig, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.OverdueCacheTTL <= 0 {
		cfg.OverdueCacheTTL = time.Minute
	}
	return &RequestService{
		store:     store,
		logs:      logs,
		audit:     audit,
		cache:     cache,
		validator: validate,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create opens a request in status new on behalf of requesterID.
func (s *RequestService) Create(ctx context.Context, payload dto.CreateRequestPayload, requesterID string) (*models.MaintenanceRequest, error) {
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Description = strings.TrimSpace(payload.Description)
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid maintenance request payload")
	}
	priority := payload.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	now := s.clock.Now().UTC()
	req := &models.MaintenanceRequest{
		Title:          payload.Title,
		Description:    payload.Description,
		EquipmentID:    payload.EquipmentID,
		RequesterID:    requesterID,
		RequestType:    payload.RequestType,
		Priority:       priority,
		Status:         models.RequestStatusNew,
		AssignedTeamID: payload.AssignedTeamID,
		DueDate:        payload.DueDate,
		CreatedAt:      now,
	}
	if err := s.insert(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create maintenance request")
	}
	s.cache.Invalidate(ctx, overdueCountCacheKey)
	s.audit.LogAction(ctx, req.ID, requesterID, models.LogActionCreated, AuditFields{
		FieldChanged: "status",
		NewValue:     string(models.RequestStatusNew),
	})
	req.IsOverdue = req.Overdue(now)
	return req, nil
}

// CreateGenerated stores a request built by a scheduled job. Status is forced to new.
func (s *RequestService) CreateGenerated(ctx context.Context, req *models.MaintenanceRequest) error {
	req.Status = models.RequestStatusNew
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.clock.Now().UTC()
	}
	if err := s.insert(ctx, req); err != nil {
		return fmt.Errorf("create generated request: %w", err)
	}
	s.audit.LogAction(ctx, req.ID, req.RequesterID, models.LogActionCreated, AuditFields{
		FieldChanged: "status",
		NewValue:     string(models.RequestStatusNew),
		Notes:        "generated from preventive schedule",
	})
	return nil
}

// insert assigns a fresh request number, retrying when one collides.
func (s *RequestService) insert(ctx context.Context, req *models.MaintenanceRequest) error {
	var err error
	for attempt := 0; attempt < requestNumberRetries; attempt++ {
		req.ID = ""
		req.RequestNumber = NewRequestNumber(req.CreatedAt)
		if err = s.store.Create(ctx, req); err == nil {
			return nil
		}
		var pqErr *pq.Error
		if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
			return err
		}
		s.logger.Debug("request number collision", zap.String("request_number", req.RequestNumber))
	}
	return err
}

// NewRequestNumber formats a human-readable request number for the given day.
func NewRequestNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("REQ-%s-%s", at.UTC().Format("20060102"), suffix)
}

// Get returns a request with its overdue flag computed.
func (s *RequestService) Get(ctx context.Context, id string) (*models.MaintenanceRequest, error) {
	req, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "maintenance request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load maintenance request")
	}
	req.IsOverdue = req.Overdue(s.clock.Now())
	return req, nil
}

// List returns a page of requests matching query, newest first.
func (s *RequestService) List(ctx context.Context, query dto.RequestQuery) ([]models.MaintenanceRequest, *models.Pagination, error) {
	for _, status := range query.Statuses {
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status '%s'", status))
		}
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	now := s.clock.Now().UTC()
	filter := models.RequestFilter{
		Search:         query.Search,
		Statuses:       query.Statuses,
		Priority:       query.Priority,
		RequestType:    query.RequestType,
		AssignedTeamID: query.AssignedTeamID,
		AssignedToID:   query.AssignedToID,
		RequesterID:    query.RequesterID,
		OverdueOnly:    query.OverdueOnly,
		CreatedFrom:    query.CreatedFrom,
		CreatedTo:      query.CreatedTo,
		Now:            now,
		Limit:          size,
		Offset:         (page - 1) * size,
	}
	requests, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list maintenance requests")
	}
	for i := range requests {
		requests[i].IsOverdue = requests[i].Overdue(now)
	}
	pagination := &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}
	return requests, pagination, nil
}

// Board groups the open requests by status in lifecycle order.
func (s *RequestService) Board(ctx context.Context) ([]BoardColumn, error) {
	requests, err := s.store.ListByStatuses(ctx, models.BoardStatuses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request board")
	}
	now := s.clock.Now()
	columns := make([]BoardColumn, len(models.BoardStatuses))
	index := make(map[models.RequestStatus]int, len(models.BoardStatuses))
	for i, status := range models.BoardStatuses {
		columns[i] = BoardColumn{Status: status, Requests: []models.MaintenanceRequest{}}
		index[status] = i
	}
	for _, req := range requests {
		i, ok := index[req.Status]
		if !ok {
			continue
		}
		req.IsOverdue = req.Overdue(now)
		columns[i].Requests = append(columns[i].Requests, req)
		columns[i].Count++
	}
	return columns, nil
}

// Timeline returns the maintenance log of a request, newest first.
func (s *RequestService) Timeline(ctx context.Context, id string) ([]models.MaintenanceLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByRequest(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request timeline")
	}
	if logs == nil {
		logs = []models.MaintenanceLog{}
	}
	return logs, nil
}

// OverdueCount returns the number of open requests past their due date.
func (s *RequestService) OverdueCount(ctx context.Context) (int, error) {
	var count int
	if s.cache.Get(ctx, overdueCountCacheKey, &count) {
		return count, nil
	}
	count, err := s.store.CountOverdue(ctx, s.clock.Now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count overdue requests")
	}
	s.cache.Set(ctx, overdueCountCacheKey, count, s.cfg.OverdueCacheTTL)
	return count, nil
}
