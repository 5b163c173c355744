package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearguard/gearguard-api/internal/dto"
	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

type registryStoreStub struct {
	mu         sync.Mutex
	created    []models.MaintenanceRequest
	createErrs []error
	items      map[string]*models.MaintenanceRequest
	listed     []models.MaintenanceRequest
	total      int
	lastFilter models.RequestFilter
	overdue    int
	countCalls int
}

func newRegistryStoreStub() *registryStoreStub {
	return &registryStoreStub{items: make(map[string]*models.MaintenanceRequest)}
}

func (s *registryStoreStub) Create(_ context.Context, req *models.MaintenanceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		return err
	}
	req.ID = "req-new"
	s.created = append(s.created, *req)
	s.items[req.ID] = req
	return nil
}

func (s *registryStoreStub) GetByID(_ context.Context, id string) (*models.MaintenanceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (s *registryStoreStub) List(_ context.Context, filter models.RequestFilter) ([]models.MaintenanceRequest, int, error) {
	s.lastFilter = filter
	return s.listed, s.total, nil
}

func (s *registryStoreStub) ListByStatuses(_ context.Context, statuses []models.RequestStatus) ([]models.MaintenanceRequest, error) {
	return s.listed, nil
}

func (s *registryStoreStub) CountOverdue(_ context.Context, _ time.Time) (int, error) {
	s.countCalls++
	return s.overdue, nil
}

type timelineStoreStub struct {
	logs []models.MaintenanceLog
	err  error
}

func (s *timelineStoreStub) ListByRequest(_ context.Context, _ string) ([]models.MaintenanceLog, error) {
	return s.logs, s.err
}

type requestServiceFixture struct {
	svc   *RequestService
	store *registryStoreStub
	logs  *timelineStoreStub
	sink  *memoryLogSink
	cache *memoryCacheRepo
	clock *clockwork.FakeClock
}

func newRequestServiceFixture() *requestServiceFixture {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	store := newRegistryStoreStub()
	logs := &timelineStoreStub{}
	sink := &memoryLogSink{}
	cacheRepo := newMemoryCacheRepo()
	svc := NewRequestService(store, logs, NewAuditTrail(sink, clock, nil, nil), NewCacheService(cacheRepo, nil, 0, nil), nil, clock, RequestServiceConfig{}, nil)
	return &requestServiceFixture{svc: svc, store: store, logs: logs, sink: sink, cache: cacheRepo, clock: clock}
}

func validCreatePayload() dto.CreateRequestPayload {
	return dto.CreateRequestPayload{
		EquipmentID: "6f1c7c1e-2b7a-4f51-9b0e-0d3c2a1f9e11",
		Title:       "  Hydraulic leak  ",
		Description: "Oil pooling under press 4",
		RequestType: models.RequestTypeCorrective,
	}
}

var requestNumberPattern = regexp.MustCompile(`^REQ-\d{8}-[0-9A-F]{4}$`)

func TestRequestServiceCreateDefaults(t *testing.T) {
	f := newRequestServiceFixture()
	f.cache.items[overdueCountCacheKey] = []byte("3")

	req, err := f.svc.Create(context.Background(), validCreatePayload(), "requester-1")
	require.NoError(t, err)
	assert.Equal(t, "Hydraulic leak", req.Title)
	assert.Equal(t, models.RequestStatusNew, req.Status)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.Equal(t, "requester-1", req.RequesterID)
	assert.Regexp(t, requestNumberPattern, req.RequestNumber)
	assert.Contains(t, req.RequestNumber, "20250301")
	assert.False(t, f.cache.has(overdueCountCacheKey))

	require.Len(t, f.sink.entries, 1)
	assert.Equal(t, models.LogActionCreated, f.sink.entries[0].Action)
	assert.Equal(t, "req-new", f.sink.entries[0].RequestID)
}

func TestRequestServiceCreateValidation(t *testing.T) {
	cases := map[string]func(p *dto.CreateRequestPayload){
		"blank title":    func(p *dto.CreateRequestPayload) { p.Title = "   " },
		"bad equipment":  func(p *dto.CreateRequestPayload) { p.EquipmentID = "press-4" },
		"bad type":       func(p *dto.CreateRequestPayload) { p.RequestType = "emergency" },
		"bad priority":   func(p *dto.CreateRequestPayload) { p.Priority = "urgent" },
		"no description": func(p *dto.CreateRequestPayload) { p.Description = "" },
	}
	for name, mutate := range cases {
		f := newRequestServiceFixture()
		payload := validCreatePayload()
		mutate(&payload)
		_, err := f.svc.Create(context.Background(), payload, "requester-1")
		require.True(t, appErrors.Is(err, appErrors.ErrValidation), name)
		require.Empty(t, f.store.created, name)
	}
}

func TestRequestServiceCreateRetriesNumberCollision(t *testing.T) {
	f := newRequestServiceFixture()
	f.store.createErrs = []error{&pq.Error{Code: uniqueViolation}}

	req, err := f.svc.Create(context.Background(), validCreatePayload(), "requester-1")
	require.NoError(t, err)
	require.Len(t, f.store.created, 1)
	require.Regexp(t, requestNumberPattern, req.RequestNumber)
}

func TestRequestServiceCreateStopsOnOtherErrors(t *testing.T) {
	f := newRequestServiceFixture()
	f.store.createErrs = []error{errors.New("connection reset")}

	_, err := f.svc.Create(context.Background(), validCreatePayload(), "requester-1")
	require.True(t, appErrors.Is(err, appErrors.ErrInternal))
	require.Empty(t, f.sink.entries)
}

func TestRequestServiceCreateGeneratedForcesNew(t *testing.T) {
	f := newRequestServiceFixture()
	req := &models.MaintenanceRequest{Title: "Preventive: Lube", Status: models.RequestStatusCompleted, RequesterID: "planner-1"}

	require.NoError(t, f.svc.CreateGenerated(context.Background(), req))
	require.Equal(t, models.RequestStatusNew, req.Status)
	require.Equal(t, models.PriorityMedium, req.Priority)
	require.Equal(t, f.clock.Now().UTC(), req.CreatedAt)
	require.Len(t, f.sink.entries, 1)
}

func TestRequestServiceGetComputesOverdue(t *testing.T) {
	f := newRequestServiceFixture()
	due := f.clock.Now().Add(-time.Hour)
	f.store.items["r1"] = &models.MaintenanceRequest{ID: "r1", Status: models.RequestStatusInProgress, DueDate: &due}
	f.store.items["r2"] = &models.MaintenanceRequest{ID: "r2", Status: models.RequestStatusCompleted, DueDate: &due}

	open, err := f.svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.True(t, open.IsOverdue)

	done, err := f.svc.Get(context.Background(), "r2")
	require.NoError(t, err)
	require.False(t, done.IsOverdue)

	_, err = f.svc.Get(context.Background(), "missing")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRequestServiceListPagination(t *testing.T) {
	f := newRequestServiceFixture()
	f.store.listed = []models.MaintenanceRequest{{ID: "a", Status: models.RequestStatusNew}}
	f.store.total = 25

	items, pagination, err := f.svc.List(context.Background(), dto.RequestQuery{Page: 3, PageSize: 500})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 100, f.store.lastFilter.Limit)
	require.Equal(t, 200, f.store.lastFilter.Offset)
	require.Equal(t, 1, pagination.TotalPages)

	_, pagination, err = f.svc.List(context.Background(), dto.RequestQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, pagination.Page)
	require.Equal(t, 10, pagination.PageSize)
	require.Equal(t, 3, pagination.TotalPages)
	require.Equal(t, 0, f.store.lastFilter.Offset)

	_, _, err = f.svc.List(context.Background(), dto.RequestQuery{Statuses: []models.RequestStatus{"archived"}})
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRequestServiceBoardGroupsByStatus(t *testing.T) {
	f := newRequestServiceFixture()
	f.store.listed = []models.MaintenanceRequest{
		{ID: "a", Status: models.RequestStatusNew},
		{ID: "b", Status: models.RequestStatusInProgress},
		{ID: "c", Status: models.RequestStatusNew},
		{ID: "d", Status: models.RequestStatusVerified},
	}

	columns, err := f.svc.Board(context.Background())
	require.NoError(t, err)
	require.Len(t, columns, len(models.BoardStatuses))
	require.Equal(t, models.RequestStatusNew, columns[0].Status)
	require.Equal(t, 2, columns[0].Count)
	require.Equal(t, 0, columns[1].Count)
	require.NotNil(t, columns[1].Requests)
	require.Equal(t, 1, columns[2].Count)
}

func TestRequestServiceTimeline(t *testing.T) {
	f := newRequestServiceFixture()
	_, err := f.svc.Timeline(context.Background(), "missing")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	f.store.items["r1"] = &models.MaintenanceRequest{ID: "r1", Status: models.RequestStatusNew}
	logs, err := f.svc.Timeline(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, logs)
	require.Empty(t, logs)
}

func TestRequestServiceOverdueCountIsCached(t *testing.T) {
	f := newRequestServiceFixture()
	f.store.overdue = 4
	ctx := context.Background()

	count, err := f.svc.OverdueCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	f.store.overdue = 9
	count, err = f.svc.OverdueCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, count)
	require.Equal(t, 1, f.store.countCalls)
}

func TestNewRequestNumberFormat(t *testing.T) {
	number := NewRequestNumber(time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	require.Regexp(t, requestNumberPattern, number)
	require.Contains(t, number, "REQ-20251231-")
}
