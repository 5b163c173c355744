package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gearguard/gearguard-api/internal/dto"
	"github.com/gearguard/gearguard-api/internal/models"
	"github.com/gearguard/gearguard-api/internal/service"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
	"github.com/gearguard/gearguard-api/pkg/response"
)

type requestRegistry interface {
	Create(ctx context.Context, payload dto.CreateRequestPayload, requesterID string) (*models.MaintenanceRequest, error)
	Get(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	List(ctx context.Context, query dto.RequestQuery) ([]models.MaintenanceRequest, *models.Pagination, error)
	Board(ctx context.Context) ([]service.BoardColumn, error)
	Timeline(ctx context.Context, id string) ([]models.MaintenanceLog, error)
	OverdueCount(ctx context.Context) (int, error)
}

type requestLifecycle interface {
	UpdateStatus(ctx context.Context, id string, next models.RequestStatus, actingUserID, notes string) (*service.LifecycleResult, error)
	AssignRequest(ctx context.Context, id, technicianID, assignedByID string, teamID *string) (*service.LifecycleResult, error)
	CompleteRequest(ctx context.Context, id, actingUserID string, in service.CompleteInput) (*service.LifecycleResult, error)
	AddWorkLog(ctx context.Context, id, userID string, in service.WorkLogInput) (*service.LifecycleResult, error)
}

type timelineExporter interface {
	ExportTimeline(ctx context.Context, id, format string) (*service.ExportFile, error)
}

// MaintenanceRequestHandler exposes maintenance request endpoints.
type MaintenanceRequestHandler struct {
	registry  requestRegistry
	lifecycle requestLifecycle
	exporter  timelineExporter
}

// NewMaintenanceRequestHandler builds the handler.
func NewMaintenanceRequestHandler(registry requestRegistry, lifecycle requestLifecycle, exporter timelineExporter) *MaintenanceRequestHandler {
	return &MaintenanceRequestHandler{registry: registry, lifecycle: lifecycle, exporter: exporter}
}

// Create godoc
// @Summary Create a maintenance request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *MaintenanceRequestHandler) Create(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload dto.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}
	req, err := h.registry.Create(c.Request.Context(), payload, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, req)
}

// List godoc
// @Summary List maintenance requests
// @Tags Requests
// @Produce json
// @Param search query string false "Title, number or description"
// @Param status query string false "Comma separated statuses"
// @Param priority query string false "Priority"
// @Param type query string false "corrective or preventive"
// @Param team_id query string false "Assigned team"
// @Param assigned_to query string false "Assigned technician"
// @Param requester_id query string false "Requester"
// @Param overdue query bool false "Only overdue requests"
// @Param created_from query string false "RFC3339 or YYYY-MM-DD"
// @Param created_to query string false "RFC3339 or YYYY-MM-DD"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *MaintenanceRequestHandler) List(c *gin.Context) {
	query, err := parseRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.registry.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Board godoc
// @Summary Open requests grouped by status
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/board [get]
func (h *MaintenanceRequestHandler) Board(c *gin.Context) {
	columns, err := h.registry.Board(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, columns, nil)
}

// OverdueCount godoc
// @Summary Number of overdue open requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /requests/overdue/count [get]
func (h *MaintenanceRequestHandler) OverdueCount(c *gin.Context) {
	count, err := h.registry.OverdueCount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"overdue_count": count}, nil)
}

// Get godoc
// @Summary Get a maintenance request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *MaintenanceRequestHandler) Get(c *gin.Context) {
	req, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, req, nil)
}

// UpdateStatus godoc
// @Summary Move a request to another status
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateStatusPayload true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/status [patch]
func (h *MaintenanceRequestHandler) UpdateStatus(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload dto.UpdateStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	if payload.Status.Valid() && !models.CanSetStatus(claims.Role, payload.Status) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "role "+string(claims.Role)+" cannot set status "+string(payload.Status)))
		return
	}
	result, err := h.lifecycle.UpdateStatus(c.Request.Context(), c.Param("id"), payload.Status, claims.UserID, payload.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	lifecycleJSON(c, result)
}

// Assign godoc
// @Summary Assign a new request to a technician
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.AssignRequestPayload true "Assignment"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/assign [post]
func (h *MaintenanceRequestHandler) Assign(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload dto.AssignRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	result, err := h.lifecycle.AssignRequest(c.Request.Context(), c.Param("id"), payload.TechnicianID, claims.UserID, payload.TeamID)
	if err != nil {
		response.Error(c, err)
		return
	}
	lifecycleJSON(c, result)
}

// Complete godoc
// @Summary Complete an in-progress request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.CompleteRequestPayload true "Resolution"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/complete [post]
func (h *MaintenanceRequestHandler) Complete(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload dto.CompleteRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid completion payload"))
		return
	}
	result, err := h.lifecycle.CompleteRequest(c.Request.Context(), c.Param("id"), claims.UserID, service.CompleteInput{
		ResolutionNotes: payload.ResolutionNotes,
		LaborHours:      payload.LaborHours,
		PartsUsed:       payload.PartsUsed,
		ActualCost:      payload.ActualCost,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	lifecycleJSON(c, result)
}

// AddWorkLog godoc
// @Summary Record a work note on a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.WorkLogPayload true "Work log"
// @Success 201 {object} response.Envelope
// @Router /requests/{id}/work-logs [post]
func (h *MaintenanceRequestHandler) AddWorkLog(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	var payload dto.WorkLogPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid work log payload"))
		return
	}
	result, err := h.lifecycle.AddWorkLog(c.Request.Context(), c.Param("id"), claims.UserID, service.WorkLogInput{
		Notes:      payload.Notes,
		LaborHours: payload.LaborHours,
		PartsUsed:  payload.PartsUsed,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, result, nil, auditMeta(result))
}

// Timeline godoc
// @Summary Request timeline, newest first
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/logs [get]
func (h *MaintenanceRequestHandler) Timeline(c *gin.Context) {
	logs, err := h.registry.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// ExportTimeline godoc
// @Summary Download a request timeline
// @Tags Requests
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /requests/{id}/logs/export [get]
func (h *MaintenanceRequestHandler) ExportTimeline(c *gin.Context) {
	file, err := h.exporter.ExportTimeline(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func lifecycleJSON(c *gin.Context, result *service.LifecycleResult) {
	response.JSON(c, http.StatusOK, result, nil, auditMeta(result))
}

// auditMeta flags responses whose state change committed without a timeline entry.
func auditMeta(result *service.LifecycleResult) map[string]interface{} {
	if result == nil || result.AuditLogSuccess {
		return nil
	}
	return map[string]interface{}{
		"warnings": []string{"change saved but audit log entry failed: " + result.AuditLogError},
	}
}

func parseRequestQuery(c *gin.Context) (dto.RequestQuery, error) {
	query := dto.RequestQuery{
		Search:         strings.TrimSpace(c.Query("search")),
		Priority:       models.Priority(c.Query("priority")),
		RequestType:    models.RequestType(c.Query("type")),
		AssignedTeamID: c.Query("team_id"),
		AssignedToID:   c.Query("assigned_to"),
		RequesterID:    c.Query("requester_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				query.Statuses = append(query.Statuses, models.RequestStatus(part))
			}
		}
	}
	if raw := c.Query("overdue"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "overdue must be a boolean")
		}
		query.OverdueOnly = overdue
	}
	var err error
	if query.CreatedFrom, err = parseDateParam(c.Query("created_from"), false); err != nil {
		return query, err
	}
	if query.CreatedTo, err = parseDateParam(c.Query("created_to"), true); err != nil {
		return query, err
	}
	if query.Page, err = parseIntParam(c.Query("page"), "page"); err != nil {
		return query, err
	}
	if query.PageSize, err = parseIntParam(c.Query("page_size"), "page_size"); err != nil {
		return query, err
	}
	return query, nil
}

// parseDateParam accepts RFC3339 or a bare date. A bare end date covers the whole day.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date '"+raw+"'")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseIntParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return value, nil
}
