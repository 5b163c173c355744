package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

type overdueRequestStore interface {
	ListOverdue(ctx context.Context, now time.Time) ([]models.MaintenanceRequest, error)
}

type teamLeaderLookup interface {
	LeaderID(ctx context.Context, teamID string) (string, error)
}

type notificationWriter interface {
	CreateBatch(ctx context.Context, notifications []models.Notification) error
}

// OverdueSummary is the result of one overdue sweep.
type OverdueSummary struct {
	OverdueCount      int `json:"overdue_count"`
	NotificationsSent int `json:"notifications_sent"`
}

// OverdueService notifies assignees and team leaders about requests past their due date.
type OverdueService struct {
	requests      overdueRequestStore
	teams         teamLeaderLookup
	notifications notificationWriter
	cache         *CacheService
	clock         clockwork.Clock
	logger        *zap.Logger
}

// NewOverdueService constructs the service.
func NewOverdueService(requests overdueRequestStore, teams teamLeaderLookup, notifications notificationWriter, cache *CacheService, clock clockwork.Clock, logger *zap.Logger) *OverdueService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueService{requests: requests, teams: teams, notifications: notifications, cache: cache, clock: clock, logger: logger}
}

// CheckOverdue runs one sweep. A failed notification insert is logged and does not fail the sweep.
func (s *OverdueService) CheckOverdue(ctx context.Context) (*OverdueSummary, error) {
	now := s.clock.Now().UTC()
	overdue, err := s.requests.ListOverdue(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overdue requests")
	}

	leaders := make(map[string]string)
	batch := make([]models.Notification, 0, len(overdue))
	for i := range overdue {
		req := &overdue[i]
		message := fmt.Sprintf("Request %s is %d day(s) overdue: %s", req.RequestNumber, daysOverdue(*req.DueDate, now), req.Title)

		assignee := ""
		if req.AssignedToID != nil && *req.AssignedToID != "" {
			assignee = *req.AssignedToID
			batch = append(batch, requestNotification(assignee, models.NotificationRequestOverdue, "Overdue Request", message, req.ID))
		}
		if req.AssignedTeamID == nil || *req.AssignedTeamID == "" {
			continue
		}
		leader, ok := leaders[*req.AssignedTeamID]
		if !ok {
			leader, err = s.teams.LeaderID(ctx, *req.AssignedTeamID)
			if err != nil {
				s.logger.Warn("team leader lookup failed", zap.String("team_id", *req.AssignedTeamID), zap.Error(err))
			}
			leaders[*req.AssignedTeamID] = leader
		}
		if leader != "" && leader != assignee {
			batch = append(batch, requestNotification(leader, models.NotificationRequestOverdue, "Team Request Overdue", message, req.ID))
		}
	}

	if err := s.notifications.CreateBatch(ctx, batch); err != nil {
		s.logger.Error("insert overdue notifications failed", zap.Int("count", len(batch)), zap.Error(err))
	}
	s.cache.Set(ctx, overdueCountCacheKey, len(overdue), 0)

	return &OverdueSummary{OverdueCount: len(overdue), NotificationsSent: len(batch)}, nil
}

func daysOverdue(due, now time.Time) int {
	days := int(now.Sub(due) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}

func requestNotification(userID string, kind models.NotificationType, title, message, requestID string) models.Notification {
	refType := models.ReferenceMaintenanceRequest
	refID := requestID
	return models.Notification{
		UserID:        userID,
		Type:          kind,
		Title:         title,
		Message:       message,
		ReferenceType: &refType,
		ReferenceID:   &refID,
	}
}
