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

type preventiveScheduleStore interface {
	ListDue(ctx context.Context, cutoff time.Time) ([]models.PreventiveSchedule, error)
	MarkGenerated(ctx context.Context, id string, nextDue, generatedAt time.Time) error
}

type openScheduleChecker interface {
	HasOpenForSchedule(ctx context.Context, scheduleID string) (bool, error)
}

type generatedRequestCreator interface {
	CreateGenerated(ctx context.Context, req *models.MaintenanceRequest) error
}

// PreventiveSummary is the result of one generation pass.
type PreventiveSummary struct {
	SchedulesProcessed int `json:"schedules_processed"`
	RequestsCreated    int `json:"requests_created"`
	SchedulesUpdated   int `json:"schedules_updated"`
}

// PreventiveService turns due preventive schedules into maintenance requests.
type PreventiveService struct {
	schedules     preventiveScheduleStore
	open          openScheduleChecker
	creator       generatedRequestCreator
	teams         teamLeaderLookup
	notifications notificationWriter
	lookahead     time.Duration
	clock         clockwork.Clock
	logger        *zap.Logger
}

// NewPreventiveService constructs the service. lookahead defaults to 30 days.
func NewPreventiveService(schedules preventiveScheduleStore, open openScheduleChecker, creator generatedRequestCreator, teams teamLeaderLookup, notifications notificationWriter, lookahead time.Duration, clock clockwork.Clock, logger *zap.Logger) *PreventiveService {
	if lookahead <= 0 {
		lookahead = 30 * 24 * time.Hour
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreventiveService{
		schedules:     schedules,
		open:          open,
		creator:       creator,
		teams:         teams,
		notifications: notifications,
		lookahead:     lookahead,
		clock:         clock,
		logger:        logger,
	}
}

// Generate creates one request per due schedule. Failures on a single schedule are logged and skipped.
func (s *PreventiveService) Generate(ctx context.Context) (*PreventiveSummary, error) {
	now := s.clock.Now().UTC()
	due, err := s.schedules.ListDue(ctx, now.Add(s.lookahead))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list due schedules")
	}

	summary := &PreventiveSummary{SchedulesProcessed: len(due)}
	for i := range due {
		schedule := &due[i]
		log := s.logger.With(zap.String("schedule_id", schedule.ID))
		if schedule.EquipmentStatus == models.EquipmentStatusScrapped {
			continue
		}
		nextDue, ok := schedule.Advance(schedule.NextDue)
		if !ok {
			log.Warn("unknown schedule frequency, skipping", zap.String("frequency_type", string(schedule.FrequencyType)))
			continue
		}
		open, err := s.open.HasOpenForSchedule(ctx, schedule.ID)
		if err != nil {
			log.Warn("open request check failed", zap.Error(err))
			continue
		}
		if open {
			continue
		}

		req := generatedRequest(schedule)
		if err := s.creator.CreateGenerated(ctx, req); err != nil {
			log.Error("create preventive request failed", zap.Error(err))
			continue
		}
		summary.RequestsCreated++

		if err := s.schedules.MarkGenerated(ctx, schedule.ID, nextDue, now); err != nil {
			log.Error("advance schedule failed", zap.Error(err))
		} else {
			summary.SchedulesUpdated++
		}

		s.notifyLeader(ctx, schedule, req.ID, log)
	}
	return summary, nil
}

func (s *PreventiveService) notifyLeader(ctx context.Context, schedule *models.PreventiveSchedule, requestID string, log *zap.Logger) {
	if schedule.EquipmentDefaultTeam == nil || *schedule.EquipmentDefaultTeam == "" {
		return
	}
	leader, err := s.teams.LeaderID(ctx, *schedule.EquipmentDefaultTeam)
	if err != nil {
		log.Warn("team leader lookup failed", zap.Error(err))
		return
	}
	if leader == "" {
		return
	}
	notification := requestNotification(leader, models.NotificationRequestCreated, "New Preventive Maintenance",
		fmt.Sprintf("Preventive maintenance generated: %s", schedule.Name), requestID)
	if err := s.notifications.CreateBatch(ctx, []models.Notification{notification}); err != nil {
		log.Warn("preventive notification failed", zap.Error(err))
	}
}

func generatedRequest(schedule *models.PreventiveSchedule) *models.MaintenanceRequest {
	description := fmt.Sprintf("Scheduled preventive maintenance for %s", schedule.EquipmentName)
	if schedule.Description != nil && *schedule.Description != "" {
		description = *schedule.Description
	}
	due := schedule.NextDue
	scheduleID := schedule.ID
	return &models.MaintenanceRequest{
		Title:          "Preventive: " + schedule.Name,
		Description:    description,
		EquipmentID:    schedule.EquipmentID,
		RequesterID:    schedule.CreatedBy,
		RequestType:    models.RequestTypePreventive,
		Priority:       models.PriorityMedium,
		AssignedTeamID: schedule.EquipmentDefaultTeam,
		ScheduleID:     &scheduleID,
		DueDate:        &due,
	}
}
