package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearguard/gearguard-api/internal/models"
)

type scheduleStoreStub struct {
	due       []models.PreventiveSchedule
	cutoff    time.Time
	marked    map[string]time.Time
	markErr   error
	generated time.Time
}

func (s *scheduleStoreStub) ListDue(_ context.Context, cutoff time.Time) ([]models.PreventiveSchedule, error) {
	s.cutoff = cutoff
	return s.due, nil
}

func (s *scheduleStoreStub) MarkGenerated(_ context.Context, id string, nextDue, generatedAt time.Time) error {
	if s.markErr != nil {
		return s.markErr
	}
	if s.marked == nil {
		s.marked = make(map[string]time.Time)
	}
	s.marked[id] = nextDue
	s.generated = generatedAt
	return nil
}

type openCheckerStub map[string]bool

func (s openCheckerStub) HasOpenForSchedule(_ context.Context, scheduleID string) (bool, error) {
	return s[scheduleID], nil
}

type generatedCreatorStub struct {
	created []models.MaintenanceRequest
	err     error
}

func (s *generatedCreatorStub) CreateGenerated(_ context.Context, req *models.MaintenanceRequest) error {
	if s.err != nil {
		return s.err
	}
	req.ID = "gen-" + *req.ScheduleID
	req.Status = models.RequestStatusNew
	s.created = append(s.created, *req)
	return nil
}

type preventiveFixture struct {
	svc       *PreventiveService
	schedules *scheduleStoreStub
	creator   *generatedCreatorStub
	sink      *notificationSinkStub
	clock     *clockwork.FakeClock
}

func newPreventiveFixture(open openCheckerStub, schedules ...models.PreventiveSchedule) *preventiveFixture {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 2, 0, 0, 0, time.UTC))
	store := &scheduleStoreStub{due: schedules}
	creator := &generatedCreatorStub{}
	sink := &notificationSinkStub{}
	teams := &teamLeaderStub{leaders: map[string]string{"team-a": "leader-a"}}
	svc := NewPreventiveService(store, open, creator, teams, sink, 0, clock, nil)
	return &preventiveFixture{svc: svc, schedules: store, creator: creator, sink: sink, clock: clock}
}

func monthlySchedule(id string) models.PreventiveSchedule {
	return models.PreventiveSchedule{
		ID:                   id,
		Name:                 "Lubricate spindle",
		EquipmentID:          "eq-1",
		EquipmentName:        "CNC Mill",
		EquipmentStatus:      "operational",
		EquipmentDefaultTeam: stringRef("team-a"),
		FrequencyType:        models.FrequencyMonthly,
		FrequencyValue:       1,
		NextDue:              time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedBy:            "planner-1",
	}
}

func TestGeneratePreventiveCreatesAndAdvances(t *testing.T) {
	f := newPreventiveFixture(openCheckerStub{}, monthlySchedule("s1"))

	summary, err := f.svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PreventiveSummary{SchedulesProcessed: 1, RequestsCreated: 1, SchedulesUpdated: 1}, *summary)
	assert.Equal(t, f.clock.Now().UTC().Add(30*24*time.Hour), f.schedules.cutoff)

	require.Len(t, f.creator.created, 1)
	req := f.creator.created[0]
	assert.Equal(t, "Preventive: Lubricate spindle", req.Title)
	assert.Equal(t, "Scheduled preventive maintenance for CNC Mill", req.Description)
	assert.Equal(t, models.RequestTypePreventive, req.RequestType)
	assert.Equal(t, "planner-1", req.RequesterID)
	assert.Equal(t, "team-a", *req.AssignedTeamID)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), *req.DueDate)

	assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), f.schedules.marked["s1"])
	assert.Equal(t, f.clock.Now().UTC(), f.schedules.generated)

	sent := f.sink.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "leader-a", sent[0].UserID)
	assert.Equal(t, models.NotificationRequestCreated, sent[0].Type)
	assert.Equal(t, "Preventive maintenance generated: Lubricate spindle", sent[0].Message)
	assert.Equal(t, "gen-s1", *sent[0].ReferenceID)
}

func TestGeneratePreventiveSkipsScrappedAndOpen(t *testing.T) {
	scrapped := monthlySchedule("s1")
	scrapped.EquipmentStatus = models.EquipmentStatusScrapped
	open := monthlySchedule("s2")
	f := newPreventiveFixture(openCheckerStub{"s2": true}, scrapped, open)

	summary, err := f.svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PreventiveSummary{SchedulesProcessed: 2}, *summary)
	assert.Empty(t, f.creator.created)
	assert.Empty(t, f.schedules.marked)
}

func TestGeneratePreventiveSkipsUnknownFrequency(t *testing.T) {
	odd := monthlySchedule("s1")
	odd.FrequencyType = "fortnightly"
	f := newPreventiveFixture(openCheckerStub{}, odd, monthlySchedule("s2"))

	summary, err := f.svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PreventiveSummary{SchedulesProcessed: 2, RequestsCreated: 1, SchedulesUpdated: 1}, *summary)
	require.Len(t, f.creator.created, 1)
	assert.Equal(t, "gen-s2", f.creator.created[0].ID)
	assert.NotContains(t, f.schedules.marked, "s1")
}

func TestGeneratePreventiveContinuesAfterFailures(t *testing.T) {
	f := newPreventiveFixture(openCheckerStub{}, monthlySchedule("s1"))
	f.schedules.markErr = errors.New("update failed")

	summary, err := f.svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RequestsCreated)
	assert.Equal(t, 0, summary.SchedulesUpdated)

	f = newPreventiveFixture(openCheckerStub{}, monthlySchedule("s1"), monthlySchedule("s2"))
	f.creator.err = errors.New("insert failed")
	summary, err = f.svc.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PreventiveSummary{SchedulesProcessed: 2}, *summary)
}

func TestGeneratedRequestUsesScheduleDescription(t *testing.T) {
	schedule := monthlySchedule("s1")
	schedule.Description = stringRef("Grease all fittings")
	schedule.EquipmentDefaultTeam = nil
	req := generatedRequest(&schedule)
	assert.Equal(t, "Grease all fittings", req.Description)
	assert.Nil(t, req.AssignedTeamID)
}
