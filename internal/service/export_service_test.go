package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

type timelineReaderStub struct {
	req  *models.MaintenanceRequest
	logs []models.MaintenanceLog
}

func (s *timelineReaderStub) Get(_ context.Context, id string) (*models.MaintenanceRequest, error) {
	if s.req == nil || s.req.ID != id {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "maintenance request not found")
	}
	return s.req, nil
}

func (s *timelineReaderStub) Timeline(_ context.Context, _ string) ([]models.MaintenanceLog, error) {
	return s.logs, nil
}

func newExportFixture() *ExportService {
	at := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	reader := &timelineReaderStub{
		req: &models.MaintenanceRequest{ID: "r1", RequestNumber: "REQ-20250301-AB12", Title: "Belt slipping"},
		logs: []models.MaintenanceLog{
			{Action: models.LogActionStatusChanged, UserID: "tech-1", FieldChanged: stringRef("status"), OldValue: stringRef("assigned"), NewValue: stringRef("in_progress"), CreatedAt: at},
			{Action: models.LogActionCreated, UserID: "requester-1", Notes: stringRef("reported, line 2"), CreatedAt: at.Add(-time.Hour)},
		},
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC))
	return NewExportService(reader, clock, nil)
}

func TestExportTimelineCSV(t *testing.T) {
	svc := newExportFixture()

	file, err := svc.ExportTimeline(context.Background(), "r1", "")
	require.NoError(t, err)
	require.Equal(t, "REQ-20250301-AB12-timeline-20250302.csv", file.Filename)
	require.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Timestamp,Action,User,Field,Old Value,New Value,Notes", lines[0])
	require.Equal(t, "2025-03-01T08:30:00Z,status_changed,tech-1,status,assigned,in_progress,", lines[1])
	require.Equal(t, `2025-03-01T07:30:00Z,created,requester-1,,,,"reported, line 2"`, lines[2])
}

func TestExportTimelinePDF(t *testing.T) {
	file, err := newExportFixture().ExportTimeline(context.Background(), "r1", "PDF")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	require.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportTimelineErrors(t *testing.T) {
	svc := newExportFixture()

	_, err := svc.ExportTimeline(context.Background(), "r1", "xlsx")
	require.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.ExportTimeline(context.Background(), "missing", "csv")
	require.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
