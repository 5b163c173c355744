package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
	"github.com/gearguard/gearguard-api/pkg/export"
)

type timelineReader interface {
	Get(ctx context.Context, id string) (*models.MaintenanceRequest, error)
	Timeline(ctx context.Context, id string) ([]models.MaintenanceLog, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders request timelines as downloadable files.
type ExportService struct {
	requests  timelineReader
	renderers map[string]datasetRenderer
	clock     clockwork.Clock
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with csv and pdf renderers.
func NewExportService(requests timelineReader, clock clockwork.Clock, logger *zap.Logger) *ExportService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		requests: requests,
		renderers: map[string]datasetRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		clock:  clock,
		logger: logger,
	}
}

// ExportTimeline renders the maintenance log of a request in format (csv or pdf).
func (s *ExportService) ExportTimeline(ctx context.Context, id, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format '%s'", format))
	}
	req, err := s.requests.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	logs, err := s.requests.Timeline(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(timelineDataset(req, logs))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timeline export")
	}
	s.logger.Info("timeline exported", zap.String("request_id", id), zap.String("format", format), zap.Int("entries", len(logs)))
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-timeline-%s.%s", req.RequestNumber, s.clock.Now().UTC().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

var timelineHeaders = []string{"Timestamp", "Action", "User", "Field", "Old Value", "New Value", "Notes"}

func timelineDataset(req *models.MaintenanceRequest, logs []models.MaintenanceLog) export.Dataset {
	rows := make([]map[string]string, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, map[string]string{
			"Timestamp": entry.CreatedAt.UTC().Format(time.RFC3339),
			"Action":    string(entry.Action),
			"User":      entry.UserID,
			"Field":     deref(entry.FieldChanged),
			"Old Value": deref(entry.OldValue),
			"New Value": deref(entry.NewValue),
			"Notes":     deref(entry.Notes),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s: %s", req.RequestNumber, req.Title),
		Headers: timelineHeaders,
		Rows:    rows,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
