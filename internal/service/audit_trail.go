package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/gearguard/gearguard-api/internal/models"
)

type maintenanceLogSink interface {
	Create(ctx context.Context, entry *models.MaintenanceLog) error
}

// AuditFields carries the optional columns of a maintenance log entry. Empty strings are stored as NULL.
type AuditFields struct {
	FieldChanged string
	OldValue     string
	NewValue     string
	Notes        string
}

// AuditOutcome reports whether a log entry was persisted.
type AuditOutcome struct {
	Success bool
	Error   string
}

// AuditTrail appends maintenance log entries on a best-effort basis.
type AuditTrail struct {
	sink    maintenanceLogSink
	clock   clockwork.Clock
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuditTrail constructs the audit trail writer.
func NewAuditTrail(sink maintenanceLogSink, clock clockwork.Clock, metrics *MetricsService, logger *zap.Logger) *AuditTrail {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if nilSink(sink) {
		sink = nil
	}
	return &AuditTrail{sink: sink, clock: clock, metrics: metrics, logger: logger}
}

// LogAction appends one entry for requestID. It never returns an error and never panics;
// failures come back as an unsuccessful outcome.
func (a *AuditTrail) LogAction(ctx context.Context, requestID, userID string, action models.LogAction, fields AuditFields) (outcome AuditOutcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = a.fail(requestID, action, fmt.Errorf("audit sink panic: %v", r))
		}
	}()
	if a.sink == nil {
		return a.fail(requestID, action, errors.New("audit sink unavailable"))
	}
	entry := &models.MaintenanceLog{
		RequestID:    requestID,
		UserID:       userID,
		Action:       action,
		FieldChanged: optionalString(fields.FieldChanged),
		OldValue:     optionalString(fields.OldValue),
		NewValue:     optionalString(fields.NewValue),
		Notes:        optionalString(fields.Notes),
		CreatedAt:    a.clock.Now().UTC(),
	}
	if err := a.sink.Create(ctx, entry); err != nil {
		return a.fail(requestID, action, err)
	}
	return AuditOutcome{Success: true}
}

func (a *AuditTrail) fail(requestID string, action models.LogAction, err error) AuditOutcome {
	a.logger.Warn("maintenance log write failed",
		zap.String("request_id", requestID),
		zap.String("action", string(action)),
		zap.Error(err),
	)
	a.metrics.RecordAuditFailure(string(action))
	return AuditOutcome{Success: false, Error: err.Error()}
}

// nilSink catches a nil pointer stored in the interface, such as an unset *MaintenanceLogRepository.
func nilSink(sink maintenanceLogSink) bool {
	if sink == nil {
		return true
	}
	v := reflect.ValueOf(sink)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
