package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/gearguard/gearguard-api/internal/dto"
	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
	"github.com/gearguard/gearguard-api/pkg/jobs"
)

// Scheduled job names.
const (
	JobCheckOverdue       = "check_overdue"
	JobGeneratePreventive = "generate_preventive"
)

const jobLockPrefix = "gearguard:jobs:"

type jobLocker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key, token string) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// JobFunc executes one job and returns a JSON-serialisable summary.
type JobFunc func(ctx context.Context) (interface{}, error)

type registeredJob struct {
	auditAction string
	run         JobFunc
}

// JobRunner executes named jobs under a distributed lock and records each run.
type JobRunner struct {
	mu      sync.RWMutex
	jobs    map[string]registeredJob
	locks   jobLocker
	audit   auditLogger
	metrics *MetricsService
	clock   clockwork.Clock
	lockTTL time.Duration
	logger  *zap.Logger
}

// NewJobRunner constructs the runner.
func NewJobRunner(locks jobLocker, audit auditLogger, metrics *MetricsService, clock clockwork.Clock, lockTTL time.Duration, logger *zap.Logger) *JobRunner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobRunner{
		jobs:    make(map[string]registeredJob),
		locks:   locks,
		audit:   audit,
		metrics: metrics,
		clock:   clock,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// Register adds a job under name. auditAction is written to audit_logs after every successful run.
func (r *JobRunner) Register(name, auditAction string, run JobFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[name] = registeredJob{auditAction: auditAction, run: run}
}

// Names lists the registered jobs in sorted order.
func (r *JobRunner) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named job. A job already running elsewhere is reported as skipped.
func (r *JobRunner) Run(ctx context.Context, name string) (*dto.JobRunResponse, error) {
	r.mu.RLock()
	job, ok := r.jobs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown job "+name)
	}

	started := r.clock.Now()
	key := jobLockPrefix + name
	token := uuid.NewString()
	acquired, err := r.locks.Acquire(ctx, key, token, r.lockTTL)
	if err != nil {
		r.metrics.RecordJobRun(name, "error", r.clock.Since(started))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire job lock")
	}
	if !acquired {
		r.logger.Info("job skipped, lock held", zap.String("job", name))
		r.metrics.RecordJobRun(name, "skipped", r.clock.Since(started))
		return &dto.JobRunResponse{Job: name, Skipped: true}, nil
	}
	defer func() {
		if err := r.locks.Release(context.WithoutCancel(ctx), key, token); err != nil {
			r.logger.Warn("release job lock failed", zap.String("job", name), zap.Error(err))
		}
	}()

	result, err := job.run(ctx)
	if err != nil {
		r.logger.Error("job failed", zap.String("job", name), zap.Error(err))
		r.metrics.RecordJobRun(name, "error", r.clock.Since(started))
		return nil, err
	}

	summary := summaryMap(result)
	summary["executed_at"] = r.clock.Now().UTC().Format(time.RFC3339)
	r.recordAudit(ctx, name, job.auditAction, summary)
	r.metrics.RecordJobRun(name, "success", r.clock.Since(started))
	r.logger.Info("job finished", zap.String("job", name), zap.Any("summary", summary))
	return &dto.JobRunResponse{Job: name, Summary: summary}, nil
}

// Handler adapts the runner to the background queue. Skipped runs are not retried.
func (r *JobRunner) Handler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		_, err := r.Run(ctx, job.Type)
		return err
	}
}

func (r *JobRunner) recordAudit(ctx context.Context, name, action string, summary map[string]interface{}) {
	if r.audit == nil || action == "" {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		r.logger.Warn("encode job audit context failed", zap.String("job", name), zap.Error(err))
		return
	}
	entry := &models.AuditLog{
		Action:            action,
		EntityType:        "system",
		AdditionalContext: payload,
		CreatedAt:         r.clock.Now().UTC(),
	}
	if err := r.audit.CreateAuditLog(ctx, entry); err != nil {
		r.logger.Warn("write job audit log failed", zap.String("job", name), zap.Error(err))
	}
}

func summaryMap(result interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if result == nil {
		return out
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return make(map[string]interface{})
	}
	return out
}
