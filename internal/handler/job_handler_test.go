package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gearguard/gearguard-api/internal/dto"
	"github.com/gearguard/gearguard-api/internal/models"
	appErrors "github.com/gearguard/gearguard-api/pkg/errors"
)

type jobRunnerMock struct {
	last    string
	skipped bool
	err     error
}

func (m *jobRunnerMock) Run(ctx context.Context, name string) (*dto.JobRunResponse, error) {
	m.last = name
	if m.err != nil {
		return nil, m.err
	}
	return &dto.JobRunResponse{Job: name, Skipped: m.skipped, Summary: map[string]interface{}{"overdue_count": 1}}, nil
}

func runJob(h *JobHandler, name string) int {
	c, w := newTestContext(http.MethodPost, "/internal/jobs/"+name, "", models.RoleAdmin)
	c.Params = gin.Params{{Key: "name", Value: name}}
	h.Run(c)
	return w.Code
}

func TestJobHandlerRun(t *testing.T) {
	runner := &jobRunnerMock{}
	h := NewJobHandler(runner)
	require.Equal(t, http.StatusOK, runJob(h, "check_overdue"))
	assert.Equal(t, "check_overdue", runner.last)

	runner.skipped = true
	require.Equal(t, http.StatusAccepted, runJob(h, "check_overdue"))

	runner.err = appErrors.Clone(appErrors.ErrNotFound, "unknown job nope")
	require.Equal(t, http.StatusNotFound, runJob(h, "nope"))
}

func TestMetricsHandlerReady(t *testing.T) {
	healthy := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
	})
	c, w := newTestContext(http.MethodGet, "/ready", "", "")
	healthy.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)

	degraded := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	})
	c, w = newTestContext(http.MethodGet, "/ready", "", "")
	degraded.Ready(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	c, w = newTestContext(http.MethodGet, "/metrics", "", "")
	degraded.Prometheus(c)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
