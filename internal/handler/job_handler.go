package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gearguard/gearguard-api/internal/dto"
	"github.com/gearguard/gearguard-api/pkg/response"
)

type jobRunner interface {
	Run(ctx context.Context, name string) (*dto.JobRunResponse, error)
}

// JobHandler triggers scheduled jobs on demand.
type JobHandler struct {
	runner jobRunner
}

// NewJobHandler constructs a job handler.
func NewJobHandler(runner jobRunner) *JobHandler {
	return &JobHandler{runner: runner}
}

// Run godoc
// @Summary Run a scheduled job now
// @Tags Jobs
// @Produce json
// @Param name path string true "check_overdue or generate_preventive"
// @Success 200 {object} response.Envelope
// @Router /internal/jobs/{name} [post]
func (h *JobHandler) Run(c *gin.Context) {
	result, err := h.runner.Run(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Skipped {
		status = http.StatusAccepted
	}
	response.JSON(c, status, result, nil)
}
