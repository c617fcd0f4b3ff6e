package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/response"
)

type batchScheduler interface {
	Generate(ctx context.Context, batchID string) (*dto.ScheduleResponse, error)
	Optimize(ctx context.Context, batchID string) (*dto.OptimizeResponse, error)
	DetectConflicts(ctx context.Context, batchID string, persist bool) (*dto.ConflictReport, error)
	Get(ctx context.Context, batchID string) (*dto.ScheduleResponse, error)
	Summary(ctx context.Context, batchID string) (*models.ScheduleSummary, error)
	CalculateEndDate(ctx context.Context, req dto.EndDateRequest) (*dto.EndDateResponse, error)
	ApplyEndDate(ctx context.Context, batchID string) (*dto.EndDateResponse, error)
	Export(ctx context.Context, batchID, format string) (*service.ExportFile, error)
}

type scheduleJobs interface {
	Enqueue(ctx context.Context, batchID string) (*dto.ScheduleJobResponse, error)
	Get(ctx context.Context, jobID string) (*dto.ScheduleJobResponse, error)
}

// BatchScheduleHandler exposes batch scheduling endpoints.
type BatchScheduleHandler struct {
	service batchScheduler
	jobs    scheduleJobs
}

// NewBatchScheduleHandler constructs the handler.
func NewBatchScheduleHandler(svc *service.BatchScheduleService, jobs *service.ScheduleJobService) *BatchScheduleHandler {
	h := &BatchScheduleHandler{service: svc}
	if jobs != nil {
		h.jobs = jobs
	}
	return h
}

// Generate godoc
// @Summary Generate the schedule of a batch
// @Description Rebuilds every session of the batch. Days without an eligible trainer are returned unassigned with a diagnostic.
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/schedule/generate [post]
func (h *BatchScheduleHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// EnqueueGenerate godoc
// @Summary Queue background generation of a batch schedule
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches/{id}/schedule/jobs [post]
func (h *BatchScheduleHandler) EnqueueGenerate(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "schedule jobs are not configured"))
		return
	}
	job, err := h.jobs.Enqueue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// JobStatus godoc
// @Summary Get the status of a generation job
// @Tags Scheduling
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /schedule/jobs/{jobId} [get]
func (h *BatchScheduleHandler) JobStatus(c *gin.Context) {
	if h.jobs == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "schedule jobs are not configured"))
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Optimize godoc
// @Summary Fill unassigned sessions of a stored schedule
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /batches/{id}/schedule/optimize [post]
func (h *BatchScheduleHandler) Optimize(c *gin.Context) {
	result, err := h.service.Optimize(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get the stored schedule of a batch
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/schedule [get]
func (h *BatchScheduleHandler) Get(c *gin.Context) {
	result, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Conflicts godoc
// @Summary Detect leave and double-booking conflicts
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Param persist query bool false "Store the diagnostics on the sessions"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/schedule/conflicts [get]
func (h *BatchScheduleHandler) Conflicts(c *gin.Context) {
	var query dto.ConflictQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict query"))
		return
	}
	report, err := h.service.DetectConflicts(c.Request.Context(), c.Param("id"), query.Persist)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Summary godoc
// @Summary Summarise a batch schedule
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/schedule/summary [get]
func (h *BatchScheduleHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Export godoc
// @Summary Download a batch schedule
// @Tags Scheduling
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Batch ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /batches/{id}/schedule/export [get]
func (h *BatchScheduleHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

// EndDate godoc
// @Summary Project the end date of a batch
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.EndDateRequest true "Start date and course"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /batches/end-date [post]
func (h *BatchScheduleHandler) EndDate(c *gin.Context) {
	var req dto.EndDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid end date payload"))
		return
	}
	result, err := h.service.CalculateEndDate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ApplyEndDate godoc
// @Summary Compute and store the end date of a batch
// @Tags Scheduling
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id}/end-date [put]
func (h *BatchScheduleHandler) ApplyEndDate(c *gin.Context) {
	result, err := h.service.ApplyEndDate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
