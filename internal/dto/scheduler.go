package dto

import (
	"time"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// EndDateRequest asks for the projected end date of a batch that has not been
// stored yet.
type EndDateRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	Cadence   string `json:"cadence" validate:"omitempty,oneof=weekday weekend"`
}

// EndDateResponse reports a computed end date.
type EndDateResponse struct {
	BatchID        string `json:"batch_id,omitempty"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	CurriculumDays int    `json:"curriculum_days"`
	BufferDays     int    `json:"buffer_days"`
}

// ScheduleResponse is a batch schedule with its summary.
type ScheduleResponse struct {
	BatchID  string                   `json:"batch_id"`
	Sessions []models.ScheduleSession `json:"sessions"`
	Summary  models.ScheduleSummary   `json:"summary"`
}

// OptimizeResponse reports what an optimisation pass changed.
type OptimizeResponse struct {
	ScheduleResponse
	Filled int `json:"filled"`
}

// ConflictReport lists the sessions of a batch that carry diagnostics.
type ConflictReport struct {
	BatchID   string                      `json:"batch_id"`
	Sessions  []models.ScheduleSession    `json:"sessions"`
	Counts    map[models.ConflictCode]int `json:"counts"`
	Persisted bool                        `json:"persisted"`
}

// ScheduleJobStatus values.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// ScheduleJobResponse describes an asynchronous generation request.
type ScheduleJobResponse struct {
	JobID      string     `json:"job_id"`
	BatchID    string     `json:"batch_id"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	Attempts   int        `json:"attempts"`
	Sessions   int        `json:"sessions,omitempty"`
	Unassigned int        `json:"unassigned,omitempty"`
	EnqueuedAt time.Time  `json:"enqueued_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// ConflictQuery controls whether detected diagnostics are written back.
type ConflictQuery struct {
	Persist bool `form:"persist"`
}

// ExportQuery selects the export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// BusinessDaysQuery adds n business days to start.
type BusinessDaysQuery struct {
	Start string `form:"start" validate:"required"`
	Days  int    `form:"days" validate:"gte=-3650,lte=3650"`
}

// BusinessDaysResponse is the result of a business-day offset.
type BusinessDaysResponse struct {
	Start  string `json:"start"`
	Days   int    `json:"days"`
	Result string `json:"result"`
}

// WorkingDaysQuery lists the next count working days for a cadence.
type WorkingDaysQuery struct {
	Start   string `form:"start" validate:"required"`
	Count   int    `form:"count" validate:"required,gte=1,lte=366"`
	Cadence string `form:"cadence" validate:"omitempty,oneof=weekday weekend"`
}

// WorkingDaysResponse lists working dates in order.
type WorkingDaysResponse struct {
	Start   string   `json:"start"`
	Cadence string   `json:"cadence"`
	Dates   []string `json:"dates"`
}
