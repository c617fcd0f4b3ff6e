// Package scheduler assigns trainers to the daily sessions of a batch.
//
// The engine is synchronous and holds no state between calls: every
// operation reads its inputs and returns a fresh slice of sessions.
// Infeasible days are returned as unassigned sessions carrying a
// diagnostic rather than as errors.
package scheduler

import (
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

const (
	// DefaultOnlineDailyCap is the most online sessions a trainer takes per day.
	DefaultOnlineDailyCap = 3
	// DefaultEndDateBufferDays is added to the curriculum length for assessments and breaks.
	DefaultEndDateBufferDays = 5
)

// Config tunes the engine.
type Config struct {
	OnlineDailyCap     int
	EndDateBufferDays  int
	OptimizerExpertise ExpertiseStrategy
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		OnlineDailyCap:     DefaultOnlineDailyCap,
		EndDateBufferDays:  DefaultEndDateBufferDays,
		OptimizerExpertise: StrategySubjectID,
	}
}

// Engine runs generation, optimisation, conflict detection and end-date math.
// It is safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *zap.Logger
}

// New builds an engine. A zero buffer is kept as is; a negative one, an unset
// cap or an unknown strategy falls back to the defaults.
func New(cfg Config, logger *zap.Logger) *Engine {
	if cfg.OnlineDailyCap <= 0 {
		cfg.OnlineDailyCap = DefaultOnlineDailyCap
	}
	if cfg.EndDateBufferDays < 0 {
		cfg.EndDateBufferDays = DefaultEndDateBufferDays
	}
	if !cfg.OptimizerExpertise.Valid() {
		cfg.OptimizerExpertise = StrategySubjectID
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

var defaultEngine = New(DefaultConfig(), nil)

// GenerateSchedule builds the sessions of a batch with the default engine.
func GenerateSchedule(batch models.Batch, course models.Course, subjects []models.Subject, trainers []models.Trainer, holidays []models.Holiday) []models.ScheduleSession {
	return defaultEngine.Generate(GenerateInput{
		Batch:    batch,
		Course:   course,
		Subjects: subjects,
		Trainers: trainers,
		Holidays: holidays,
	})
}

// DetectConflicts annotates leave and double-booking problems on assigned sessions.
func DetectConflicts(schedule []models.ScheduleSession, trainers []models.Trainer) []models.ScheduleSession {
	return defaultEngine.DetectConflicts(schedule, trainers)
}

// OptimizeSchedule tries to fill unassigned sessions with the default engine.
func OptimizeSchedule(schedule []models.ScheduleSession, trainers []models.Trainer) []models.ScheduleSession {
	return defaultEngine.Optimize(schedule, trainers, nil)
}

// CalculateBatchEndDate returns the ISO end date of a batch starting at start.
// Holidays are skipped only when supplied.
func CalculateBatchEndDate(start calendar.Date, course models.Course, subjects []models.Subject, cadence calendar.Cadence, holidays ...models.Holiday) string {
	return defaultEngine.CalculateEndDate(start, course, subjects, cadence, models.HolidaySet(holidays)).String()
}
