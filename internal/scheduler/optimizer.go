package scheduler

import (
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// Optimize fills unassigned sessions where a trainer has become available.
// Assigned sessions pass through untouched. The expertise check follows
// Config.OptimizerExpertise; subjects are only consulted for names by the
// synonym strategy and may be nil. Location is not checked because sessions
// do not carry it, and every fill must leave the trainer free that day.
func (e *Engine) Optimize(schedule []models.ScheduleSession, trainers []models.Trainer, subjects []models.Subject) []models.ScheduleSession {
	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}
	matcher := MatcherFor(e.cfg.OptimizerExpertise)

	out := make([]models.ScheduleSession, len(schedule))
	for i, s := range schedule {
		out[i] = s.Clone()
	}
	l := newLedger(out)

	filled := 0
	for i := range out {
		s := out[i]
		if s.Status == models.SessionStatusAssigned || s.TrainerID != nil {
			continue
		}
		ref := SubjectRef{ID: s.SubjectID, Name: names[s.SubjectID]}
		req := sessionRequest{timeSlot: s.TimeSlot}

		candidates := e.eligibleTrainers(trainers, s.Date, ref, req, l, matcher)
		pick := selectRoundRobin(candidates, l)
		if pick == nil {
			continue
		}
		id := pick.ID
		s.TrainerID = &id
		s.Status = models.SessionStatusAssigned
		s.Conflicts = nil
		out[i] = s
		l.add(s)
		filled++
	}

	e.logger.Debug("schedule optimized", zap.Int("sessions", len(out)), zap.Int("filled", filled))
	return out
}
