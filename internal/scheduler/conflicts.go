package scheduler

import (
	"fmt"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// DetectConflicts returns a copy of schedule where assigned sessions gain a
// diagnostic when their trainer is on approved leave that day or holds more
// than one session that day. Existing diagnostics are kept and never
// duplicated, so running it twice gives the same result as running it once.
func (e *Engine) DetectConflicts(schedule []models.ScheduleSession, trainers []models.Trainer) []models.ScheduleSession {
	byID := make(map[string]*models.Trainer, len(trainers))
	for i := range trainers {
		byID[trainers[i].ID] = &trainers[i]
	}
	l := newLedger(schedule)

	out := make([]models.ScheduleSession, len(schedule))
	for i, s := range schedule {
		out[i] = s.Clone()
		if s.TrainerID == nil || *s.TrainerID == "" {
			continue
		}
		trainerID := *s.TrainerID

		if t, ok := byID[trainerID]; ok && t.OnApprovedLeave(s.Date) && !out[i].Conflicts.Has(models.ConflictTrainerOnLeave) {
			out[i].Conflicts = append(out[i].Conflicts, models.SessionConflict{
				Code:    models.ConflictTrainerOnLeave,
				Message: fmt.Sprintf("trainer %s is on approved leave on %s", trainerID, s.Date),
			})
		}
		if n := l.countOn(trainerID, s.Date); n > 1 && !out[i].Conflicts.Has(models.ConflictDoubleBooked) {
			out[i].Conflicts = append(out[i].Conflicts, models.SessionConflict{
				Code:    models.ConflictDoubleBooked,
				Message: fmt.Sprintf("trainer %s has %d sessions on %s", trainerID, n, s.Date),
			})
		}
	}
	return out
}
