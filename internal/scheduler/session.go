package scheduler

import (
	"fmt"
	"strings"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// Default daily windows when a batch does not carry its own.
const (
	DefaultOnlineSlot  = "09:00-12:00"
	DefaultWeekendSlot = "10:00-16:00"
	DefaultWeekdaySlot = "09:00-17:00"
)

// ResolveTimeSlot returns the batch's explicit slot, its start/end window, or
// a default for its location and cadence.
func ResolveTimeSlot(batch models.Batch) string {
	if batch.TimeSlot != nil && strings.TrimSpace(*batch.TimeSlot) != "" {
		return strings.TrimSpace(*batch.TimeSlot)
	}
	if batch.StartTime != nil && batch.EndTime != nil && *batch.StartTime != "" && *batch.EndTime != "" {
		return formatSlot(*batch.StartTime, *batch.EndTime)
	}
	switch {
	case batch.IsOnline():
		return DefaultOnlineSlot
	case batch.Cadence == calendar.CadenceWeekend:
		return DefaultWeekendSlot
	default:
		return DefaultWeekdaySlot
	}
}

func buildSession(batchID string, day calendar.Date, subjectID, timeSlot string, trainer *models.Trainer, conflict *models.SessionConflict) models.ScheduleSession {
	session := models.ScheduleSession{
		BatchID:   batchID,
		Date:      day,
		SubjectID: subjectID,
		TimeSlot:  timeSlot,
		Status:    models.SessionStatusUnassigned,
		Kind:      models.SessionKindRegular,
	}
	if trainer != nil {
		id := trainer.ID
		session.TrainerID = &id
		session.Status = models.SessionStatusAssigned
		return session
	}
	if conflict != nil {
		session.Conflicts = models.SessionConflicts{*conflict}
	}
	return session
}

// diagnose explains why no trainer was assigned on day. blockCandidates are
// the trainers that passed the block-duration check.
func (e *Engine) diagnose(trainers []models.Trainer, blockCandidates []*models.Trainer, day calendar.Date, blockDays int, subject SubjectRef, req sessionRequest, l *ledger, matcher ExpertiseMatcher) models.SessionConflict {
	best := stageInactive
	passedToday := make([]*models.Trainer, 0)
	for i := range trainers {
		st := e.evaluate(&trainers[i], day, subject, req, l, matcher)
		if st > best {
			best = st
		}
		if st == stagePassed {
			passedToday = append(passedToday, &trainers[i])
		}
	}

	label := subjectLabel(subject)
	switch best {
	case stageInactive, stageExpertise:
		return models.SessionConflict{
			Code:    models.ConflictNoExpertiseMatch,
			Message: fmt.Sprintf("no active trainer has expertise in %s", label),
		}
	case stageLocation:
		return models.SessionConflict{
			Code:    models.ConflictNoLocationMatch,
			Message: fmt.Sprintf("trainers with %s expertise do not teach at %s", label, req.location),
		}
	case stageWeekday:
		return models.SessionConflict{
			Code:    models.ConflictNoDayAvailability,
			Message: fmt.Sprintf("no qualified trainer works on %s", calendar.DayOfWeek(day)),
		}
	case stageLeave:
		return models.SessionConflict{
			Code:    models.ConflictAllOnApprovedLeave,
			Message: fmt.Sprintf("all qualified trainers are on approved leave on %s", day),
		}
	case stageBooking:
		return models.SessionConflict{
			Code:    models.ConflictSchedulingWorkload,
			Message: fmt.Sprintf("qualified trainers are already booked on %s", day),
		}
	}

	for _, t := range passedToday {
		if !containsTrainer(blockCandidates, t) {
			return models.SessionConflict{
				Code:    models.ConflictSchedulingWorkload,
				Message: fmt.Sprintf("no qualified trainer can cover all %d days of %s", blockDays, label),
			}
		}
	}
	return models.SessionConflict{
		Code:    models.ConflictUnknown,
		Message: fmt.Sprintf("no trainer assigned on %s although eligibility checks passed", day),
	}
}

func containsTrainer(list []*models.Trainer, t *models.Trainer) bool {
	for _, item := range list {
		if item.ID == t.ID {
			return true
		}
	}
	return false
}
