package scheduler

import (
	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

func date(raw string) calendar.Date {
	return calendar.MustParseDate(raw)
}

func days(raw ...string) []calendar.Date {
	out := make([]calendar.Date, 0, len(raw))
	for _, r := range raw {
		out = append(out, date(r))
	}
	return out
}

func strPtr(s string) *string {
	return &s
}

type trainerOpt func(*models.Trainer)

func newTrainer(id string, opts ...trainerOpt) models.Trainer {
	t := models.Trainer{
		ID:           id,
		Name:         "Trainer " + id,
		Locations:    []string{"Bangalore"},
		Expertise:    []string{"JavaScript"},
		Priority:     models.TrainerPriorityCore,
		WorkStart:    "08:00",
		WorkEnd:      "18:00",
		Availability: models.WorkWeek(),
		Status:       models.TrainerStatusActive,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func withLocations(locs ...string) trainerOpt {
	return func(t *models.Trainer) { t.Locations = locs }
}

func withExpertise(tags ...string) trainerOpt {
	return func(t *models.Trainer) { t.Expertise = tags }
}

func withPriority(p models.TrainerPriority) trainerOpt {
	return func(t *models.Trainer) { t.Priority = p }
}

func withAvailability(a models.WeeklyAvailability) trainerOpt {
	return func(t *models.Trainer) { t.Availability = a }
}

func withHours(start, end string) trainerOpt {
	return func(t *models.Trainer) { t.WorkStart, t.WorkEnd = start, end }
}

func withLeave(start, end string, status models.LeaveStatus) trainerOpt {
	return func(t *models.Trainer) {
		t.Leaves = append(t.Leaves, models.TrainerLeave{
			TrainerID: t.ID,
			StartDate: date(start),
			EndDate:   date(end),
			Status:    status,
		})
	}
}

func inactive() trainerOpt {
	return func(t *models.Trainer) { t.Status = models.TrainerStatusInactive }
}

func weekdayBatch(start string) models.Batch {
	return models.Batch{
		ID:        "batch-1",
		CourseID:  "course-1",
		Location:  "Bangalore",
		Cadence:   calendar.CadenceWeekday,
		StartDate: date(start),
	}
}

func onlineBatch(start string) models.Batch {
	b := weekdayBatch(start)
	b.Location = "Online"
	return b
}

func course(ids ...string) models.Course {
	return models.Course{ID: "course-1", SubjectIDs: ids}
}

func subject(id, name string, days int) models.Subject {
	return models.Subject{ID: id, Name: name, Duration: days}
}

func assigned(batchID, day, subjectID, trainerID, slot string) models.ScheduleSession {
	return models.ScheduleSession{
		BatchID:   batchID,
		Date:      date(day),
		SubjectID: subjectID,
		TrainerID: strPtr(trainerID),
		Status:    models.SessionStatusAssigned,
		TimeSlot:  slot,
		Kind:      models.SessionKindRegular,
	}
}

func unassigned(batchID, day, subjectID string) models.ScheduleSession {
	return models.ScheduleSession{
		BatchID:   batchID,
		Date:      date(day),
		SubjectID: subjectID,
		Status:    models.SessionStatusUnassigned,
		TimeSlot:  DefaultWeekdaySlot,
		Kind:      models.SessionKindRegular,
	}
}

func datesOf(sessions []models.ScheduleSession) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Date.String())
	}
	return out
}
