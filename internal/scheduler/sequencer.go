package scheduler

import (
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// GenerateInput carries everything a generation run reads.
type GenerateInput struct {
	Batch    models.Batch
	Course   models.Course
	Subjects []models.Subject
	Trainers []models.Trainer
	Holidays []models.Holiday
	// Existing holds sessions of other batches that already occupy trainers.
	Existing []models.ScheduleSession
}

// resolveCurriculum maps course subject ids to records in curriculum order,
// dropping unknown ids and subjects with no duration.
func resolveCurriculum(course models.Course, subjects []models.Subject) []models.Subject {
	byID := make(map[string]models.Subject, len(subjects))
	for _, s := range subjects {
		byID[s.ID] = s
	}
	out := make([]models.Subject, 0, len(course.SubjectIDs))
	for _, id := range course.SubjectIDs {
		subject, ok := byID[id]
		if !ok || subject.Duration <= 0 {
			continue
		}
		out = append(out, subject)
	}
	return out
}

func totalDuration(curriculum []models.Subject) int {
	total := 0
	for _, s := range curriculum {
		total += s.Duration
	}
	return total
}

// Generate walks the curriculum block by block, emitting one session per
// working day. Each block first narrows trainers to those able to teach every
// one of its days, then selects per day against the schedule built so far.
func (e *Engine) Generate(in GenerateInput) []models.ScheduleSession {
	curriculum := resolveCurriculum(in.Course, in.Subjects)
	needed := totalDuration(curriculum)
	if needed == 0 {
		return []models.ScheduleSession{}
	}

	holidays := models.HolidaySet(in.Holidays)
	req := requestFor(in.Batch)
	matcher := SynonymMatcher{}
	l := newLedger(in.Existing)
	sessions := make([]models.ScheduleSession, 0, needed)

	cursor := in.Batch.StartDate
	for _, subject := range curriculum {
		ref := SubjectRef{ID: subject.ID, Name: subject.Name}
		days := calendar.NextWorkingDays(cursor, subject.Duration, in.Batch.Cadence, holidays)

		var blockCandidates []*models.Trainer
		for i := range in.Trainers {
			if e.canCoverBlock(&in.Trainers[i], days, ref, req, l, matcher) {
				blockCandidates = append(blockCandidates, &in.Trainers[i])
			}
		}

		for _, day := range days {
			var today []*models.Trainer
			for _, t := range blockCandidates {
				if e.isEligible(t, day, ref, req, l, matcher) {
					today = append(today, t)
				}
			}

			var session models.ScheduleSession
			if pick := selectTrainer(today, req.online, l); pick != nil {
				session = buildSession(in.Batch.ID, day, subject.ID, req.timeSlot, pick, nil)
			} else {
				conflict := e.diagnose(in.Trainers, blockCandidates, day, len(days), ref, req, l, matcher)
				session = buildSession(in.Batch.ID, day, subject.ID, req.timeSlot, nil, &conflict)
			}
			l.add(session)
			sessions = append(sessions, session)
		}
		if len(days) > 0 {
			cursor = days[len(days)-1].PlusDays(1)
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Date.Before(sessions[j].Date)
	})

	e.logger.Debug("schedule generated",
		zap.String("batch_id", in.Batch.ID),
		zap.Int("sessions", len(sessions)),
		zap.Int("unassigned", countUnassigned(sessions)),
	)
	return sessions
}

func countUnassigned(sessions []models.ScheduleSession) int {
	n := 0
	for _, s := range sessions {
		if !s.IsAssigned() {
			n++
		}
	}
	return n
}
