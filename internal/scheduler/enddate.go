package scheduler

import (
	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// CalculateEndDate counts curriculum days plus the buffer forward from start.
// The start date counts when it is a working day. A nil holiday set counts
// every cadence day.
func (e *Engine) CalculateEndDate(start calendar.Date, course models.Course, subjects []models.Subject, cadence calendar.Cadence, holidays calendar.HolidaySet) calendar.Date {
	total := totalDuration(resolveCurriculum(course, subjects)) + e.cfg.EndDateBufferDays
	if total <= 0 {
		return start
	}
	count := 0
	current := start
	for {
		if calendar.IsSchedulable(current, cadence, holidays) {
			count++
			if count == total {
				return current
			}
		}
		current = current.PlusDays(1)
	}
}

// CurriculumDays is the number of teaching days the course needs, without buffer.
func (e *Engine) CurriculumDays(course models.Course, subjects []models.Subject) int {
	return totalDuration(resolveCurriculum(course, subjects))
}
