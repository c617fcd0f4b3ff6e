package scheduler

import (
	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

type trainerDay struct {
	trainerID string
	day       calendar.Date
}

// ledger indexes assigned sessions by trainer for the booking and workload checks.
type ledger struct {
	slots map[trainerDay][]string
	load  map[string]int
}

func newLedger(sets ...[]models.ScheduleSession) *ledger {
	l := &ledger{
		slots: make(map[trainerDay][]string),
		load:  make(map[string]int),
	}
	for _, set := range sets {
		for _, s := range set {
			l.add(s)
		}
	}
	return l
}

func (l *ledger) add(s models.ScheduleSession) {
	if s.TrainerID == nil || *s.TrainerID == "" {
		return
	}
	key := trainerDay{trainerID: *s.TrainerID, day: s.Date}
	l.slots[key] = append(l.slots[key], s.TimeSlot)
	l.load[*s.TrainerID]++
}

func (l *ledger) sessionsOn(trainerID string, day calendar.Date) []string {
	return l.slots[trainerDay{trainerID: trainerID, day: day}]
}

func (l *ledger) countOn(trainerID string, day calendar.Date) int {
	return len(l.sessionsOn(trainerID, day))
}

func (l *ledger) sessionCount(trainerID string) int {
	return l.load[trainerID]
}
