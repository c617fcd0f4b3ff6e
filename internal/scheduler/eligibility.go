package scheduler

import (
	"strings"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// stage is how far a trainer got through the eligibility checks. Higher is
// further; stagePassed means every check held.
type stage int

const (
	stageInactive stage = iota
	stageExpertise
	stageLocation
	stageWeekday
	stageLeave
	stageBooking
	stagePassed
)

// sessionRequest describes the slot a trainer is being considered for.
// An empty location skips the location check.
type sessionRequest struct {
	location string
	online   bool
	timeSlot string
}

func requestFor(batch models.Batch) sessionRequest {
	return sessionRequest{
		location: batch.Location,
		online:   batch.IsOnline(),
		timeSlot: ResolveTimeSlot(batch),
	}
}

// evaluate runs the checks in diagnostic order and returns the first that fails.
func (e *Engine) evaluate(t *models.Trainer, day calendar.Date, subject SubjectRef, req sessionRequest, l *ledger, matcher ExpertiseMatcher) stage {
	if !t.IsActive() {
		return stageInactive
	}
	if !matcher.Matches(t.Expertise, subject) {
		return stageExpertise
	}
	if req.location != "" && !locationCompatible(t.Locations, req.location) {
		return stageLocation
	}
	if !t.Availability.On(day.Weekday()) {
		return stageWeekday
	}
	if t.OnApprovedLeave(day) {
		return stageLeave
	}
	if !e.bookingAllows(t, day, req, l) {
		return stageBooking
	}
	return stagePassed
}

func (e *Engine) isEligible(t *models.Trainer, day calendar.Date, subject SubjectRef, req sessionRequest, l *ledger, matcher ExpertiseMatcher) bool {
	return e.evaluate(t, day, subject, req, l, matcher) == stagePassed
}

// canCoverBlock requires the trainer to be eligible on every day of a subject block.
func (e *Engine) canCoverBlock(t *models.Trainer, days []calendar.Date, subject SubjectRef, req sessionRequest, l *ledger, matcher ExpertiseMatcher) bool {
	for _, day := range days {
		if !e.isEligible(t, day, subject, req, l, matcher) {
			return false
		}
	}
	return true
}

func (e *Engine) bookingAllows(t *models.Trainer, day calendar.Date, req sessionRequest, l *ledger) bool {
	existing := l.sessionsOn(t.ID, day)
	if !req.online {
		return len(existing) == 0
	}
	if len(existing) >= e.cfg.OnlineDailyCap {
		return false
	}
	for _, slot := range existing {
		if slotsOverlap(slot, req.timeSlot) {
			return false
		}
	}
	if hours := t.WorkingHours(); hours != "" && !slotWithin(req.timeSlot, hours) {
		return false
	}
	return true
}

// locationCompatible matches case-insensitively. online and remote are
// interchangeable; anywhere and physical cover every non-online location.
func locationCompatible(trainerLocations []string, batchLocation string) bool {
	target := normalise(batchLocation)
	targetOnline := models.IsOnlineLocation(target)
	for _, raw := range trainerLocations {
		loc := normalise(raw)
		if loc == "" {
			continue
		}
		if loc == target {
			return true
		}
		if targetOnline && models.IsOnlineLocation(loc) {
			return true
		}
		if !targetOnline && (loc == "anywhere" || loc == "physical") {
			return true
		}
	}
	return false
}

func (e *Engine) eligibleTrainers(trainers []models.Trainer, day calendar.Date, subject SubjectRef, req sessionRequest, l *ledger, matcher ExpertiseMatcher) []*models.Trainer {
	var out []*models.Trainer
	for i := range trainers {
		if e.isEligible(&trainers[i], day, subject, req, l, matcher) {
			out = append(out, &trainers[i])
		}
	}
	return out
}

func subjectLabel(subject SubjectRef) string {
	if strings.TrimSpace(subject.Name) != "" {
		return subject.Name
	}
	return subject.ID
}
