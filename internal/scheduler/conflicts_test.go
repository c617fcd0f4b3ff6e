package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

func TestDetectConflictsFlagsLeave(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("t1", withLeave("2024-01-02", "2024-01-02", models.LeaveStatusApproved)),
	}
	schedule := []models.ScheduleSession{
		assigned("b1", "2024-01-01", "js", "t1", DefaultWeekdaySlot),
		assigned("b1", "2024-01-02", "js", "t1", DefaultWeekdaySlot),
	}

	out := DetectConflicts(schedule, trainers)

	require.Len(t, out, 2)
	assert.Nil(t, out[0].Conflicts)
	require.Len(t, out[1].Conflicts, 1)
	assert.Equal(t, models.ConflictTrainerOnLeave, out[1].Conflicts[0].Code)
	assert.Nil(t, schedule[1].Conflicts, "input must not be mutated")
}

func TestDetectConflictsFlagsDoubleBooking(t *testing.T) {
	schedule := []models.ScheduleSession{
		assigned("b1", "2024-01-01", "js", "t1", "09:00-12:00"),
		assigned("b2", "2024-01-01", "db", "t1", "13:00-16:00"),
		assigned("b2", "2024-01-02", "db", "t1", "13:00-16:00"),
	}

	out := DetectConflicts(schedule, []models.Trainer{newTrainer("t1")})

	assert.True(t, out[0].Conflicts.Has(models.ConflictDoubleBooked))
	assert.True(t, out[1].Conflicts.Has(models.ConflictDoubleBooked))
	assert.Nil(t, out[2].Conflicts)
}

func TestDetectConflictsIsIdempotent(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("t1", withLeave("2024-01-01", "2024-01-01", models.LeaveStatusApproved)),
	}
	schedule := []models.ScheduleSession{
		assigned("b1", "2024-01-01", "js", "t1", DefaultWeekdaySlot),
		assigned("b2", "2024-01-01", "db", "t1", DefaultWeekdaySlot),
	}

	once := DetectConflicts(schedule, trainers)
	twice := DetectConflicts(once, trainers)

	assert.Equal(t, once, twice)
	assert.Len(t, twice[0].Conflicts, 2)
}

func TestDetectConflictsLeavesUnassignedAlone(t *testing.T) {
	session := unassigned("b1", "2024-01-01", "js")
	session.Conflicts = models.SessionConflicts{{Code: models.ConflictNoExpertiseMatch, Message: "none"}}

	out := DetectConflicts([]models.ScheduleSession{session}, nil)

	require.Len(t, out[0].Conflicts, 1)
	assert.Equal(t, models.ConflictNoExpertiseMatch, out[0].Conflicts[0].Code)
}

func TestDetectConflictsUnknownTrainerSkipsLeaveCheck(t *testing.T) {
	out := DetectConflicts([]models.ScheduleSession{assigned("b1", "2024-01-01", "js", "ghost", DefaultWeekdaySlot)}, nil)
	assert.Nil(t, out[0].Conflicts)
}
