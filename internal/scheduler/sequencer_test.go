package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

func TestGenerateAssignsSingleTrainerAcrossWeek(t *testing.T) {
	sessions := GenerateSchedule(
		weekdayBatch("2024-01-01"),
		course("js"),
		[]models.Subject{subject("js", "JavaScript Basics", 5)},
		[]models.Trainer{newTrainer("t1")},
		nil,
	)

	require.Len(t, sessions, 5)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}, datesOf(sessions))
	for _, s := range sessions {
		assert.Equal(t, models.SessionStatusAssigned, s.Status)
		require.NotNil(t, s.TrainerID)
		assert.Equal(t, "t1", *s.TrainerID)
		assert.Nil(t, s.Conflicts)
		assert.Equal(t, DefaultWeekdaySlot, s.TimeSlot)
		assert.Equal(t, "batch-1", s.BatchID)
		assert.NoError(t, s.Validate())
	}
}

func TestGenerateSkipsHolidaysAndWeekends(t *testing.T) {
	sessions := GenerateSchedule(
		weekdayBatch("2024-01-01"),
		course("js"),
		[]models.Subject{subject("js", "JavaScript Basics", 5)},
		[]models.Trainer{newTrainer("t1")},
		[]models.Holiday{{Date: date("2024-01-03"), Name: "Founders Day"}},
	)

	require.Len(t, sessions, 5)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05", "2024-01-08"}, datesOf(sessions))
}

func TestGenerateNoExpertiseLeavesSessionsUnassigned(t *testing.T) {
	sessions := GenerateSchedule(
		weekdayBatch("2024-01-01"),
		course("ml"),
		[]models.Subject{subject("ml", "Kubernetes", 3)},
		[]models.Trainer{newTrainer("t1")},
		nil,
	)

	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.Equal(t, models.SessionStatusUnassigned, s.Status)
		assert.Nil(t, s.TrainerID)
		require.Len(t, s.Conflicts, 1)
		assert.Equal(t, models.ConflictNoExpertiseMatch, s.Conflicts[0].Code)
	}
}

func TestGenerateOnlineBalancesLoad(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("t1", withLocations("online")),
		newTrainer("t2", withLocations("remote")),
	}
	sessions := GenerateSchedule(
		onlineBatch("2024-01-01"),
		course("js"),
		[]models.Subject{subject("js", "JavaScript", 4)},
		trainers,
		nil,
	)

	require.Len(t, sessions, 4)
	counts := map[string]int{}
	for _, s := range sessions {
		require.NotNil(t, s.TrainerID)
		counts[*s.TrainerID]++
		assert.Equal(t, DefaultOnlineSlot, s.TimeSlot)
	}
	assert.Equal(t, 2, counts["t1"])
	assert.Equal(t, 2, counts["t2"])
	assert.Equal(t, "t1", *sessions[0].TrainerID)
	assert.Equal(t, "t2", *sessions[1].TrainerID)
}

func TestGenerateKeepsCurriculumOrderAndBlockLengths(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("t1", withExpertise("javascript", "node")),
		newTrainer("t2", withExpertise("database")),
	}
	subjects := []models.Subject{
		subject("db", "SQL Fundamentals", 2),
		subject("js", "JS Essentials", 3),
		subject("node", "Node.js APIs", 1),
		subject("empty", "Orientation", 0),
	}
	sessions := GenerateSchedule(
		weekdayBatch("2024-01-04"),
		course("js", "unknown", "empty", "db", "node"),
		subjects,
		trainers,
		nil,
	)

	require.Len(t, sessions, 6)
	var order []string
	runs := map[string]int{}
	for i, s := range sessions {
		if i == 0 || sessions[i-1].SubjectID != s.SubjectID {
			order = append(order, s.SubjectID)
		}
		runs[s.SubjectID]++
		assert.True(t, calendar.IsWorkingDay(s.Date, calendar.CadenceWeekday))
	}
	assert.Equal(t, []string{"js", "db", "node"}, order)
	assert.Equal(t, map[string]int{"js": 3, "db": 2, "node": 1}, runs)
	assert.Equal(t, "t2", *sessions[3].TrainerID)
	assert.Equal(t, "t1", *sessions[5].TrainerID)
}

func TestGenerateWeekendCadence(t *testing.T) {
	batch := weekdayBatch("2024-01-01")
	batch.Cadence = calendar.CadenceWeekend
	sessions := GenerateSchedule(
		batch,
		course("js"),
		[]models.Subject{subject("js", "JavaScript", 3)},
		[]models.Trainer{newTrainer("t1", withAvailability(models.FullWeek()))},
		[]models.Holiday{{Date: date("2024-01-07")}},
	)

	require.Len(t, sessions, 3)
	assert.Equal(t, []string{"2024-01-06", "2024-01-13", "2024-01-14"}, datesOf(sessions))
	assert.Equal(t, DefaultWeekendSlot, sessions[0].TimeSlot)
	assert.Equal(t, models.SessionStatusAssigned, sessions[0].Status)
}

func TestGeneratePrefersSeniorTrainer(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("junior", withPriority(models.TrainerPriorityJunior)),
		newTrainer("core", withPriority(models.TrainerPriorityCore)),
		newTrainer("senior", withPriority(models.TrainerPrioritySenior)),
	}
	sessions := GenerateSchedule(weekdayBatch("2024-01-01"), course("js"), []models.Subject{subject("js", "JavaScript", 2)}, trainers, nil)
	for _, s := range sessions {
		assert.Equal(t, "senior", *s.TrainerID)
	}
}

func TestGenerateDurationFeasibilityExcludesPartialTrainer(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("leaving", withPriority(models.TrainerPrioritySenior), withLeave("2024-01-03", "2024-01-03", models.LeaveStatusApproved)),
		newTrainer("steady", withPriority(models.TrainerPriorityJunior)),
	}
	sessions := GenerateSchedule(weekdayBatch("2024-01-01"), course("js"), []models.Subject{subject("js", "JavaScript", 3)}, trainers, nil)

	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.Equal(t, "steady", *s.TrainerID)
	}
}

func TestGenerateBlockInfeasibleReportsWorkloadConflict(t *testing.T) {
	trainers := []models.Trainer{
		newTrainer("t1", withLeave("2024-01-02", "2024-01-02", models.LeaveStatusApproved)),
	}
	sessions := GenerateSchedule(weekdayBatch("2024-01-01"), course("js"), []models.Subject{subject("js", "JavaScript", 2)}, trainers, nil)

	require.Len(t, sessions, 2)
	assert.Equal(t, models.ConflictSchedulingWorkload, sessions[0].Conflicts[0].Code)
	assert.Equal(t, models.ConflictAllOnApprovedLeave, sessions[1].Conflicts[0].Code)
}

func TestGenerateHonoursExistingBookings(t *testing.T) {
	existing := []models.ScheduleSession{
		assigned("batch-2", "2024-01-01", "other", "t1", DefaultWeekdaySlot),
	}
	engine := New(DefaultConfig(), nil)
	sessions := engine.Generate(GenerateInput{
		Batch:    weekdayBatch("2024-01-01"),
		Course:   course("js"),
		Subjects: []models.Subject{subject("js", "JavaScript", 1)},
		Trainers: []models.Trainer{newTrainer("t1"), newTrainer("t2")},
		Existing: existing,
	})

	require.Len(t, sessions, 1)
	assert.Equal(t, "t2", *sessions[0].TrainerID)
}

func TestGenerateOfflineNeverDoubleBooks(t *testing.T) {
	existing := []models.ScheduleSession{
		assigned("batch-2", "2024-01-02", "other", "t1", DefaultWeekdaySlot),
	}
	engine := New(DefaultConfig(), nil)
	sessions := engine.Generate(GenerateInput{
		Batch:    weekdayBatch("2024-01-01"),
		Course:   course("js"),
		Subjects: []models.Subject{subject("js", "JavaScript", 3)},
		Trainers: []models.Trainer{newTrainer("t1")},
		Existing: existing,
	})

	require.Len(t, sessions, 3)
	for _, s := range sessions {
		assert.False(t, s.IsAssigned())
		assert.Equal(t, models.ConflictSchedulingWorkload, s.Conflicts[0].Code)
	}
}

func TestGenerateEmptyCurriculum(t *testing.T) {
	sessions := GenerateSchedule(weekdayBatch("2024-01-01"), course("missing"), nil, nil, nil)
	assert.Empty(t, sessions)
	assert.NotNil(t, sessions)
}

func TestGenerateCoverageProperty(t *testing.T) {
	subjects := []models.Subject{
		subject("a", "JavaScript", 4),
		subject("b", "Databases", 7),
		subject("c", "Python", 2),
	}
	holidays := []models.Holiday{{Date: date("2024-03-29")}, {Date: date("2024-04-01")}}
	for _, cadence := range []calendar.Cadence{calendar.CadenceWeekday, calendar.CadenceWeekend} {
		batch := weekdayBatch("2024-03-27")
		batch.Cadence = cadence
		sessions := GenerateSchedule(batch, course("a", "b", "c"), subjects, []models.Trainer{newTrainer("t1")}, holidays)

		require.Len(t, sessions, 13)
		set := models.HolidaySet(holidays)
		for i, s := range sessions {
			assert.True(t, calendar.IsSchedulable(s.Date, cadence, set), s.Date.String())
			if i > 0 {
				assert.True(t, sessions[i-1].Date.Before(s.Date))
			}
		}
	}
}
