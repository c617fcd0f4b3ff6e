package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

func TestLocationCompatible(t *testing.T) {
	cases := []struct {
		name     string
		trainer  []string
		batch    string
		expected bool
	}{
		{"exact case-insensitive", []string{"BANGALORE"}, "bangalore", true},
		{"different city", []string{"Pune"}, "Bangalore", false},
		{"online remote interchangeable", []string{"Remote"}, "online", true},
		{"remote batch online trainer", []string{"online"}, "remote", true},
		{"anywhere covers physical", []string{"anywhere"}, "Chennai", true},
		{"physical covers physical", []string{"physical"}, "Chennai", true},
		{"anywhere does not cover online", []string{"anywhere"}, "online", false},
		{"empty list", nil, "online", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, locationCompatible(tc.trainer, tc.batch))
		})
	}
}

func TestEvaluateStages(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	ref := SubjectRef{ID: "js", Name: "JavaScript"}
	req := requestFor(weekdayBatch("2024-01-01"))
	monday := date("2024-01-01")
	l := newLedger()

	cases := []struct {
		name    string
		trainer models.Trainer
		want    stage
	}{
		{"eligible", newTrainer("ok"), stagePassed},
		{"inactive", newTrainer("x", inactive()), stageInactive},
		{"expertise", newTrainer("x", withExpertise("Go")), stageExpertise},
		{"location", newTrainer("x", withLocations("Pune")), stageLocation},
		{"weekday", newTrainer("x", withAvailability(models.WeeklyAvailability{})), stageWeekday},
		{"approved leave", newTrainer("x", withLeave("2023-12-30", "2024-01-02", models.LeaveStatusApproved)), stageLeave},
		{"pending leave ignored", newTrainer("x", withLeave("2024-01-01", "2024-01-01", models.LeaveStatusPending)), stagePassed},
		{"rejected leave ignored", newTrainer("x", withLeave("2024-01-01", "2024-01-01", models.LeaveStatusRejected)), stagePassed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := tc.trainer
			assert.Equal(t, tc.want, engine.evaluate(&tr, monday, ref, req, l, SynonymMatcher{}))
		})
	}
}

func TestBookingOffline(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	tr := newTrainer("t1")
	req := requestFor(weekdayBatch("2024-01-01"))
	l := newLedger([]models.ScheduleSession{assigned("b2", "2024-01-01", "x", "t1", "18:00-19:00")})

	assert.False(t, engine.bookingAllows(&tr, date("2024-01-01"), req, l))
	assert.True(t, engine.bookingAllows(&tr, date("2024-01-02"), req, l))
}

func TestBookingOnlineRules(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	tr := newTrainer("t1", withLocations("online"), withHours("08:00", "20:00"))
	day := date("2024-01-01")

	batch := onlineBatch("2024-01-01")
	batch.TimeSlot = strPtr("13:00-15:00")
	req := requestFor(batch)

	free := newLedger([]models.ScheduleSession{assigned("b2", "2024-01-01", "x", "t1", "09:00-12:00")})
	assert.True(t, engine.bookingAllows(&tr, day, req, free), "non-overlapping slot is allowed")

	overlapping := newLedger([]models.ScheduleSession{assigned("b2", "2024-01-01", "x", "t1", "14:00-16:00")})
	assert.False(t, engine.bookingAllows(&tr, day, req, overlapping))

	full := newLedger([]models.ScheduleSession{
		assigned("b2", "2024-01-01", "x", "t1", "08:00-09:00"),
		assigned("b3", "2024-01-01", "x", "t1", "09:00-10:00"),
		assigned("b4", "2024-01-01", "x", "t1", "10:00-11:00"),
	})
	assert.False(t, engine.bookingAllows(&tr, day, req, full), "daily cap reached")

	early := newTrainer("t2", withLocations("online"), withHours("08:00", "14:00"))
	assert.False(t, engine.bookingAllows(&early, day, req, newLedger()), "slot must fit working hours")

	noHours := newTrainer("t3", withLocations("online"), withHours("", ""))
	assert.True(t, engine.bookingAllows(&noHours, day, req, newLedger()))
}

func TestOnlineCapIsConfigurable(t *testing.T) {
	engine := New(Config{OnlineDailyCap: 1}, nil)
	tr := newTrainer("t1", withLocations("online"))
	batch := onlineBatch("2024-01-01")
	batch.TimeSlot = strPtr("13:00-14:00")
	l := newLedger([]models.ScheduleSession{assigned("b2", "2024-01-01", "x", "t1", "09:00-10:00")})

	assert.False(t, engine.bookingAllows(&tr, date("2024-01-01"), requestFor(batch), l))
}

func TestCanCoverBlock(t *testing.T) {
	engine := New(DefaultConfig(), nil)
	tr := newTrainer("t1", withAvailability(models.WeeklyAvailability{true, true, false, true, true}))
	ref := SubjectRef{ID: "js", Name: "JavaScript"}
	req := requestFor(weekdayBatch("2024-01-01"))

	assert.True(t, engine.canCoverBlock(&tr, days("2024-01-01", "2024-01-02"), ref, req, newLedger(), SynonymMatcher{}))
	assert.False(t, engine.canCoverBlock(&tr, days("2024-01-01", "2024-01-02", "2024-01-03"), ref, req, newLedger(), SynonymMatcher{}))
}
