package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

var sessionRowColumns = []string{"id", "batch_id", "session_date", "subject_id", "trainer_id", "status", "time_slot", "conflicts", "kind", "created_at", "updated_at"}

func trainerID(id string) *string { return &id }

func TestScheduleSessionRepositoryListByBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSessionRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_sessions WHERE batch_id = $1 ORDER BY session_date ASC")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow("s1", "b1", "2024-01-01", "js", "t1", "assigned", "09:00-17:00", nil, "regular", now, now).
			AddRow("s2", "b1", "2024-01-02", "js", nil, "unassigned", "09:00-17:00", `[{"code":"ALL_ON_APPROVED_LEAVE","message":"leave"}]`, "regular", now, now))

	sessions, err := repo.ListByBatch(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].AssignedTo("t1"))
	assert.Nil(t, sessions[0].Conflicts)
	assert.False(t, sessions[1].IsAssigned())
	assert.True(t, sessions[1].Conflicts.Has(models.ConflictAllOnApprovedLeave))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSessionRepositoryListAssignedSince(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE batch_id <> $1 AND session_date >= $2 AND trainer_id IS NOT NULL")).
		WithArgs("b1", "2024-01-01").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns))

	sessions, err := repo.ListAssignedSince(context.Background(), "b1", calendar.MustParseDate("2024-01-01"))
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSessionRepositoryReplaceForBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSessionRepository(db)

	sessions := []models.ScheduleSession{
		{Date: calendar.MustParseDate("2024-01-01"), SubjectID: "js", TrainerID: trainerID("t1"), Status: models.SessionStatusAssigned, TimeSlot: "09:00-17:00", Kind: models.SessionKindRegular},
		{Date: calendar.MustParseDate("2024-01-02"), SubjectID: "js", Status: models.SessionStatusUnassigned, TimeSlot: "09:00-17:00", Kind: models.SessionKindRegular,
			Conflicts: models.SessionConflicts{{Code: models.ConflictNoExpertiseMatch, Message: "none"}}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_sessions WHERE batch_id = $1")).
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_sessions")).
		WithArgs(sqlmock.AnyArg(), "b1", "2024-01-01", "js", "t1", "assigned", "09:00-17:00", nil, "regular", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_sessions")).
		WithArgs(sqlmock.AnyArg(), "b1", "2024-01-02", "js", nil, "unassigned", "09:00-17:00", `[{"code":"NO_EXPERTISE_MATCH","message":"none"}]`, "regular", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForBatch(context.Background(), "b1", sessions))
	for _, s := range sessions {
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "b1", s.BatchID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSessionRepositoryReplaceRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_sessions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schedule_sessions").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.ReplaceForBatch(context.Background(), "b1", []models.ScheduleSession{{Date: calendar.MustParseDate("2024-01-01"), SubjectID: "js", Status: models.SessionStatusUnassigned}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSessionRepositoryUpdateAssignments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE schedule_sessions SET trainer_id =")).
		WithArgs("t2", "assigned", nil, sqlmock.AnyArg(), "s2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateAssignments(context.Background(), []models.ScheduleSession{
		{ID: "s2", TrainerID: trainerID("t2"), Status: models.SessionStatusAssigned},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleSessionRepositoryUpdateAssignmentsRequiresID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.UpdateAssignments(context.Background(), []models.ScheduleSession{{Status: models.SessionStatusAssigned}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
