package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

const sessionColumns = `id, batch_id, session_date, subject_id, trainer_id, status, time_slot, conflicts, kind, created_at, updated_at`

// ScheduleSessionRepository persists the daily sessions of batch schedules.
type ScheduleSessionRepository struct {
	db *sqlx.DB
}

// NewScheduleSessionRepository constructs a ScheduleSessionRepository.
func NewScheduleSessionRepository(db *sqlx.DB) *ScheduleSessionRepository {
	return &ScheduleSessionRepository{db: db}
}

// ListByBatch returns a batch's sessions in date order.
func (r *ScheduleSessionRepository) ListByBatch(ctx context.Context, batchID string) ([]models.ScheduleSession, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_sessions WHERE batch_id = $1 ORDER BY session_date ASC, time_slot ASC", sessionColumns)
	var sessions []models.ScheduleSession
	if err := r.db.SelectContext(ctx, &sessions, query, batchID); err != nil {
		return nil, fmt.Errorf("list schedule sessions: %w", err)
	}
	return sessions, nil
}

// ListAssignedSince returns assigned sessions of every other batch dated on
// or after from. These are the bookings a new schedule must work around.
func (r *ScheduleSessionRepository) ListAssignedSince(ctx context.Context, excludeBatchID string, from calendar.Date) ([]models.ScheduleSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_sessions
WHERE batch_id <> $1 AND session_date >= $2 AND trainer_id IS NOT NULL
ORDER BY session_date ASC`, sessionColumns)
	var sessions []models.ScheduleSession
	if err := r.db.SelectContext(ctx, &sessions, query, excludeBatchID, from); err != nil {
		return nil, fmt.Errorf("list booked sessions: %w", err)
	}
	return sessions, nil
}

// ReplaceForBatch swaps a batch's sessions for the given set in one transaction.
// Missing ids are generated in place.
func (r *ScheduleSessionRepository) ReplaceForBatch(ctx context.Context, batchID string, sessions []models.ScheduleSession) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace sessions: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_sessions WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete schedule sessions: %w", err)
	}

	const insertQuery = `
INSERT INTO schedule_sessions (id, batch_id, session_date, subject_id, trainer_id, status, time_slot, conflicts, kind, created_at, updated_at)
VALUES (:id, :batch_id, :session_date, :subject_id, :trainer_id, :status, :time_slot, :conflicts, :kind, :created_at, :updated_at)`

	now := time.Now().UTC()
	for i := range sessions {
		s := &sessions[i]
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.BatchID = batchID
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		s.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insertQuery, s); err != nil {
			return fmt.Errorf("insert schedule session: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace sessions: %w", err)
	}
	return nil
}

// UpdateAssignments writes trainer, status and conflicts of existing sessions
// in one transaction.
func (r *ScheduleSessionRepository) UpdateAssignments(ctx context.Context, sessions []models.ScheduleSession) (err error) {
	if len(sessions) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update sessions: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE schedule_sessions SET trainer_id = :trainer_id, status = :status, conflicts = :conflicts, updated_at = :updated_at WHERE id = :id`
	now := time.Now().UTC()
	for i := range sessions {
		s := &sessions[i]
		if s.ID == "" {
			return fmt.Errorf("update schedule session: missing id")
		}
		s.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, query, s); err != nil {
			return fmt.Errorf("update schedule session %s: %w", s.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update sessions: %w", err)
	}
	return nil
}
