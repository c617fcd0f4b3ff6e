package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// BatchRepository manages batch records.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// FindByID fetches a batch by ID.
func (r *BatchRepository) FindByID(ctx context.Context, id string) (*models.Batch, error) {
	const query = `SELECT id, name, course_id, location, cadence, start_date, end_date, start_time, end_time, time_slot, created_at, updated_at FROM batches WHERE id = $1`
	var batch models.Batch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// UpdateEndDate stores a computed end date.
func (r *BatchRepository) UpdateEndDate(ctx context.Context, id string, endDate calendar.Date) error {
	const query = `UPDATE batches SET end_date = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, endDate, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update batch end date: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("batch end date rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
