package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// HolidayRepository reads the public holiday calendar.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs a HolidayRepository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// ListFrom returns holidays on or after from, ordered by date.
func (r *HolidayRepository) ListFrom(ctx context.Context, from calendar.Date) ([]models.Holiday, error) {
	const query = `SELECT id, holiday_date, name, created_at FROM holidays WHERE holiday_date >= $1 ORDER BY holiday_date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// ListBetween returns holidays in the inclusive range.
func (r *HolidayRepository) ListBetween(ctx context.Context, from, to calendar.Date) ([]models.Holiday, error) {
	const query = `SELECT id, holiday_date, name, created_at FROM holidays WHERE holiday_date BETWEEN $1 AND $2 ORDER BY holiday_date ASC`
	var holidays []models.Holiday
	if err := r.db.SelectContext(ctx, &holidays, query, from, to); err != nil {
		return nil, fmt.Errorf("list holidays between: %w", err)
	}
	return holidays, nil
}
