package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

const trainerColumns = `id, name, locations, expertise, priority, work_start, work_end, availability, status, created_at, updated_at`

// TrainerRepository reads trainers and their leave records.
type TrainerRepository struct {
	db *sqlx.DB
}

// NewTrainerRepository constructs a TrainerRepository.
func NewTrainerRepository(db *sqlx.DB) *TrainerRepository {
	return &TrainerRepository{db: db}
}

// List returns every trainer ordered by name. Inactive trainers are included;
// eligibility decides what to do with them.
func (r *TrainerRepository) List(ctx context.Context) ([]models.Trainer, error) {
	query := fmt.Sprintf("SELECT %s FROM trainers ORDER BY name ASC, id ASC", trainerColumns)
	var trainers []models.Trainer
	if err := r.db.SelectContext(ctx, &trainers, query); err != nil {
		return nil, fmt.Errorf("list trainers: %w", err)
	}
	return trainers, nil
}

// FindByID fetches a trainer without leaves.
func (r *TrainerRepository) FindByID(ctx context.Context, id string) (*models.Trainer, error) {
	query := fmt.Sprintf("SELECT %s FROM trainers WHERE id = $1", trainerColumns)
	var trainer models.Trainer
	if err := r.db.GetContext(ctx, &trainer, query, id); err != nil {
		return nil, err
	}
	return &trainer, nil
}

// ListLeavesSince returns leave records that end on or after since.
func (r *TrainerRepository) ListLeavesSince(ctx context.Context, since calendar.Date) ([]models.TrainerLeave, error) {
	const query = `SELECT id, trainer_id, start_date, end_date, status, reason, created_at, updated_at
FROM trainer_leaves WHERE end_date >= $1 ORDER BY start_date ASC`
	var leaves []models.TrainerLeave
	if err := r.db.SelectContext(ctx, &leaves, query, since); err != nil {
		return nil, fmt.Errorf("list trainer leaves: %w", err)
	}
	return leaves, nil
}

// ListWithLeaves returns all trainers with the leave records that end on or
// after since attached.
func (r *TrainerRepository) ListWithLeaves(ctx context.Context, since calendar.Date) ([]models.Trainer, error) {
	trainers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(trainers) == 0 {
		return trainers, nil
	}
	leaves, err := r.ListLeavesSince(ctx, since)
	if err != nil {
		return nil, err
	}
	byTrainer := make(map[string][]models.TrainerLeave, len(trainers))
	for _, leave := range leaves {
		byTrainer[leave.TrainerID] = append(byTrainer[leave.TrainerID], leave)
	}
	for i := range trainers {
		trainers[i].Leaves = byTrainer[trainers[i].ID]
	}
	return trainers, nil
}
