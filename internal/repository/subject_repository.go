package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/batch-scheduler-api/internal/models"
)

// SubjectRepository reads curriculum subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByIDs returns the subjects with the given ids in no particular order.
// Unknown ids are simply absent from the result.
func (r *SubjectRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Subject, error) {
	if len(ids) == 0 {
		return []models.Subject{}, nil
	}
	const query = `SELECT id, code, name, duration_days, created_at, updated_at FROM subjects WHERE id = ANY($1)`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
