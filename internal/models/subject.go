package models

import (
	"time"

	"github.com/lib/pq"
)

// Subject is a unit of the curriculum taught over a number of working days.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Duration  int       `db:"duration_days" json:"duration_days"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Course is an ordered curriculum; the order of SubjectIDs is authoritative.
type Course struct {
	ID         string         `db:"id" json:"id"`
	Name       string         `db:"name" json:"name"`
	SubjectIDs pq.StringArray `db:"subject_ids" json:"subject_ids"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
