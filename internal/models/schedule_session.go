package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
)

// SessionStatus records whether a trainer was found for the session.
type SessionStatus string

const (
	SessionStatusAssigned   SessionStatus = "assigned"
	SessionStatusUnassigned SessionStatus = "unassigned"
)

// SessionKind distinguishes teaching days from other entries.
type SessionKind string

const (
	SessionKindRegular SessionKind = "regular"
	SessionKindOther   SessionKind = "other"
)

// ConflictCode classifies a session diagnostic.
type ConflictCode string

// Reasons a session could not be assigned, in the order they are tested.
const (
	ConflictNoExpertiseMatch   ConflictCode = "NO_EXPERTISE_MATCH"
	ConflictNoLocationMatch    ConflictCode = "NO_LOCATION_MATCH"
	ConflictNoDayAvailability  ConflictCode = "NO_DAY_AVAILABILITY"
	ConflictAllOnApprovedLeave ConflictCode = "ALL_ON_APPROVED_LEAVE"
	ConflictSchedulingWorkload ConflictCode = "SCHEDULING_OR_WORKLOAD_CONFLICT"
	ConflictUnknown            ConflictCode = "UNKNOWN_CONFLICT"
)

// Problems found on assigned sessions after generation.
const (
	ConflictTrainerOnLeave ConflictCode = "TRAINER_ON_LEAVE"
	ConflictDoubleBooked   ConflictCode = "DOUBLE_BOOKED"
)

// SessionConflict is one diagnostic attached to a session.
type SessionConflict struct {
	Code    ConflictCode `json:"code"`
	Message string       `json:"message"`
}

// SessionConflicts is stored as a JSONB array; nil means no diagnostics.
type SessionConflicts []SessionConflict

// Has reports whether a diagnostic with code is present.
func (c SessionConflicts) Has(code ConflictCode) bool {
	for _, item := range c {
		if item.Code == code {
			return true
		}
	}
	return false
}

// Scan implements sql.Scanner.
func (c *SessionConflicts) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SessionConflicts", src)
	}
	var items []SessionConflict
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode session conflicts: %w", err)
	}
	if len(items) == 0 {
		items = nil
	}
	*c = items
	return nil
}

// Value implements driver.Valuer.
func (c SessionConflicts) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]SessionConflict(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ScheduleSession is one teaching day of a batch.
type ScheduleSession struct {
	ID        string           `db:"id" json:"id,omitempty"`
	BatchID   string           `db:"batch_id" json:"batch_id"`
	Date      calendar.Date    `db:"session_date" json:"date"`
	SubjectID string           `db:"subject_id" json:"subject_id"`
	TrainerID *string          `db:"trainer_id" json:"trainer_id,omitempty"`
	Status    SessionStatus    `db:"status" json:"status"`
	TimeSlot  string           `db:"time_slot" json:"time_slot"`
	Conflicts SessionConflicts `db:"conflicts" json:"conflicts,omitempty"`
	Kind      SessionKind      `db:"kind" json:"kind"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// ErrSessionAssignment is returned by Validate when trainer and status disagree.
var ErrSessionAssignment = errors.New("trainer_id must be set exactly when status is assigned")

// IsAssigned reports whether a trainer is bound to the session.
func (s ScheduleSession) IsAssigned() bool {
	return s.Status == SessionStatusAssigned && s.TrainerID != nil
}

// AssignedTo reports whether the session is assigned to trainerID.
func (s ScheduleSession) AssignedTo(trainerID string) bool {
	return s.TrainerID != nil && *s.TrainerID == trainerID
}

// Validate checks the trainer/status invariant.
func (s ScheduleSession) Validate() error {
	hasTrainer := s.TrainerID != nil && *s.TrainerID != ""
	if hasTrainer != (s.Status == SessionStatusAssigned) {
		return ErrSessionAssignment
	}
	return nil
}

// Clone returns a deep copy so callers can derive new sessions without aliasing.
func (s ScheduleSession) Clone() ScheduleSession {
	out := s
	if s.TrainerID != nil {
		id := *s.TrainerID
		out.TrainerID = &id
	}
	if s.Conflicts != nil {
		out.Conflicts = append(SessionConflicts(nil), s.Conflicts...)
	}
	return out
}

// ScheduleSummary aggregates a batch schedule.
type ScheduleSummary struct {
	BatchID        string               `json:"batch_id"`
	TotalSessions  int                  `json:"total_sessions"`
	Assigned       int                  `json:"assigned"`
	Unassigned     int                  `json:"unassigned"`
	FirstDate      calendar.Date        `json:"first_date"`
	LastDate       calendar.Date        `json:"last_date"`
	TrainerLoad    map[string]int       `json:"trainer_load"`
	ConflictCounts map[ConflictCode]int `json:"conflict_counts"`
}

// Summarize computes totals for a schedule.
func Summarize(batchID string, sessions []ScheduleSession) ScheduleSummary {
	summary := ScheduleSummary{
		BatchID:        batchID,
		TotalSessions:  len(sessions),
		TrainerLoad:    make(map[string]int),
		ConflictCounts: make(map[ConflictCode]int),
	}
	for i, s := range sessions {
		if i == 0 || s.Date.Before(summary.FirstDate) {
			summary.FirstDate = s.Date
		}
		if i == 0 || s.Date.After(summary.LastDate) {
			summary.LastDate = s.Date
		}
		if s.IsAssigned() {
			summary.Assigned++
			summary.TrainerLoad[*s.TrainerID]++
		} else {
			summary.Unassigned++
		}
		for _, c := range s.Conflicts {
			summary.ConflictCounts[c.Code]++
		}
	}
	return summary
}
