package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
)

// TrainerPriority ranks trainers by seniority.
type TrainerPriority string

const (
	TrainerPrioritySenior TrainerPriority = "SENIOR"
	TrainerPriorityCore   TrainerPriority = "CORE"
	TrainerPriorityJunior TrainerPriority = "JUNIOR"
)

// Rank returns 3 for senior, 2 for core, 1 for junior and 0 for anything else.
func (p TrainerPriority) Rank() int {
	switch TrainerPriority(strings.ToUpper(string(p))) {
	case TrainerPrioritySenior:
		return 3
	case TrainerPriorityCore:
		return 2
	case TrainerPriorityJunior:
		return 1
	default:
		return 0
	}
}

// TrainerStatus indicates whether a trainer can be scheduled.
type TrainerStatus string

const (
	TrainerStatusActive   TrainerStatus = "ACTIVE"
	TrainerStatusInactive TrainerStatus = "INACTIVE"
)

// LeaveStatus is the approval state of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "PENDING"
	LeaveStatusApproved LeaveStatus = "APPROVED"
	LeaveStatusRejected LeaveStatus = "REJECTED"
)

// TrainerLeave is a leave interval, inclusive on both ends.
type TrainerLeave struct {
	ID        string        `db:"id" json:"id"`
	TrainerID string        `db:"trainer_id" json:"trainer_id"`
	StartDate calendar.Date `db:"start_date" json:"start_date"`
	EndDate   calendar.Date `db:"end_date" json:"end_date"`
	Status    LeaveStatus   `db:"status" json:"status"`
	Reason    *string       `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// Blocks reports whether the leave is approved and covers day.
func (l TrainerLeave) Blocks(day calendar.Date) bool {
	return strings.EqualFold(string(l.Status), string(LeaveStatusApproved)) && day.Between(l.StartDate, l.EndDate)
}

// WeeklyAvailability holds one flag per weekday, indexed by calendar.Weekday.
type WeeklyAvailability [calendar.DaysInWeek]bool

// FullWeek is available every day.
func FullWeek() WeeklyAvailability {
	return WeeklyAvailability{true, true, true, true, true, true, true}
}

// WorkWeek is available Monday to Friday.
func WorkWeek() WeeklyAvailability {
	return WeeklyAvailability{true, true, true, true, true, false, false}
}

// On reports availability for the weekday.
func (a WeeklyAvailability) On(day calendar.Weekday) bool {
	if day < calendar.Monday || day > calendar.Sunday {
		return false
	}
	return a[day]
}

// MarshalJSON encodes the flags as {"monday":true,...}.
func (a WeeklyAvailability) MarshalJSON() ([]byte, error) {
	out := make(map[string]bool, calendar.DaysInWeek)
	for i, v := range a {
		out[calendar.Weekday(i).String()] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a day-name keyed object; unknown keys are rejected.
func (a *WeeklyAvailability) UnmarshalJSON(data []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var result WeeklyAvailability
	for name, v := range raw {
		day, ok := calendar.ParseWeekday(name)
		if !ok {
			return fmt.Errorf("unknown weekday %q", name)
		}
		result[day] = v
	}
	*a = result
	return nil
}

// Scan implements sql.Scanner for JSONB columns.
func (a *WeeklyAvailability) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = WeeklyAvailability{}
		return nil
	case []byte:
		return a.UnmarshalJSON(v)
	case string:
		return a.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into WeeklyAvailability", src)
	}
}

// Value implements driver.Valuer.
func (a WeeklyAvailability) Value() (driver.Value, error) {
	b, err := a.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Trainer is an instructor who can be assigned to batch sessions.
type Trainer struct {
	ID           string             `db:"id" json:"id"`
	Name         string             `db:"name" json:"name"`
	Locations    pq.StringArray     `db:"locations" json:"locations"`
	Expertise    pq.StringArray     `db:"expertise" json:"expertise"`
	Priority     TrainerPriority    `db:"priority" json:"priority"`
	WorkStart    string             `db:"work_start" json:"work_start"`
	WorkEnd      string             `db:"work_end" json:"work_end"`
	Availability WeeklyAvailability `db:"availability" json:"availability"`
	Status       TrainerStatus      `db:"status" json:"status"`
	Leaves       []TrainerLeave     `db:"-" json:"leaves"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

// IsActive treats an empty status as active.
func (t Trainer) IsActive() bool {
	return t.Status == "" || strings.EqualFold(string(t.Status), string(TrainerStatusActive))
}

// OnApprovedLeave reports whether any approved leave covers day.
func (t Trainer) OnApprovedLeave(day calendar.Date) bool {
	for _, leave := range t.Leaves {
		if leave.Blocks(day) {
			return true
		}
	}
	return false
}

// WorkingHours returns the trainer's daily window formatted as a time slot, or "" when unset.
func (t Trainer) WorkingHours() string {
	if t.WorkStart == "" || t.WorkEnd == "" {
		return ""
	}
	return t.WorkStart + "-" + t.WorkEnd
}
