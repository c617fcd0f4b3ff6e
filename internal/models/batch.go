package models

import (
	"strings"
	"time"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
)

// Batch locations known to the scheduler. Other physical sites are allowed.
const (
	LocationOnline = "online"
	LocationRemote = "remote"
)

// IsOnlineLocation reports whether the location denotes a remote batch.
func IsOnlineLocation(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	return loc == LocationOnline || loc == LocationRemote
}

// Batch is a cohort following one course.
type Batch struct {
	ID        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Location  string           `db:"location" json:"location"`
	Cadence   calendar.Cadence `db:"cadence" json:"cadence"`
	StartDate calendar.Date    `db:"start_date" json:"start_date"`
	EndDate   calendar.Date    `db:"end_date" json:"end_date"`
	StartTime *string          `db:"start_time" json:"start_time,omitempty"`
	EndTime   *string          `db:"end_time" json:"end_time,omitempty"`
	TimeSlot  *string          `db:"time_slot" json:"time_slot,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// IsOnline reports whether the batch is held online.
func (b Batch) IsOnline() bool {
	return IsOnlineLocation(b.Location)
}

// Holiday is a non-working calendar date applying to every cadence.
type Holiday struct {
	ID        string        `db:"id" json:"id"`
	Date      calendar.Date `db:"holiday_date" json:"date"`
	Name      string        `db:"name" json:"name"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// HolidaySet indexes holiday dates for calendar lookups.
func HolidaySet(holidays []Holiday) calendar.HolidaySet {
	dates := make([]calendar.Date, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}
	return calendar.NewHolidaySet(dates...)
}
