// Package fixtures loads offline scheduling scenarios from YAML files.
package fixtures

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	"github.com/noah-isme/batch-scheduler-api/internal/scheduler"
)

// Scenario is the on-disk description of one batch and everything needed to plan it.
type Scenario struct {
	Batch    BatchSpec     `yaml:"batch" validate:"required"`
	Course   CourseSpec    `yaml:"course" validate:"required"`
	Subjects []SubjectSpec `yaml:"subjects" validate:"required,min=1,dive"`
	Trainers []TrainerSpec `yaml:"trainers" validate:"dive"`
	Holidays []HolidaySpec `yaml:"holidays" validate:"dive"`
	Booked   []BookedSpec  `yaml:"booked" validate:"dive"`
}

type BatchSpec struct {
	ID        string `yaml:"id" validate:"required"`
	Name      string `yaml:"name"`
	Location  string `yaml:"location" validate:"required"`
	Cadence   string `yaml:"cadence" validate:"omitempty,oneof=weekday weekend"`
	StartDate string `yaml:"start_date" validate:"required"`
	TimeSlot  string `yaml:"time_slot"`
}

type CourseSpec struct {
	ID       string   `yaml:"id" validate:"required"`
	Name     string   `yaml:"name"`
	Subjects []string `yaml:"subjects" validate:"required,min=1"`
}

type SubjectSpec struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name"`
	Duration int    `yaml:"duration_days" validate:"gte=0"`
}

type TrainerSpec struct {
	ID           string      `yaml:"id" validate:"required"`
	Name         string      `yaml:"name"`
	Locations    []string    `yaml:"locations"`
	Expertise    []string    `yaml:"expertise"`
	Priority     string      `yaml:"priority"`
	WorkStart    string      `yaml:"work_start"`
	WorkEnd      string      `yaml:"work_end"`
	Availability []string    `yaml:"availability"`
	Status       string      `yaml:"status"`
	Leaves       []LeaveSpec `yaml:"leaves" validate:"dive"`
}

type LeaveSpec struct {
	Start  string `yaml:"start" validate:"required"`
	End    string `yaml:"end" validate:"required"`
	Status string `yaml:"status"`
}

type HolidaySpec struct {
	Date string `yaml:"date" validate:"required"`
	Name string `yaml:"name"`
}

// BookedSpec is a session of another batch that already holds a trainer.
type BookedSpec struct {
	BatchID   string `yaml:"batch_id" validate:"required"`
	Date      string `yaml:"date" validate:"required"`
	SubjectID string `yaml:"subject_id"`
	TrainerID string `yaml:"trainer_id" validate:"required"`
	TimeSlot  string `yaml:"time_slot"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	scenario, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fixtures: %s: %w", filepath.Clean(path), err)
	}
	return scenario, nil
}

// Parse decodes and validates a YAML scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("scenario is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var scenario Scenario
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := validator.New().Struct(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Input converts the scenario into engine input, parsing every date.
func (s *Scenario) Input() (scheduler.GenerateInput, error) {
	var in scheduler.GenerateInput

	start, err := calendar.ParseDate(s.Batch.StartDate)
	if err != nil {
		return in, fmt.Errorf("batch start_date: %w", err)
	}
	cadence := calendar.Cadence(strings.ToLower(s.Batch.Cadence))
	if cadence == "" {
		cadence = calendar.CadenceWeekday
	}
	in.Batch = models.Batch{
		ID:        s.Batch.ID,
		Name:      s.Batch.Name,
		CourseID:  s.Course.ID,
		Location:  s.Batch.Location,
		Cadence:   cadence,
		StartDate: start,
	}
	if s.Batch.TimeSlot != "" {
		slot := s.Batch.TimeSlot
		in.Batch.TimeSlot = &slot
	}

	in.Course = models.Course{ID: s.Course.ID, Name: s.Course.Name, SubjectIDs: pq.StringArray(s.Course.Subjects)}

	for _, sub := range s.Subjects {
		in.Subjects = append(in.Subjects, models.Subject{ID: sub.ID, Code: sub.ID, Name: sub.Name, Duration: sub.Duration})
	}

	for _, t := range s.Trainers {
		trainer, err := t.model()
		if err != nil {
			return in, fmt.Errorf("trainer %s: %w", t.ID, err)
		}
		in.Trainers = append(in.Trainers, trainer)
	}

	for _, h := range s.Holidays {
		day, err := calendar.ParseDate(h.Date)
		if err != nil {
			return in, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		in.Holidays = append(in.Holidays, models.Holiday{Date: day, Name: h.Name})
	}

	for _, b := range s.Booked {
		day, err := calendar.ParseDate(b.Date)
		if err != nil {
			return in, fmt.Errorf("booked session of %s: %w", b.BatchID, err)
		}
		trainerID := b.TrainerID
		in.Existing = append(in.Existing, models.ScheduleSession{
			BatchID:   b.BatchID,
			Date:      day,
			SubjectID: b.SubjectID,
			TrainerID: &trainerID,
			Status:    models.SessionStatusAssigned,
			TimeSlot:  b.TimeSlot,
			Kind:      models.SessionKindRegular,
		})
	}
	return in, nil
}

func (t TrainerSpec) model() (models.Trainer, error) {
	trainer := models.Trainer{
		ID:        t.ID,
		Name:      t.Name,
		Locations: pq.StringArray(t.Locations),
		Expertise: pq.StringArray(t.Expertise),
		Priority:  models.TrainerPriority(strings.ToUpper(t.Priority)),
		WorkStart: t.WorkStart,
		WorkEnd:   t.WorkEnd,
		Status:    models.TrainerStatus(strings.ToUpper(t.Status)),
	}

	// An omitted availability list means the standard work week.
	if len(t.Availability) == 0 {
		trainer.Availability = models.WorkWeek()
	}
	for _, name := range t.Availability {
		day, ok := calendar.ParseWeekday(name)
		if !ok {
			return trainer, fmt.Errorf("unknown weekday %q", name)
		}
		trainer.Availability[day] = true
	}

	for i, l := range t.Leaves {
		start, err := calendar.ParseDate(l.Start)
		if err != nil {
			return trainer, fmt.Errorf("leave %d start: %w", i, err)
		}
		end, err := calendar.ParseDate(l.End)
		if err != nil {
			return trainer, fmt.Errorf("leave %d end: %w", i, err)
		}
		status := models.LeaveStatus(strings.ToUpper(l.Status))
		if status == "" {
			status = models.LeaveStatusApproved
		}
		trainer.Leaves = append(trainer.Leaves, models.TrainerLeave{
			TrainerID: t.ID,
			StartDate: start,
			EndDate:   end,
			Status:    status,
		})
	}
	return trainer, nil
}
