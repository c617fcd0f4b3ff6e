package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/batch-scheduler-api/internal/calendar"
	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
)

type holidayRangeReader interface {
	ListBetween(ctx context.Context, from, to calendar.Date) ([]models.Holiday, error)
}

// CalendarService answers working-day questions against the stored holiday calendar.
type CalendarService struct {
	holidays  holidayRangeReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(holidays holidayRangeReader, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{holidays: holidays, validator: validate, logger: logger}
}

// BusinessDays moves q.Days Monday-to-Friday non-holiday days from q.Start.
func (s *CalendarService) BusinessDays(ctx context.Context, q dto.BusinessDaysQuery) (*dto.BusinessDaysResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid business days query")
	}
	start, err := parseQueryDate(q.Start)
	if err != nil {
		return nil, err
	}

	span := abs(q.Days)*2 + 31
	holidays, err := s.holidaySet(ctx, start.PlusDays(-span), start.PlusDays(span))
	if err != nil {
		return nil, err
	}
	result := calendar.AddBusinessDays(start, q.Days, holidays)
	return &dto.BusinessDaysResponse{Start: start.String(), Days: q.Days, Result: result.String()}, nil
}

// WorkingDays lists the next q.Count schedulable days from q.Start for a cadence.
func (s *CalendarService) WorkingDays(ctx context.Context, q dto.WorkingDaysQuery) (*dto.WorkingDaysResponse, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working days query")
	}
	start, err := parseQueryDate(q.Start)
	if err != nil {
		return nil, err
	}
	cadence := calendar.Cadence(strings.ToLower(q.Cadence))
	if cadence == "" {
		cadence = calendar.CadenceWeekday
	}

	// Weekend cadence yields two days a week; reserve enough holidays for that.
	holidays, err := s.holidaySet(ctx, start, start.PlusDays(q.Count*4+31))
	if err != nil {
		return nil, err
	}
	dates := calendar.NextWorkingDays(start, q.Count, cadence, holidays)
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	return &dto.WorkingDaysResponse{Start: start.String(), Cadence: string(cadence), Dates: out}, nil
}

func (s *CalendarService) holidaySet(ctx context.Context, from, to calendar.Date) (calendar.HolidaySet, error) {
	holidays, err := s.holidays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load holidays")
	}
	return models.HolidaySet(holidays), nil
}

func parseQueryDate(raw string) (calendar.Date, error) {
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, appErrors.Wrap(err, appErrors.ErrInvalidDate.Code, appErrors.ErrInvalidDate.Status, appErrors.ErrInvalidDate.Message)
	}
	return d, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
