package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/batch-scheduler-api/internal/dto"
	"github.com/noah-isme/batch-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/batch-scheduler-api/pkg/errors"
	"github.com/noah-isme/batch-scheduler-api/pkg/response"
)

type workingCalendar interface {
	BusinessDays(ctx context.Context, q dto.BusinessDaysQuery) (*dto.BusinessDaysResponse, error)
	WorkingDays(ctx context.Context, q dto.WorkingDaysQuery) (*dto.WorkingDaysResponse, error)
}

// CalendarHandler exposes working-day arithmetic.
type CalendarHandler struct {
	service workingCalendar
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// BusinessDays godoc
// @Summary Offset a date by business days
// @Tags Calendar
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param days query int true "Business days to add, negative walks backwards"
// @Success 200 {object} response.Envelope
// @Router /calendar/business-days [get]
func (h *CalendarHandler) BusinessDays(c *gin.Context) {
	var query dto.BusinessDaysQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid business days query"))
		return
	}
	result, err := h.service.BusinessDays(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// WorkingDays godoc
// @Summary List upcoming working days for a cadence
// @Tags Calendar
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param count query int true "Number of days"
// @Param cadence query string false "weekday or weekend"
// @Success 200 {object} response.Envelope
// @Router /calendar/working-days [get]
func (h *CalendarHandler) WorkingDays(c *gin.Context) {
	var query dto.WorkingDaysQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid working days query"))
		return
	}
	result, err := h.service.WorkingDays(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
