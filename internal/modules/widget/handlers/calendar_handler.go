package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/core/calendar"
	"github.com/MuhamadAgungGumelar/business-chat-widget-be/internal/modules/widget/services"
)

type CalendarHandler struct {
	cal        *calendar.Calendar
	scheduling *services.SchedulingService
}

func NewCalendarHandler(scheduling *services.SchedulingService) *CalendarHandler {
	return &CalendarHandler{cal: scheduling.Calendar(), scheduling: scheduling}
}

// GetSlots godoc
// @Summary Get bookable dates or time slots
// @Description Without a date, lists the next bookable dates; with a date, lists its time slots
// @Tags Calendar
// @Produce json
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param days query int false "Number of dates to list" default(14)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /calendar/slots [get]
func (h *CalendarHandler) GetSlots(c *fiber.Ctx) error {
	date := c.Query("date")
	if date == "" {
		days := c.QueryInt("days", 14)
		if days <= 0 || days > 60 {
			days = 14
		}
		return c.JSON(fiber.Map{
			"dates":    h.cal.AvailableDates(days),
			"timezone": h.cal.Config().Timezone,
		})
	}

	day, err := h.cal.ParseDate(date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date must be YYYY-MM-DD",
		})
	}

	slots := h.cal.TimeSlots(day)
	if slots == nil {
		slots = []string{}
	}
	return c.JSON(fiber.Map{
		"date":      date,
		"available": h.cal.IsDateAvailable(day),
		"slots":     slots,
		"timezone":  h.cal.Config().Timezone,
	})
}

// ICSRequest represents a meeting to export
type ICSRequest struct {
	calendar.Event
	Method string `json:"method,omitempty" example:"REQUEST"`
	Notify bool   `json:"notify,omitempty"`
}

// CreateICS godoc
// @Summary Export a meeting
// @Description Returns the iCalendar text and add-to-calendar links for Google, Outlook and Yahoo.
// @Description With notify set, the invitation is emailed to the attendees.
// @Tags Calendar
// @Accept json
// @Produce json
// @Param data body ICSRequest true "Meeting"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /calendar/ics [post]
func (h *CalendarHandler) CreateICS(c *fiber.Ctx) error {
	var req ICSRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request",
		})
	}

	booking, err := h.scheduling.Book(c.UserContext(), req.Event, req.Method, req.Notify)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidEvent) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate calendar file",
		})
	}

	return c.JSON(booking)
}
