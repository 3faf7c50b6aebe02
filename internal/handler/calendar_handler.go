package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrxnomo/agendaun/internal/models"
	"github.com/astrxnomo/agendaun/internal/service"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/response"
)

type calendarService interface {
	ListCalendars(ctx context.Context) ([]models.Calendar, error)
	GetCalendar(ctx context.Context, slug string) (*models.Calendar, error)
	ListEvents(ctx context.Context, slug string, req service.EventListRequest) ([]models.CalendarEvent, *models.Pagination, error)
	GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error)
	CreateEvent(ctx context.Context, slug string, req service.EventRequest, createdBy string) (*models.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id string, req service.EventRequest) (*models.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) error
}

// CalendarHandler exposes calendars and raw event CRUD.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc calendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// ListCalendars godoc
// @Summary List calendars
// @Tags Calendars
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendars [get]
func (h *CalendarHandler) ListCalendars(c *gin.Context) {
	calendars, err := h.service.ListCalendars(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendars, nil)
}

// GetCalendar godoc
// @Summary Get calendar
// @Tags Calendars
// @Produce json
// @Param slug path string true "Calendar slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendars/{slug} [get]
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	calendar, err := h.service.GetCalendar(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil)
}

// ListEvents godoc
// @Summary List calendar events
// @Description Unfiltered, paginated events of a calendar. Use the view endpoint for scope and color filtering.
// @Tags Events
// @Produce json
// @Param slug path string true "Calendar slug"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /calendars/{slug}/events [get]
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	start, end, err := dateRange(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, size := pageParams(c, 50)

	events, pagination, err := h.service.ListEvents(c.Request.Context(), c.Param("slug"), service.EventListRequest{
		StartDate: start,
		EndDate:   end,
		Page:      page,
		PageSize:  size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, pagination)
}

// GetEvent godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *CalendarHandler) GetEvent(c *gin.Context) {
	event, err := h.service.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// CreateEvent godoc
// @Summary Create event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Calendar slug"
// @Param payload body service.EventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /calendars/{slug}/events [post]
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.EventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}

	event, err := h.service.CreateEvent(c.Request.Context(), c.Param("slug"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// UpdateEvent godoc
// @Summary Update event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param payload body service.EventRequest true "Event payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [put]
func (h *CalendarHandler) UpdateEvent(c *gin.Context) {
	var req service.EventRequest
	if !bindJSON(c, &req, "invalid event payload") {
		return
	}

	event, err := h.service.UpdateEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// DeleteEvent godoc
// @Summary Delete event
// @Tags Events
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [delete]
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	if err := h.service.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
