package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrxnomo/agendaun/internal/dto"
	"github.com/astrxnomo/agendaun/internal/middleware"
	"github.com/astrxnomo/agendaun/internal/service"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/export"
	"github.com/astrxnomo/agendaun/pkg/response"
)

type calendarViewService interface {
	View(ctx context.Context, slug string, req dto.CalendarViewRequest) (*dto.CalendarView, error)
	Export(ctx context.Context, slug string, req dto.CalendarViewRequest, format export.Format) (*service.ExportFile, error)
}

// CalendarViewHandler serves the filtered calendar projection.
type CalendarViewHandler struct {
	service calendarViewService
}

// NewCalendarViewHandler constructs the handler.
func NewCalendarViewHandler(svc calendarViewService) *CalendarViewHandler {
	return &CalendarViewHandler{service: svc}
}

// View godoc
// @Summary Filtered calendar view
// @Description Applies the academic scope cascade and etiquette color visibility to the events of a calendar.
// @Tags Calendar View
// @Produce json
// @Param slug path string true "Calendar slug"
// @Param sede query string false "Sede ID"
// @Param facultad query string false "Facultad ID, requires sede"
// @Param programa query string false "Programa ID, requires facultad"
// @Param hide query []string false "Colors to hide" collectionFormat(multi)
// @Param show query []string false "Colors to reveal" collectionFormat(multi)
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendars/{slug}/view [get]
func (h *CalendarViewHandler) View(c *gin.Context) {
	req, err := viewRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.service.View(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetMeta(c, "active_filters", view.ActiveFilters)
	middleware.SetMeta(c, "truncated", view.Truncated)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export filtered calendar view
// @Tags Calendar View
// @Produce text/csv
// @Produce application/pdf
// @Param slug path string true "Calendar slug"
// @Param format query string false "csv or pdf" default(csv)
// @Param sede query string false "Sede ID"
// @Param facultad query string false "Facultad ID"
// @Param programa query string false "Programa ID"
// @Param hide query []string false "Colors to hide" collectionFormat(multi)
// @Param show query []string false "Colors to reveal" collectionFormat(multi)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /calendars/{slug}/export [get]
func (h *CalendarViewHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "format must be csv or pdf"))
		return
	}
	req, err := viewRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.service.Export(c.Request.Context(), c.Param("slug"), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func viewRequest(c *gin.Context) (dto.CalendarViewRequest, error) {
	start, end, err := dateRange(c)
	if err != nil {
		return dto.CalendarViewRequest{}, err
	}
	return dto.CalendarViewRequest{
		SedeID:     pickQuery(c, "sede", "sede_id"),
		FacultadID: pickQuery(c, "facultad", "facultad_id"),
		ProgramaID: pickQuery(c, "programa", "programa_id"),
		Hide:       c.QueryArray("hide"),
		Show:       c.QueryArray("show"),
		StartDate:  start,
		EndDate:    end,
	}, nil
}
