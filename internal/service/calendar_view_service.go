package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/astrxnomo/agendaun/internal/dto"
	"github.com/astrxnomo/agendaun/internal/filter"
	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/export"
	"github.com/astrxnomo/agendaun/pkg/logger"
)

type viewCalendarRepository interface {
	FindCalendarBySlug(ctx context.Context, slug string) (*models.Calendar, error)
	ListEvents(ctx context.Context, filter models.CalendarEventFilter) ([]models.CalendarEvent, int, error)
}

type viewEtiquetteRepository interface {
	ListByCalendar(ctx context.Context, calendarID string) ([]models.Etiquette, error)
}

// CalendarViewConfig bounds view queries.
type CalendarViewConfig struct {
	MaxEvents int
	Location  *time.Location
}

// ExportFile is a rendered calendar export.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// CalendarViewService assembles filtered calendar views: it loads events,
// etiquettes and the academic scope, then runs them through the filter pipeline.
type CalendarViewService struct {
	calendars  viewCalendarRepository
	etiquettes viewEtiquetteRepository
	scope      scopeProvider
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        CalendarViewConfig
	now        func() time.Time
}

// NewCalendarViewService constructs the service. metrics may be nil.
func NewCalendarViewService(calendars viewCalendarRepository, etiquettes viewEtiquetteRepository, scope scopeProvider, metrics *MetricsService, cfg CalendarViewConfig, logger *zap.Logger) *CalendarViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = 500
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &CalendarViewService{
		calendars:  calendars,
		etiquettes: etiquettes,
		scope:      scope,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// View returns the filtered calendar identified by slug.
func (s *CalendarViewService) View(ctx context.Context, slug string, req dto.CalendarViewRequest) (*dto.CalendarView, error) {
	view, _, err := s.build(ctx, slug, req)
	return view, err
}

// Export renders the filtered view as CSV or PDF.
func (s *CalendarViewService) Export(ctx context.Context, slug string, req dto.CalendarViewRequest, format export.Format) (*ExportFile, error) {
	view, scope, err := s.build(ctx, slug, req)
	if err != nil {
		return nil, err
	}

	body, err := export.RendererFor(format).Render(exportDataset(view, scope))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render calendar export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", view.Calendar.Slug, view.Range.Start.Format("2006-01-02"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func (s *CalendarViewService) build(ctx context.Context, slug string, req dto.CalendarViewRequest) (*dto.CalendarView, *filter.ScopeModel, error) {
	start := time.Now()
	log := logger.WithContext(ctx, s.logger)

	from, to, err := s.resolveRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, nil, err
	}

	calendar, err := s.calendars.FindCalendarBySlug(ctx, slug)
	if err != nil {
		return nil, nil, notFoundOr(err, "calendar not found", "failed to load calendar")
	}

	events, total, err := s.calendars.ListEvents(ctx, models.CalendarEventFilter{
		CalendarID: calendar.ID,
		From:       &from,
		To:         &to,
		Page:       1,
		PageSize:   s.cfg.MaxEvents,
	})
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load calendar events")
	}
	truncated := total > len(events)
	if truncated {
		log.Warn("calendar view truncated",
			zap.String("calendar", slug),
			zap.Int("total", total),
			zap.Int("limit", s.cfg.MaxEvents),
		)
	}

	etiquettes, err := s.etiquettes.ListByCalendar(ctx, calendar.ID)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load etiquettes")
	}

	scope, err := s.scope.ScopeModel(ctx)
	if err != nil {
		return nil, nil, err
	}

	state, err := buildState(etiquettes, req)
	if err != nil {
		return nil, nil, err
	}

	result := filter.NewPipeline(scope).Run(events, state)
	s.metrics.ObserveCalendarView(result.Summary.FilteredCount, result.Summary.HiddenCount, time.Since(start))
	log.Debug("calendar view built",
		zap.String("calendar", slug),
		zap.Int("total", result.Summary.Total),
		zap.Int("visible", result.Summary.FilteredCount),
		zap.Int("active_filters", result.Summary.ActiveFilters),
	)

	selection := state.Selection()
	visible := state.Visible()
	view := &dto.CalendarView{
		Calendar:      *calendar,
		Range:         dto.CalendarViewRange{Start: from, End: to},
		Events:        result.Filtered,
		Summary:       result.Summary,
		ActiveFilters: result.Summary.ActiveFilters,
		Selection: dto.CalendarViewSelection{
			SedeID:     selection.SedeID,
			FacultadID: selection.FacultadID,
			ProgramaID: selection.ProgramaID,
		},
		VisibleColors: visible.Colors(),
		Etiquettes:    make([]dto.EtiquetteView, 0, len(etiquettes)),
		Options: dto.CalendarViewOptions{
			Sedes:      scope.AvailableChildren(models.TierSede, ""),
			Facultades: []filter.ScopeOption{},
			Programas:  []filter.ScopeOption{},
		},
		Truncated: truncated,
	}
	for _, etiquette := range etiquettes {
		color := etiquette.Color
		view.Etiquettes = append(view.Etiquettes, dto.EtiquetteView{Etiquette: etiquette, Visible: visible.IsColorVisible(&color)})
	}
	if selection.SedeID != nil {
		view.Options.Facultades = scope.AvailableChildren(models.TierFacultad, *selection.SedeID)
	}
	if selection.FacultadID != nil {
		view.Options.Programas = scope.AvailableChildren(models.TierPrograma, *selection.FacultadID)
	}

	return view, scope, nil
}

// buildState seeds visibility from the etiquettes, applies the scope selection
// top-down, reveals the requested colors and then hides the requested ones.
func buildState(etiquettes []models.Etiquette, req dto.CalendarViewRequest) (*filter.State, error) {
	state := filter.NewState(etiquettes)

	tiers := []struct {
		tier  models.ScopeTier
		value string
	}{
		{models.TierSede, req.SedeID},
		{models.TierFacultad, req.FacultadID},
		{models.TierPrograma, req.ProgramaID},
	}
	for _, t := range tiers {
		if err := state.SetFilter(t.tier, strings.TrimSpace(t.value)); err != nil {
			if errors.Is(err, filter.ErrMissingParent) {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
					fmt.Sprintf("%s requires its parent scope to be selected", t.tier))
			}
			return nil, invalidPayload(err, "invalid scope selection")
		}
	}

	show, err := parseColors(req.Show)
	if err != nil {
		return nil, err
	}
	for _, c := range show {
		color := c
		if !state.IsColorVisible(&color) {
			state.ToggleColorVisibility(c)
		}
	}

	hide, err := parseColors(req.Hide)
	if err != nil {
		return nil, err
	}
	for _, c := range hide {
		color := c
		if state.IsColorVisible(&color) {
			state.ToggleColorVisibility(c)
		}
	}

	return state, nil
}

func parseColors(raw []string) ([]models.Color, error) {
	colors := make([]models.Color, 0, len(raw))
	for _, value := range raw {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			color, ok := models.ParseColor(part)
			if !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown color %q", strings.TrimSpace(part)))
			}
			colors = append(colors, color)
		}
	}
	return colors, nil
}

// resolveRange defaults to the current month. A single bound extends one month
// towards the missing side.
func (s *CalendarViewService) resolveRange(start, end *time.Time) (time.Time, time.Time, error) {
	switch {
	case start == nil && end == nil:
		now := s.now().In(s.cfg.Location)
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.cfg.Location)
		return from, from.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
	case start != nil && end == nil:
		return *start, start.AddDate(0, 1, 0).Add(-time.Nanosecond), nil
	case start == nil && end != nil:
		return end.AddDate(0, -1, 0).Add(time.Nanosecond), *end, nil
	}
	if end.Before(*start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
	}
	return *start, *end, nil
}

func exportDataset(view *dto.CalendarView, scope *filter.ScopeModel) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("%s (%s - %s)", view.Calendar.Name, view.Range.Start.Format("2006-01-02"), view.Range.End.Format("2006-01-02")),
		Headers: []string{"Title", "Start", "End", "All day", "Color", "Sede", "Facultad", "Programa", "Location"},
		Rows:    make([][]string, 0, len(view.Events)),
	}
	for _, event := range view.Events {
		layout := "2006-01-02 15:04"
		if event.AllDay {
			layout = "2006-01-02"
		}
		allDay := "no"
		if event.AllDay {
			allDay = "yes"
		}
		data.Rows = append(data.Rows, []string{
			event.Title,
			event.Start.Format(layout),
			event.End.Format(layout),
			allDay,
			colorLabel(event.Color),
			scopeLabel(event.SedeID, scope.SedeName),
			scopeLabel(event.FacultadID, scope.FacultadName),
			scopeLabel(event.ProgramaID, scope.ProgramaName),
			valueOrEmpty(event.Location),
		})
	}
	return data
}

func colorLabel(c *models.Color) string {
	if c == nil {
		return ""
	}
	return string(*c)
}

func scopeLabel(id *string, resolve func(string) (string, bool)) string {
	if id == nil {
		return ""
	}
	if name, ok := resolve(*id); ok {
		return name
	}
	return *id
}

func valueOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
