package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/astrxnomo/agendaun/internal/filter"
	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/logger"
)

type calendarRepository interface {
	ListCalendars(ctx context.Context) ([]models.Calendar, error)
	FindCalendarBySlug(ctx context.Context, slug string) (*models.Calendar, error)
	ListEvents(ctx context.Context, filter models.CalendarEventFilter) ([]models.CalendarEvent, int, error)
	GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error)
	CreateEvent(ctx context.Context, event *models.CalendarEvent) error
	UpdateEvent(ctx context.Context, event *models.CalendarEvent) error
	DeleteEvent(ctx context.Context, id string) error
}

type scopeProvider interface {
	ScopeModel(ctx context.Context) (*filter.ScopeModel, error)
}

type etiquetteReader interface {
	GetByID(ctx context.Context, id string) (*models.Etiquette, error)
}

// EventListRequest pages through the events of a calendar.
type EventListRequest struct {
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// EventRequest is the create and update payload of a calendar event. Omitting
// every scope reference makes the event global.
type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=4000"`
	Location    *string   `json:"location" validate:"omitempty,max=200"`
	Start       time.Time `json:"start" validate:"required"`
	End         time.Time `json:"end" validate:"required"`
	AllDay      bool      `json:"all_day"`
	Color       *string   `json:"color" validate:"omitempty,color"`
	EtiquetteID *string   `json:"etiquette_id"`
	SedeID      *string   `json:"sede_id"`
	FacultadID  *string   `json:"facultad_id"`
	ProgramaID  *string   `json:"programa_id"`
}

// CalendarService manages calendars and their events.
type CalendarService struct {
	repo       calendarRepository
	scope      scopeProvider
	etiquettes etiquetteReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(repo calendarRepository, scope scopeProvider, etiquettes etiquetteReader, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{repo: repo, scope: scope, etiquettes: etiquettes, validator: newValidator(validate), logger: logger}
}

// ListCalendars returns all calendars.
func (s *CalendarService) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	calendars, err := s.repo.ListCalendars(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list calendars")
	}
	return calendars, nil
}

// GetCalendar returns a calendar by slug.
func (s *CalendarService) GetCalendar(ctx context.Context, slug string) (*models.Calendar, error) {
	calendar, err := s.repo.FindCalendarBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "calendar not found", "failed to load calendar")
	}
	return calendar, nil
}

// ListEvents returns a page of the calendar's events, unfiltered by scope.
func (s *CalendarService) ListEvents(ctx context.Context, slug string, req EventListRequest) ([]models.CalendarEvent, *models.Pagination, error) {
	calendar, err := s.GetCalendar(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
	}
	query := models.CalendarEventFilter{
		CalendarID: calendar.ID,
		From:       req.StartDate,
		To:         req.EndDate,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = 50
	}
	events, total, err := s.repo.ListEvents(ctx, query)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list calendar events")
	}
	return events, &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: total}, nil
}

// GetEvent returns a calendar event by id.
func (s *CalendarService) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "event not found", "failed to get event")
	}
	return event, nil
}

// CreateEvent adds an event to the calendar identified by slug.
func (s *CalendarService) CreateEvent(ctx context.Context, slug string, req EventRequest, createdBy string) (*models.CalendarEvent, error) {
	calendar, err := s.GetCalendar(ctx, slug)
	if err != nil {
		return nil, err
	}
	event := &models.CalendarEvent{CalendarID: calendar.ID, CreatedBy: createdBy}
	if err := s.apply(ctx, event, req); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, appErrors.Internal(err, "failed to create event")
	}
	logger.WithContext(ctx, s.logger).Info("calendar event created",
		zap.String("event_id", event.ID),
		zap.String("calendar", slug),
		zap.Bool("global", event.IsGlobal()),
	)
	return event, nil
}

// UpdateEvent replaces the editable fields of an event.
func (s *CalendarService) UpdateEvent(ctx context.Context, id string, req EventRequest) (*models.CalendarEvent, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, event, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, appErrors.Internal(err, "failed to update event")
	}
	return event, nil
}

// DeleteEvent removes an event.
func (s *CalendarService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete event")
	}
	return nil
}

// apply validates req and copies it onto event.
func (s *CalendarService) apply(ctx context.Context, event *models.CalendarEvent, req EventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalidPayload(err, "invalid event payload")
	}
	if req.End.Before(req.Start) {
		return appErrors.Clone(appErrors.ErrValidation, "end must be on or after start")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = normaliseID(req.Location)
	event.Start = req.Start
	event.End = req.End
	event.AllDay = req.AllDay
	event.EtiquetteID = normaliseID(req.EtiquetteID)
	event.SedeID = normaliseID(req.SedeID)
	event.FacultadID = normaliseID(req.FacultadID)
	event.ProgramaID = normaliseID(req.ProgramaID)
	event.Color = nil
	if req.Color != nil && *req.Color != "" {
		color, _ := models.ParseColor(*req.Color)
		event.Color = &color
	}

	if err := s.resolveEtiquette(ctx, event); err != nil {
		return err
	}
	return s.validateScope(ctx, event)
}

// resolveEtiquette checks the etiquette belongs to the event's calendar and
// inherits its color when the event has none.
func (s *CalendarService) resolveEtiquette(ctx context.Context, event *models.CalendarEvent) error {
	if event.EtiquetteID == nil || s.etiquettes == nil {
		return nil
	}
	etiquette, err := s.etiquettes.GetByID(ctx, *event.EtiquetteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "etiquette_id does not exist")
		}
		return appErrors.Internal(err, "failed to load etiquette")
	}
	if etiquette.CalendarID != event.CalendarID {
		return appErrors.Clone(appErrors.ErrValidation, "etiquette belongs to another calendar")
	}
	if event.Color == nil {
		color := etiquette.Color
		event.Color = &color
	}
	return nil
}

// validateScope rejects references to unknown scopes and parent/child pairs
// that contradict the hierarchy.
func (s *CalendarService) validateScope(ctx context.Context, event *models.CalendarEvent) error {
	if event.IsGlobal() || s.scope == nil {
		return nil
	}
	model, err := s.scope.ScopeModel(ctx)
	if err != nil {
		return err
	}
	if event.SedeID != nil {
		if _, ok := model.SedeName(*event.SedeID); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "sede_id does not exist")
		}
	}
	if event.FacultadID != nil {
		if _, ok := model.FacultadName(*event.FacultadID); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "facultad_id does not exist")
		}
		if event.SedeID != nil && !model.FacultadBelongsTo(*event.FacultadID, *event.SedeID) {
			return appErrors.Clone(appErrors.ErrValidation, "facultad does not belong to sede")
		}
	}
	if event.ProgramaID != nil {
		if _, ok := model.ProgramaName(*event.ProgramaID); !ok {
			return appErrors.Clone(appErrors.ErrValidation, "programa_id does not exist")
		}
		if event.FacultadID != nil && !model.ProgramaBelongsTo(*event.ProgramaID, *event.FacultadID) {
			return appErrors.Clone(appErrors.ErrValidation, "programa does not belong to facultad")
		}
	}
	return nil
}
