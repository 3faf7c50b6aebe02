package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrxnomo/agendaun/internal/filter"
	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

type calendarRepoStub struct {
	calendars  map[string]models.Calendar
	events     []models.CalendarEvent
	total      int
	lastFilter models.CalendarEventFilter
	err        error
}

func newCalendarRepoStub() *calendarRepoStub {
	return &calendarRepoStub{calendars: map[string]models.Calendar{
		"academico": {ID: "cal-1", Slug: "academico", Name: "Calendario Académico", Public: true},
	}}
}

func (s *calendarRepoStub) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	out := []models.Calendar{}
	for _, c := range s.calendars {
		out = append(out, c)
	}
	return out, s.err
}

func (s *calendarRepoStub) FindCalendarBySlug(ctx context.Context, slug string) (*models.Calendar, error) {
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.calendars[slug]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (s *calendarRepoStub) ListEvents(ctx context.Context, filter models.CalendarEventFilter) ([]models.CalendarEvent, int, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, 0, s.err
	}
	out := []models.CalendarEvent{}
	for _, e := range s.events {
		if e.CalendarID == filter.CalendarID {
			out = append(out, e)
		}
	}
	total := len(out)
	if s.total > total {
		total = s.total
	}
	return out, total, nil
}

func (s *calendarRepoStub) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	for _, e := range s.events {
		if e.ID == id {
			event := e
			return &event, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *calendarRepoStub) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if s.err != nil {
		return s.err
	}
	event.ID = uuid.NewString()
	s.events = append(s.events, *event)
	return nil
}

func (s *calendarRepoStub) UpdateEvent(ctx context.Context, event *models.CalendarEvent) error {
	for i := range s.events {
		if s.events[i].ID == event.ID {
			s.events[i] = *event
			return nil
		}
	}
	return sql.ErrNoRows
}

func (s *calendarRepoStub) DeleteEvent(ctx context.Context, id string) error {
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return nil
}

type scopeStub struct {
	model *filter.ScopeModel
	err   error
}

func (s scopeStub) ScopeModel(ctx context.Context) (*filter.ScopeModel, error) {
	return s.model, s.err
}

type etiquetteRepoStub struct {
	items map[string]models.Etiquette
	order []string
	err   error
}

func newEtiquetteRepoStub(etiquettes ...models.Etiquette) *etiquetteRepoStub {
	s := &etiquetteRepoStub{items: map[string]models.Etiquette{}}
	for _, e := range etiquettes {
		s.items[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	return s
}

func (s *etiquetteRepoStub) ListByCalendar(ctx context.Context, calendarID string) ([]models.Etiquette, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := []models.Etiquette{}
	for _, id := range s.order {
		if e, ok := s.items[id]; ok && e.CalendarID == calendarID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *etiquetteRepoStub) GetByID(ctx context.Context, id string) (*models.Etiquette, error) {
	e, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (s *etiquetteRepoStub) Create(ctx context.Context, etiquette *models.Etiquette) error {
	if s.err != nil {
		return s.err
	}
	etiquette.ID = uuid.NewString()
	s.items[etiquette.ID] = *etiquette
	s.order = append(s.order, etiquette.ID)
	return nil
}

func (s *etiquetteRepoStub) Update(ctx context.Context, etiquette *models.Etiquette) error {
	if s.err != nil {
		return s.err
	}
	s.items[etiquette.ID] = *etiquette
	return nil
}

func (s *etiquetteRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.items, id)
	return nil
}

func testHierarchy() models.AcademicHierarchy {
	return models.AcademicHierarchy{
		Sedes: []models.Sede{
			{ID: "sede-central", Name: "Sede Central"},
			{ID: "sede-norte", Name: "Sede Norte"},
		},
		Facultades: []models.Facultad{
			{ID: "fac-ing", Name: "Ingeniería", SedeID: "sede-central"},
			{ID: "fac-med", Name: "Medicina", SedeID: "sede-norte"},
		},
		Programas: []models.Programa{
			{ID: "prog-sis", Name: "Ingeniería de Sistemas", FacultadID: "fac-ing"},
			{ID: "prog-enf", Name: "Enfermería", FacultadID: "fac-med"},
		},
	}
}

func strPtr(v string) *string {
	return &v
}

func colorPtr(c models.Color) *models.Color {
	return &c
}

func newTestCalendarService(repo *calendarRepoStub, etiquettes *etiquetteRepoStub) *CalendarService {
	return NewCalendarService(repo, scopeStub{model: filter.NewScopeModel(testHierarchy())}, etiquettes, validator.New(), nil)
}

func validEventRequest() EventRequest {
	start := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	return EventRequest{Title: "Inducción", Start: start, End: start.Add(2 * time.Hour)}
}

func TestCalendarServiceCreateGlobalEvent(t *testing.T) {
	repo := newCalendarRepoStub()
	svc := newTestCalendarService(repo, newEtiquetteRepoStub())

	req := validEventRequest()
	req.Color = strPtr("Blue")
	req.SedeID = strPtr("")

	event, err := svc.CreateEvent(context.Background(), "academico", req, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "cal-1", event.CalendarID)
	assert.True(t, event.IsGlobal())
	require.NotNil(t, event.Color)
	assert.Equal(t, models.ColorBlue, *event.Color)
	assert.Len(t, repo.events, 1)
}

func TestCalendarServiceCreateRejectsInvalidPayloads(t *testing.T) {
	svc := newTestCalendarService(newCalendarRepoStub(), newEtiquetteRepoStub())

	cases := map[string]func(*EventRequest){
		"unknown color":     func(r *EventRequest) { r.Color = strPtr("magenta") },
		"end before start":  func(r *EventRequest) { r.End = r.Start.Add(-time.Hour) },
		"missing title":     func(r *EventRequest) { r.Title = "" },
		"unknown sede":      func(r *EventRequest) { r.SedeID = strPtr("sede-sur") },
		"facultad off sede": func(r *EventRequest) { r.SedeID = strPtr("sede-norte"); r.FacultadID = strPtr("fac-ing") },
		"programa off fac":  func(r *EventRequest) { r.FacultadID = strPtr("fac-ing"); r.ProgramaID = strPtr("prog-enf") },
		"unknown etiquette": func(r *EventRequest) { r.EtiquetteID = strPtr("et-x") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validEventRequest()
			mutate(&req)
			_, err := svc.CreateEvent(context.Background(), "academico", req, "u-1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation), err.Error())
		})
	}
}

func TestCalendarServiceCreateInheritsEtiquetteColor(t *testing.T) {
	etiquettes := newEtiquetteRepoStub(
		models.Etiquette{ID: "et-1", CalendarID: "cal-1", Name: "Cultural", Color: models.ColorPurple, IsActive: true},
		models.Etiquette{ID: "et-2", CalendarID: "cal-2", Name: "Otro", Color: models.ColorRed, IsActive: true},
	)
	svc := newTestCalendarService(newCalendarRepoStub(), etiquettes)

	req := validEventRequest()
	req.EtiquetteID = strPtr("et-1")
	req.SedeID = strPtr("sede-central")
	req.FacultadID = strPtr("fac-ing")
	event, err := svc.CreateEvent(context.Background(), "academico", req, "u-1")
	require.NoError(t, err)
	require.NotNil(t, event.Color)
	assert.Equal(t, models.ColorPurple, *event.Color)

	req.EtiquetteID = strPtr("et-2")
	_, err = svc.CreateEvent(context.Background(), "academico", req, "u-1")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestCalendarServiceUnknownCalendar(t *testing.T) {
	svc := newTestCalendarService(newCalendarRepoStub(), newEtiquetteRepoStub())

	_, err := svc.CreateEvent(context.Background(), "inexistente", validEventRequest(), "u-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, _, err = svc.ListEvents(context.Background(), "inexistente", EventListRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCalendarServiceUpdateAndDelete(t *testing.T) {
	repo := newCalendarRepoStub()
	svc := newTestCalendarService(repo, newEtiquetteRepoStub())

	event, err := svc.CreateEvent(context.Background(), "academico", validEventRequest(), "u-1")
	require.NoError(t, err)

	req := validEventRequest()
	req.Title = "Inducción de primer semestre"
	req.ProgramaID = strPtr("prog-sis")
	updated, err := svc.UpdateEvent(context.Background(), event.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Inducción de primer semestre", updated.Title)
	assert.Equal(t, "prog-sis", *updated.ProgramaID)
	assert.Equal(t, "u-1", updated.CreatedBy)

	require.NoError(t, svc.DeleteEvent(context.Background(), event.ID))
	_, err = svc.GetEvent(context.Background(), event.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCalendarServiceListEventsPagination(t *testing.T) {
	repo := newCalendarRepoStub()
	svc := newTestCalendarService(repo, newEtiquetteRepoStub())

	_, pagination, err := svc.ListEvents(context.Background(), "academico", EventListRequest{Page: 0, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 50, pagination.PageSize)
	assert.Equal(t, "cal-1", repo.lastFilter.CalendarID)
}
