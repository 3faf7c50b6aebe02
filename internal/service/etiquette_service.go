package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/astrxnomo/agendaun/internal/models"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

type etiquetteRepository interface {
	ListByCalendar(ctx context.Context, calendarID string) ([]models.Etiquette, error)
	GetByID(ctx context.Context, id string) (*models.Etiquette, error)
	Create(ctx context.Context, etiquette *models.Etiquette) error
	Update(ctx context.Context, etiquette *models.Etiquette) error
	Delete(ctx context.Context, id string) error
}

type calendarLookup interface {
	FindCalendarBySlug(ctx context.Context, slug string) (*models.Calendar, error)
}

// EtiquetteRequest creates or updates an etiquette. IsActive defaults to true.
type EtiquetteRequest struct {
	Name     string `json:"name" validate:"required,max=80"`
	Color    string `json:"color" validate:"required,color"`
	IsActive *bool  `json:"is_active"`
}

// EtiquetteService manages the colored labels of calendars.
type EtiquetteService struct {
	repo      etiquetteRepository
	calendars calendarLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEtiquetteService constructs the service.
func NewEtiquetteService(repo etiquetteRepository, calendars calendarLookup, validate *validator.Validate, logger *zap.Logger) *EtiquetteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EtiquetteService{repo: repo, calendars: calendars, validator: newValidator(validate), logger: logger}
}

// List returns the etiquettes of a calendar.
func (s *EtiquetteService) List(ctx context.Context, slug string) ([]models.Etiquette, error) {
	calendar, err := s.calendar(ctx, slug)
	if err != nil {
		return nil, err
	}
	etiquettes, err := s.repo.ListByCalendar(ctx, calendar.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list etiquettes")
	}
	return etiquettes, nil
}

// Create adds an etiquette to a calendar.
func (s *EtiquetteService) Create(ctx context.Context, slug string, req EtiquetteRequest) (*models.Etiquette, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid etiquette payload")
	}
	calendar, err := s.calendar(ctx, slug)
	if err != nil {
		return nil, err
	}
	color, _ := models.ParseColor(req.Color)
	etiquette := &models.Etiquette{
		CalendarID: calendar.ID,
		Name:       req.Name,
		Color:      color,
		IsActive:   req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, etiquette); err != nil {
		return nil, conflictOr(err, "etiquette already exists in calendar", "failed to create etiquette")
	}
	return etiquette, nil
}

// Update changes name, color and default visibility of an etiquette.
func (s *EtiquetteService) Update(ctx context.Context, id string, req EtiquetteRequest) (*models.Etiquette, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid etiquette payload")
	}
	etiquette, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "etiquette not found", "failed to load etiquette")
	}
	etiquette.Name = req.Name
	etiquette.Color, _ = models.ParseColor(req.Color)
	if req.IsActive != nil {
		etiquette.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, etiquette); err != nil {
		return nil, conflictOr(err, "etiquette already exists in calendar", "failed to update etiquette")
	}
	return etiquette, nil
}

// Delete removes an etiquette. Events keep their own color.
func (s *EtiquetteService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "etiquette not found", "failed to load etiquette")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete etiquette")
	}
	return nil
}

func (s *EtiquetteService) calendar(ctx context.Context, slug string) (*models.Calendar, error) {
	calendar, err := s.calendars.FindCalendarBySlug(ctx, slug)
	if err != nil {
		return nil, notFoundOr(err, "calendar not found", "failed to load calendar")
	}
	return calendar, nil
}
