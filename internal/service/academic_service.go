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
	"github.com/astrxnomo/agendaun/internal/repository"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
	"github.com/astrxnomo/agendaun/pkg/logger"
)

const (
	academicCacheKey     = "academic:hierarchy"
	academicCachePattern = "academic:*"
)

type academicRepository interface {
	ListSedes(ctx context.Context) ([]models.Sede, error)
	ListFacultades(ctx context.Context, sedeID string) ([]models.Facultad, error)
	ListProgramas(ctx context.Context, facultadID string) ([]models.Programa, error)
	FindSede(ctx context.Context, id string) (*models.Sede, error)
	FindFacultad(ctx context.Context, id string) (*models.Facultad, error)
	CreateSede(ctx context.Context, sede *models.Sede) error
	CreateFacultad(ctx context.Context, facultad *models.Facultad) error
	CreatePrograma(ctx context.Context, programa *models.Programa) error
	Delete(ctx context.Context, tier models.ScopeTier, id string) error
	Hierarchy(ctx context.Context) (*models.AcademicHierarchy, error)
}

type academicCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// CreateScopeRequest names a new sede, facultad or programa. ParentID is the
// sede of a facultad or the facultad of a programa and is taken from the route.
type CreateScopeRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	ParentID string `json:"-"`
}

// AcademicService manages the Sede -> Facultad -> Programa hierarchy and serves
// it to the filter core.
type AcademicService struct {
	repo      academicRepository
	cache     academicCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicService constructs the service. cache may be nil.
func NewAcademicService(repo academicRepository, cache academicCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AcademicService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// ListSedes returns every sede.
func (s *AcademicService) ListSedes(ctx context.Context) ([]models.Sede, error) {
	sedes, err := s.repo.ListSedes(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sedes")
	}
	return sedes, nil
}

// ListFacultades returns the facultades of an existing sede.
func (s *AcademicService) ListFacultades(ctx context.Context, sedeID string) ([]models.Facultad, error) {
	if _, err := s.repo.FindSede(ctx, sedeID); err != nil {
		return nil, notFoundOr(err, "sede not found", "failed to load sede")
	}
	facultades, err := s.repo.ListFacultades(ctx, sedeID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list facultades")
	}
	return facultades, nil
}

// ListProgramas returns the programas of an existing facultad.
func (s *AcademicService) ListProgramas(ctx context.Context, facultadID string) ([]models.Programa, error) {
	if _, err := s.repo.FindFacultad(ctx, facultadID); err != nil {
		return nil, notFoundOr(err, "facultad not found", "failed to load facultad")
	}
	programas, err := s.repo.ListProgramas(ctx, facultadID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list programas")
	}
	return programas, nil
}

// CreateSede registers a new sede.
func (s *AcademicService) CreateSede(ctx context.Context, req CreateScopeRequest) (*models.Sede, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid sede payload")
	}
	sede := &models.Sede{Name: req.Name}
	if err := s.repo.CreateSede(ctx, sede); err != nil {
		return nil, conflictOr(err, "sede already exists", "failed to create sede")
	}
	s.invalidate(ctx)
	return sede, nil
}

// CreateFacultad registers a facultad under an existing sede.
func (s *AcademicService) CreateFacultad(ctx context.Context, req CreateScopeRequest) (*models.Facultad, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid facultad payload")
	}
	if _, err := s.repo.FindSede(ctx, req.ParentID); err != nil {
		return nil, notFoundOr(err, "sede not found", "failed to load sede")
	}
	facultad := &models.Facultad{Name: req.Name, SedeID: req.ParentID}
	if err := s.repo.CreateFacultad(ctx, facultad); err != nil {
		return nil, conflictOr(err, "facultad already exists in sede", "failed to create facultad")
	}
	s.invalidate(ctx)
	return facultad, nil
}

// CreatePrograma registers a programa under an existing facultad.
func (s *AcademicService) CreatePrograma(ctx context.Context, req CreateScopeRequest) (*models.Programa, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalidPayload(err, "invalid programa payload")
	}
	if _, err := s.repo.FindFacultad(ctx, req.ParentID); err != nil {
		return nil, notFoundOr(err, "facultad not found", "failed to load facultad")
	}
	programa := &models.Programa{Name: req.Name, FacultadID: req.ParentID}
	if err := s.repo.CreatePrograma(ctx, programa); err != nil {
		return nil, conflictOr(err, "programa already exists in facultad", "failed to create programa")
	}
	s.invalidate(ctx)
	return programa, nil
}

// Delete removes a node of the hierarchy together with its descendants.
func (s *AcademicService) Delete(ctx context.Context, tier models.ScopeTier, id string) error {
	if !tier.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown academic tier")
	}
	if err := s.repo.Delete(ctx, tier, id); err != nil {
		return appErrors.Internal(err, "failed to delete "+string(tier))
	}
	s.invalidate(ctx)
	return nil
}

// Hierarchy returns the full tree, served from cache when possible.
func (s *AcademicService) Hierarchy(ctx context.Context) (*models.AcademicHierarchy, error) {
	log := logger.WithContext(ctx, s.logger)
	if s.cache != nil {
		var cached models.AcademicHierarchy
		hit, err := s.cache.Get(ctx, academicCacheKey, &cached)
		if err != nil {
			log.Debug("academic cache unavailable", zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	h, err := s.repo.Hierarchy(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load academic hierarchy")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, academicCacheKey, h, s.cacheTTL); err != nil {
			log.Debug("academic cache write skipped", zap.Error(err))
		}
	}
	return h, nil
}

// ScopeModel builds the lookup model consumed by the filtering pipeline.
func (s *AcademicService) ScopeModel(ctx context.Context) (*filter.ScopeModel, error) {
	h, err := s.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}
	return filter.NewScopeModel(*h), nil
}

func (s *AcademicService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, academicCachePattern); err != nil {
		logger.WithContext(ctx, s.logger).Warn("failed to invalidate academic cache", zap.Error(err))
	}
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

func conflictOr(err error, conflict, internal string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict)
	}
	return appErrors.Internal(err, internal)
}
