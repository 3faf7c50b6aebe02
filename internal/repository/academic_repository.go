package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/astrxnomo/agendaun/internal/models"
)

// AcademicRepository persists the Sede -> Facultad -> Programa hierarchy.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs the repository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

// ListSedes returns all sedes ordered by name.
func (r *AcademicRepository) ListSedes(ctx context.Context) ([]models.Sede, error) {
	var sedes []models.Sede
	if err := r.db.SelectContext(ctx, &sedes, `SELECT id, name, created_at FROM sedes ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list sedes: %w", err)
	}
	return sedes, nil
}

// ListFacultades returns the facultades of sedeID, or all of them when sedeID is empty.
func (r *AcademicRepository) ListFacultades(ctx context.Context, sedeID string) ([]models.Facultad, error) {
	query := `SELECT id, name, sede_id, created_at FROM facultades ORDER BY name ASC`
	args := []interface{}{}
	if sedeID != "" {
		query = `SELECT id, name, sede_id, created_at FROM facultades WHERE sede_id = $1 ORDER BY name ASC`
		args = append(args, sedeID)
	}
	var facultades []models.Facultad
	if err := r.db.SelectContext(ctx, &facultades, query, args...); err != nil {
		return nil, fmt.Errorf("list facultades: %w", err)
	}
	return facultades, nil
}

// ListProgramas returns the programas of facultadID, or all of them when facultadID is empty.
func (r *AcademicRepository) ListProgramas(ctx context.Context, facultadID string) ([]models.Programa, error) {
	query := `SELECT id, name, facultad_id, created_at FROM programas ORDER BY name ASC`
	args := []interface{}{}
	if facultadID != "" {
		query = `SELECT id, name, facultad_id, created_at FROM programas WHERE facultad_id = $1 ORDER BY name ASC`
		args = append(args, facultadID)
	}
	var programas []models.Programa
	if err := r.db.SelectContext(ctx, &programas, query, args...); err != nil {
		return nil, fmt.Errorf("list programas: %w", err)
	}
	return programas, nil
}

// FindSede fetches a sede by id.
func (r *AcademicRepository) FindSede(ctx context.Context, id string) (*models.Sede, error) {
	var sede models.Sede
	if err := r.db.GetContext(ctx, &sede, `SELECT id, name, created_at FROM sedes WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &sede, nil
}

// FindFacultad fetches a facultad by id.
func (r *AcademicRepository) FindFacultad(ctx context.Context, id string) (*models.Facultad, error) {
	var facultad models.Facultad
	if err := r.db.GetContext(ctx, &facultad, `SELECT id, name, sede_id, created_at FROM facultades WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &facultad, nil
}

// CreateSede inserts a sede.
func (r *AcademicRepository) CreateSede(ctx context.Context, sede *models.Sede) error {
	if sede.ID == "" {
		sede.ID = uuid.NewString()
	}
	sede.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO sedes (id, name, created_at) VALUES (:id, :name, :created_at)`, sede); err != nil {
		return fmt.Errorf("create sede: %w", classify(err))
	}
	return nil
}

// CreateFacultad inserts a facultad.
func (r *AcademicRepository) CreateFacultad(ctx context.Context, facultad *models.Facultad) error {
	if facultad.ID == "" {
		facultad.ID = uuid.NewString()
	}
	facultad.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO facultades (id, name, sede_id, created_at) VALUES (:id, :name, :sede_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, facultad); err != nil {
		return fmt.Errorf("create facultad: %w", classify(err))
	}
	return nil
}

// CreatePrograma inserts a programa.
func (r *AcademicRepository) CreatePrograma(ctx context.Context, programa *models.Programa) error {
	if programa.ID == "" {
		programa.ID = uuid.NewString()
	}
	programa.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO programas (id, name, facultad_id, created_at) VALUES (:id, :name, :facultad_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, programa); err != nil {
		return fmt.Errorf("create programa: %w", classify(err))
	}
	return nil
}

// Delete removes a record of the given tier. Child rows are removed by the
// schema's ON DELETE CASCADE.
func (r *AcademicRepository) Delete(ctx context.Context, tier models.ScopeTier, id string) error {
	var table string
	switch tier {
	case models.TierSede:
		table = "sedes"
	case models.TierFacultad:
		table = "facultades"
	case models.TierPrograma:
		table = "programas"
	default:
		return fmt.Errorf("delete academic scope: unknown tier %q", tier)
	}
	if _, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id); err != nil {
		return fmt.Errorf("delete %s: %w", tier, err)
	}
	return nil
}

// Hierarchy loads the full academic tree in three queries.
func (r *AcademicRepository) Hierarchy(ctx context.Context) (*models.AcademicHierarchy, error) {
	sedes, err := r.ListSedes(ctx)
	if err != nil {
		return nil, err
	}
	facultades, err := r.ListFacultades(ctx, "")
	if err != nil {
		return nil, err
	}
	programas, err := r.ListProgramas(ctx, "")
	if err != nil {
		return nil, err
	}
	return &models.AcademicHierarchy{Sedes: sedes, Facultades: facultades, Programas: programas}, nil
}
