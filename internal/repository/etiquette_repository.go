package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/astrxnomo/agendaun/internal/models"
)

// EtiquetteRepository persists calendar etiquettes.
type EtiquetteRepository struct {
	db *sqlx.DB
}

// NewEtiquetteRepository constructs the repository.
func NewEtiquetteRepository(db *sqlx.DB) *EtiquetteRepository {
	return &EtiquetteRepository{db: db}
}

// ListByCalendar returns the etiquettes of a calendar ordered by name.
func (r *EtiquetteRepository) ListByCalendar(ctx context.Context, calendarID string) ([]models.Etiquette, error) {
	const query = `SELECT id, calendar_id, name, color, is_active, created_at, updated_at FROM etiquettes WHERE calendar_id = $1 ORDER BY name ASC`
	var etiquettes []models.Etiquette
	if err := r.db.SelectContext(ctx, &etiquettes, query, calendarID); err != nil {
		return nil, fmt.Errorf("list etiquettes: %w", err)
	}
	return etiquettes, nil
}

// GetByID fetches an etiquette.
func (r *EtiquetteRepository) GetByID(ctx context.Context, id string) (*models.Etiquette, error) {
	const query = `SELECT id, calendar_id, name, color, is_active, created_at, updated_at FROM etiquettes WHERE id = $1`
	var etiquette models.Etiquette
	if err := r.db.GetContext(ctx, &etiquette, query, id); err != nil {
		return nil, err
	}
	return &etiquette, nil
}

// Create inserts an etiquette.
func (r *EtiquetteRepository) Create(ctx context.Context, etiquette *models.Etiquette) error {
	if etiquette.ID == "" {
		etiquette.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	etiquette.CreatedAt = now
	etiquette.UpdatedAt = now
	const query = `INSERT INTO etiquettes (id, calendar_id, name, color, is_active, created_at, updated_at)
VALUES (:id, :calendar_id, :name, :color, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, etiquette); err != nil {
		return fmt.Errorf("create etiquette: %w", classify(err))
	}
	return nil
}

// Update modifies name, color and default visibility.
func (r *EtiquetteRepository) Update(ctx context.Context, etiquette *models.Etiquette) error {
	etiquette.UpdatedAt = time.Now().UTC()
	const query = `UPDATE etiquettes SET name = :name, color = :color, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, etiquette); err != nil {
		return fmt.Errorf("update etiquette: %w", classify(err))
	}
	return nil
}

// Delete removes an etiquette.
func (r *EtiquetteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM etiquettes WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete etiquette: %w", err)
	}
	return nil
}
