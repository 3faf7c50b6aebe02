package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/astrxnomo/agendaun/internal/models"
)

const eventColumns = `id, calendar_id, title, description, location, start_at, end_at, all_day, color, etiquette_id, sede_id, facultad_id, programa_id, created_by, created_at, updated_at`

// CalendarRepository persists calendars and their events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListCalendars returns every calendar ordered by name.
func (r *CalendarRepository) ListCalendars(ctx context.Context) ([]models.Calendar, error) {
	const query = `SELECT id, slug, name, description, public, created_at, updated_at FROM calendars ORDER BY name ASC`
	var calendars []models.Calendar
	if err := r.db.SelectContext(ctx, &calendars, query); err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}
	return calendars, nil
}

// FindCalendarBySlug fetches a calendar by its slug. sql.ErrNoRows is returned
// unwrapped when it does not exist.
func (r *CalendarRepository) FindCalendarBySlug(ctx context.Context, slug string) (*models.Calendar, error) {
	const query = `SELECT id, slug, name, description, public, created_at, updated_at FROM calendars WHERE slug = $1`
	var calendar models.Calendar
	if err := r.db.GetContext(ctx, &calendar, query, slug); err != nil {
		return nil, err
	}
	return &calendar, nil
}

// ListEvents returns events of a calendar overlapping the filter range, ordered
// by start.
func (r *CalendarRepository) ListEvents(ctx context.Context, filter models.CalendarEventFilter) ([]models.CalendarEvent, int, error) {
	where := []string{"calendar_id = $1"}
	args := []interface{}{filter.CalendarID}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("end_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("start_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE %s ORDER BY start_at ASC, id ASC LIMIT %d OFFSET %d`, eventColumns, whereClause, size, offset)
	var events []models.CalendarEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM calendar_events WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar events: %w", err)
	}
	return events, total, nil
}

// GetEvent fetches a calendar event.
func (r *CalendarRepository) GetEvent(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM calendar_events WHERE id = $1`, eventColumns)
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent inserts a calendar event, assigning an id when missing.
func (r *CalendarRepository) CreateEvent(ctx context.Context, event *models.CalendarEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO calendar_events (id, calendar_id, title, description, location, start_at, end_at, all_day, color, etiquette_id, sede_id, facultad_id, programa_id, created_by, created_at, updated_at)
VALUES (:id, :calendar_id, :title, :description, :location, :start_at, :end_at, :all_day, :color, :etiquette_id, :sede_id, :facultad_id, :programa_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// UpdateEvent modifies an event.
func (r *CalendarRepository) UpdateEvent(ctx context.Context, event *models.CalendarEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE calendar_events SET title = :title, description = :description, location = :location, start_at = :start_at, end_at = :end_at,
all_day = :all_day, color = :color, etiquette_id = :etiquette_id, sede_id = :sede_id, facultad_id = :facultad_id, programa_id = :programa_id, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (r *CalendarRepository) DeleteEvent(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}
