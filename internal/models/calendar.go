package models

import "time"

// Calendar groups events, e.g. the academic calendar or a campus agenda.
type Calendar struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Public      bool      `db:"public" json:"public"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CalendarEvent is a single entry in a calendar. An event without any
// sede/facultad/programa attribution is global.
type CalendarEvent struct {
	ID          string    `db:"id" json:"id"`
	CalendarID  string    `db:"calendar_id" json:"calendar_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Start       time.Time `db:"start_at" json:"start"`
	End         time.Time `db:"end_at" json:"end"`
	AllDay      bool      `db:"all_day" json:"all_day"`
	Color       *Color    `db:"color" json:"color,omitempty"`
	EtiquetteID *string   `db:"etiquette_id" json:"etiquette_id,omitempty"`
	SedeID      *string   `db:"sede_id" json:"sede_id,omitempty"`
	FacultadID  *string   `db:"facultad_id" json:"facultad_id,omitempty"`
	ProgramaID  *string   `db:"programa_id" json:"programa_id,omitempty"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsGlobal reports whether the event carries no academic scope at all.
func (e CalendarEvent) IsGlobal() bool {
	return e.SedeID == nil && e.FacultadID == nil && e.ProgramaID == nil
}

// CalendarEventFilter narrows repository queries. Events overlapping
// [From, To] are returned.
type CalendarEventFilter struct {
	CalendarID string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}
