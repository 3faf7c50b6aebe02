package dto

import (
	"time"

	"github.com/astrxnomo/agendaun/internal/filter"
	"github.com/astrxnomo/agendaun/internal/models"
)

// CalendarViewRequest captures the query parameters of a filtered calendar view.
type CalendarViewRequest struct {
	SedeID     string
	FacultadID string
	ProgramaID string
	Hide       []string
	Show       []string
	StartDate  *time.Time
	EndDate    *time.Time
}

// CalendarViewRange is the inclusive date range the view covers.
type CalendarViewRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarViewSelection echoes the applied academic scope.
type CalendarViewSelection struct {
	SedeID     *string `json:"sede_id,omitempty"`
	FacultadID *string `json:"facultad_id,omitempty"`
	ProgramaID *string `json:"programa_id,omitempty"`
}

// EtiquetteView is an etiquette with its visibility in the current view.
type EtiquetteView struct {
	models.Etiquette
	Visible bool `json:"visible"`
}

// CalendarViewOptions lists the scopes selectable next, following the cascade.
type CalendarViewOptions struct {
	Sedes      []filter.ScopeOption `json:"sedes"`
	Facultades []filter.ScopeOption `json:"facultades"`
	Programas  []filter.ScopeOption `json:"programas"`
}

// CalendarView is the filtered projection of a calendar.
type CalendarView struct {
	Calendar      models.Calendar        `json:"calendar"`
	Range         CalendarViewRange      `json:"range"`
	Events        []models.CalendarEvent `json:"events"`
	Summary       filter.Summary         `json:"summary"`
	ActiveFilters int                    `json:"active_filters"`
	Selection     CalendarViewSelection  `json:"selection"`
	VisibleColors []models.Color         `json:"visible_colors"`
	Etiquettes    []EtiquetteView        `json:"etiquettes"`
	Options       CalendarViewOptions    `json:"options"`
	Truncated     bool                   `json:"truncated"`
}
