package filter

import (
	"time"

	"github.com/astrxnomo/agendaun/internal/models"
)

func strPtr(v string) *string { return &v }

func colorPtr(c models.Color) *models.Color { return &c }

func testHierarchy() models.AcademicHierarchy {
	return models.AcademicHierarchy{
		Sedes: []models.Sede{
			{ID: "sede-central", Name: "Sede Central"},
			{ID: "sede-norte", Name: "Sede Norte"},
		},
		Facultades: []models.Facultad{
			{ID: "fac-ing", Name: "Ingeniería", SedeID: "sede-central"},
			{ID: "fac-med", Name: "Medicina", SedeID: "sede-central"},
			{ID: "fac-agro", Name: "Agronomía", SedeID: "sede-norte"},
			{ID: "fac-huerfana", Name: "Huérfana", SedeID: "sede-cerrada"},
		},
		Programas: []models.Programa{
			{ID: "prog-sistemas", Name: "Ingeniería de Sistemas", FacultadID: "fac-ing"},
			{ID: "prog-civil", Name: "Ingeniería Civil", FacultadID: "fac-ing"},
			{ID: "prog-enfermeria", Name: "Enfermería", FacultadID: "fac-med"},
			{ID: "prog-huerfano", Name: "Huérfano", FacultadID: "fac-huerfana"},
		},
	}
}

func testEtiquettes() []models.Etiquette {
	return []models.Etiquette{
		{ID: "et-1", Name: "Académico", Color: models.ColorBlue, IsActive: true},
		{ID: "et-2", Name: "Cultural", Color: models.ColorGreen, IsActive: true},
		{ID: "et-3", Name: "Feriados", Color: models.ColorRed, IsActive: false},
	}
}

func event(id string, color *models.Color, sede, facultad, programa *string) models.CalendarEvent {
	start := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	return models.CalendarEvent{
		ID:         id,
		Title:      "Evento " + id,
		Start:      start,
		End:        start.Add(2 * time.Hour),
		Color:      color,
		SedeID:     sede,
		FacultadID: facultad,
		ProgramaID: programa,
	}
}

func testScope() *ScopeModel {
	return NewScopeModel(testHierarchy())
}
