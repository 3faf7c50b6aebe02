package filter

import "github.com/astrxnomo/agendaun/internal/models"

// ScopeOption is an id/name pair offered by a cascading selector.
type ScopeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScopeModel indexes a loaded academic hierarchy for lookups by id. Records with
// a parent missing from the loaded set stay resolvable by id but are never
// offered as children of anything.
type ScopeModel struct {
	sedes      []models.Sede
	facultades []models.Facultad
	programas  []models.Programa

	sedeByID     map[string]models.Sede
	facultadByID map[string]models.Facultad
	programaByID map[string]models.Programa
}

// NewScopeModel indexes h. The hierarchy slices are copied.
func NewScopeModel(h models.AcademicHierarchy) *ScopeModel {
	m := &ScopeModel{
		sedes:        append([]models.Sede(nil), h.Sedes...),
		facultades:   append([]models.Facultad(nil), h.Facultades...),
		programas:    append([]models.Programa(nil), h.Programas...),
		sedeByID:     make(map[string]models.Sede, len(h.Sedes)),
		facultadByID: make(map[string]models.Facultad, len(h.Facultades)),
		programaByID: make(map[string]models.Programa, len(h.Programas)),
	}
	for _, s := range m.sedes {
		m.sedeByID[s.ID] = s
	}
	for _, f := range m.facultades {
		m.facultadByID[f.ID] = f
	}
	for _, p := range m.programas {
		m.programaByID[p.ID] = p
	}
	return m
}

// SedeName resolves a sede id.
func (m *ScopeModel) SedeName(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m.sedeByID[id]
	return s.Name, ok
}

// FacultadName resolves a facultad id. A facultad whose sede is not loaded does
// not resolve.
func (m *ScopeModel) FacultadName(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	f, ok := m.facultadByID[id]
	if !ok {
		return "", false
	}
	if _, parent := m.sedeByID[f.SedeID]; !parent {
		return "", false
	}
	return f.Name, true
}

// ProgramaName resolves a programa id, requiring its facultad to resolve too.
func (m *ScopeModel) ProgramaName(id string) (string, bool) {
	if m == nil {
		return "", false
	}
	p, ok := m.programaByID[id]
	if !ok {
		return "", false
	}
	if _, parent := m.FacultadName(p.FacultadID); !parent {
		return "", false
	}
	return p.Name, true
}

// FacultadBelongsTo reports whether facultadID is a child of sedeID.
func (m *ScopeModel) FacultadBelongsTo(facultadID, sedeID string) bool {
	if m == nil {
		return false
	}
	f, ok := m.facultadByID[facultadID]
	return ok && f.SedeID == sedeID
}

// ProgramaBelongsTo reports whether programaID is a child of facultadID.
func (m *ScopeModel) ProgramaBelongsTo(programaID, facultadID string) bool {
	if m == nil {
		return false
	}
	p, ok := m.programaByID[programaID]
	return ok && p.FacultadID == facultadID
}

// AvailableChildren lists the options for tier given the selected parent id:
// every sede for TierSede, the facultades of parentID for TierFacultad and the
// programas of parentID for TierPrograma. Unknown parents yield an empty list.
func (m *ScopeModel) AvailableChildren(tier models.ScopeTier, parentID string) []ScopeOption {
	out := []ScopeOption{}
	if m == nil {
		return out
	}
	switch tier {
	case models.TierSede:
		for _, s := range m.sedes {
			out = append(out, ScopeOption{ID: s.ID, Name: s.Name})
		}
	case models.TierFacultad:
		if _, ok := m.sedeByID[parentID]; !ok {
			return out
		}
		for _, f := range m.facultades {
			if f.SedeID == parentID {
				out = append(out, ScopeOption{ID: f.ID, Name: f.Name})
			}
		}
	case models.TierPrograma:
		if _, ok := m.FacultadName(parentID); !ok {
			return out
		}
		for _, p := range m.programas {
			if p.FacultadID == parentID {
				out = append(out, ScopeOption{ID: p.ID, Name: p.Name})
			}
		}
	}
	return out
}
