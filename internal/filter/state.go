// Package filter decides which calendar events a view shows, based on etiquette
// color visibility and a Sede -> Facultad -> Programa selection.
//
// Everything here is pure and in-memory. Callers own the State and pass it
// explicitly; nothing is shared between views.
package filter

import (
	"errors"
	"fmt"

	"github.com/astrxnomo/agendaun/internal/models"
)

// ErrMissingParent is returned when a child tier is selected while its parent
// tier is unset.
var ErrMissingParent = errors.New("parent tier is not selected")

// Selection is the academic scope a view is narrowed to. Nil means unset.
type Selection struct {
	SedeID     *string `json:"sede_id,omitempty"`
	FacultadID *string `json:"facultad_id,omitempty"`
	ProgramaID *string `json:"programa_id,omitempty"`
}

// Count returns how many tiers are set.
func (s Selection) Count() int {
	n := 0
	for _, v := range []*string{s.SedeID, s.FacultadID, s.ProgramaID} {
		if v != nil {
			n++
		}
	}
	return n
}

// IsEmpty reports whether no tier is set.
func (s Selection) IsEmpty() bool {
	return s.Count() == 0
}

// State is the per-view filter state: the academic selection plus the visible
// colors. The zero value is not usable; build one with NewState.
type State struct {
	selection Selection
	visible   VisibilitySet
	known     VisibilitySet
}

// NewState seeds visibility from the active etiquettes. The known colors are
// the distinct colors of every etiquette given, active or not.
func NewState(etiquettes []models.Etiquette) *State {
	known := make(VisibilitySet, len(etiquettes))
	for _, e := range etiquettes {
		known[e.Color] = struct{}{}
	}
	return &State{
		visible: NewVisibilitySet(etiquettes),
		known:   known,
	}
}

// Selection returns a copy of the current selection.
func (s *State) Selection() Selection {
	return Selection{
		SedeID:     copyID(s.selection.SedeID),
		FacultadID: copyID(s.selection.FacultadID),
		ProgramaID: copyID(s.selection.ProgramaID),
	}
}

// Visible returns a copy of the visible color set.
func (s *State) Visible() VisibilitySet {
	return s.visible.Clone()
}

// SetFilter assigns value to tier. Changing a tier clears every tier below it;
// assigning the value it already holds leaves descendants alone. An empty value
// unsets the tier.
func (s *State) SetFilter(tier models.ScopeTier, value string) error {
	next := idOrNil(value)
	switch tier {
	case models.TierSede:
		if sameID(s.selection.SedeID, next) {
			return nil
		}
		s.selection = Selection{SedeID: next}
	case models.TierFacultad:
		if sameID(s.selection.FacultadID, next) {
			return nil
		}
		if next != nil && s.selection.SedeID == nil {
			return fmt.Errorf("set facultad: %w", ErrMissingParent)
		}
		s.selection.FacultadID = next
		s.selection.ProgramaID = nil
	case models.TierPrograma:
		if sameID(s.selection.ProgramaID, next) {
			return nil
		}
		if next != nil && s.selection.FacultadID == nil {
			return fmt.Errorf("set programa: %w", ErrMissingParent)
		}
		s.selection.ProgramaID = next
	default:
		return fmt.Errorf("unknown scope tier %q", tier)
	}
	return nil
}

// ClearAll unsets every tier. Color visibility is untouched.
func (s *State) ClearAll() {
	s.selection = Selection{}
}

// ToggleColorVisibility flips whether events of color c are shown.
func (s *State) ToggleColorVisibility(c models.Color) {
	s.visible.Toggle(c)
}

// IsColorVisible is true when c is nil or currently visible.
func (s *State) IsColorVisible(c *models.Color) bool {
	return s.visible.IsColorVisible(c)
}

// ActiveFilterCount counts selected tiers plus known colors that are not
// visible. Colors shown without an etiquette do not offset hidden ones.
func (s *State) ActiveFilterCount() int {
	hidden := 0
	for c := range s.known {
		if !s.visible.Contains(c) {
			hidden++
		}
	}
	return s.selection.Count() + hidden
}

func idOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
