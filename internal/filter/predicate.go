package filter

import "github.com/astrxnomo/agendaun/internal/models"

// IsVisible decides whether event is shown under sel and visible. The color
// check runs first; the scope check only applies when sel has a tier set.
// Selected ids are resolved against scope, and a selected tier that does not
// resolve matches no event. Global events pass any selection.
func IsVisible(event models.CalendarEvent, sel Selection, visible VisibilitySet, scope *ScopeModel) bool {
	return isVisible(event, scope.resolve(sel), visible)
}

func isVisible(event models.CalendarEvent, sel resolvedSelection, visible VisibilitySet) bool {
	if !visible.IsColorVisible(event.Color) {
		return false
	}
	return sel.admits(event)
}

// resolvedTier is a selected id that exists in the loaded hierarchy, together
// with its display name.
type resolvedTier struct {
	id   string
	name string
}

// resolvedSelection is a Selection checked against a ScopeModel. A tier that
// was selected but did not resolve is nil while active stays true.
type resolvedSelection struct {
	active   bool
	sede     *resolvedTier
	facultad *resolvedTier
	programa *resolvedTier
}

func (m *ScopeModel) resolve(sel Selection) resolvedSelection {
	return resolvedSelection{
		active:   !sel.IsEmpty(),
		sede:     resolveTier(sel.SedeID, m.SedeName),
		facultad: resolveTier(sel.FacultadID, m.FacultadName),
		programa: resolveTier(sel.ProgramaID, m.ProgramaName),
	}
}

func resolveTier(id *string, lookup func(string) (string, bool)) *resolvedTier {
	if id == nil {
		return nil
	}
	name, ok := lookup(*id)
	if !ok {
		return nil
	}
	return &resolvedTier{id: *id, name: name}
}

// admits matches any single tier, not all of them: an event whose facultad
// matches is shown even when its sede differs from the selected one. Well-formed
// data makes the tiers imply each other; confirm product intent before
// tightening this to AND.
func (r resolvedSelection) admits(event models.CalendarEvent) bool {
	if !r.active || event.IsGlobal() {
		return true
	}
	return r.sede.matches(event.SedeID) ||
		r.facultad.matches(event.FacultadID) ||
		r.programa.matches(event.ProgramaID)
}

func (t *resolvedTier) matches(attributed *string) bool {
	return t != nil && attributed != nil && t.id == *attributed
}

func (t *resolvedTier) displayName() *string {
	if t == nil {
		return nil
	}
	name := t.name
	return &name
}
