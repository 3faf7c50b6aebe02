package filter

import "github.com/astrxnomo/agendaun/internal/models"

// Summary describes a filtered view. Names are nil when the tier is unselected
// or its id does not resolve.
type Summary struct {
	Total         int                  `json:"total"`
	FilteredCount int                  `json:"filtered_count"`
	HiddenCount   int                  `json:"hidden_count"`
	GlobalCount   int                  `json:"global_count"`
	ActiveFilters int                  `json:"active_filters"`
	ByColor       map[models.Color]int `json:"by_color"`
	SedeName      *string              `json:"sede_name,omitempty"`
	FacultadName  *string              `json:"facultad_name,omitempty"`
	ProgramaName  *string              `json:"programa_name,omitempty"`
}

// Result is the output of a pipeline run.
type Result struct {
	Filtered []models.CalendarEvent `json:"filtered"`
	Summary  Summary                `json:"summary"`
}

// Pipeline filters event snapshots against a scope model.
type Pipeline struct {
	scope *ScopeModel
}

// NewPipeline builds a pipeline resolving selections against scope. A nil
// scope is allowed; selected tiers then never resolve and only global events
// pass a non-empty selection.
func NewPipeline(scope *ScopeModel) *Pipeline {
	return &Pipeline{scope: scope}
}

// FilterEvents keeps the events accepted by IsVisible, in input order. The input
// slice is not modified.
func (p *Pipeline) FilterEvents(events []models.CalendarEvent, sel Selection, visible VisibilitySet) Result {
	resolved := p.scope.resolve(sel)
	filtered := make([]models.CalendarEvent, 0, len(events))
	summary := Summary{
		Total:   len(events),
		ByColor: map[models.Color]int{},
	}
	for _, event := range events {
		if !isVisible(event, resolved, visible) {
			continue
		}
		filtered = append(filtered, event)
		if event.IsGlobal() {
			summary.GlobalCount++
		}
		if event.Color != nil {
			summary.ByColor[*event.Color]++
		}
	}
	summary.FilteredCount = len(filtered)
	summary.HiddenCount = summary.Total - summary.FilteredCount
	summary.ActiveFilters = sel.Count()
	summary.SedeName = resolved.sede.displayName()
	summary.FacultadName = resolved.facultad.displayName()
	summary.ProgramaName = resolved.programa.displayName()

	return Result{Filtered: filtered, Summary: summary}
}

// Run filters with the selection and visibility held by state and reports the
// state's full active filter count, hidden colors included.
func (p *Pipeline) Run(events []models.CalendarEvent, state *State) Result {
	result := p.FilterEvents(events, state.Selection(), state.Visible())
	result.Summary.ActiveFilters = state.ActiveFilterCount()
	return result
}
