package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrxnomo/agendaun/internal/models"
)

// fifteenEvents returns a fixture where exactly six events pass
// sede-central + {blue, green}.
func fifteenEvents() []models.CalendarEvent {
	blue, green, red := colorPtr(models.ColorBlue), colorPtr(models.ColorGreen), colorPtr(models.ColorRed)
	central, norte := strPtr("sede-central"), strPtr("sede-norte")
	return []models.CalendarEvent{
		event("01", blue, nil, nil, nil),                               // pass, global
		event("02", red, nil, nil, nil),                                // hidden color
		event("03", nil, central, nil, nil),                            // pass
		event("04", green, norte, nil, nil),                            // scope mismatch
		event("05", blue, central, strPtr("fac-ing"), nil),             // pass
		event("06", red, central, nil, nil),                            // hidden color
		event("07", nil, nil, nil, nil),                                // pass, global
		event("08", green, norte, strPtr("fac-agro"), nil),             // scope mismatch
		event("09", nil, nil, strPtr("fac-agro"), nil),                 // scope mismatch
		event("10", green, central, strPtr("fac-med"), nil),            // pass
		event("11", colorPtr(models.ColorPink), nil, nil, nil),         // hidden color
		event("12", blue, norte, nil, strPtr("prog-huerfano")),         // scope mismatch
		event("13", nil, nil, nil, strPtr("prog-sistemas")),            // scope mismatch
		event("14", blue, central, strPtr("fac-ing"), strPtr("prog-civil")), // pass
		event("15", colorPtr(models.ColorYellow), central, nil, nil),   // hidden color
	}
}

func ids(events []models.CalendarEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestFilterEventsCounts(t *testing.T) {
	p := NewPipeline(NewScopeModel(testHierarchy()))
	sel := Selection{SedeID: strPtr("sede-central")}

	result := p.FilterEvents(fifteenEvents(), sel, VisibilitySetOf(models.ColorBlue, models.ColorGreen))

	assert.Equal(t, []string{"01", "03", "05", "07", "10", "14"}, ids(result.Filtered))
	assert.Equal(t, 15, result.Summary.Total)
	assert.Equal(t, 6, result.Summary.FilteredCount)
	assert.Equal(t, 9, result.Summary.HiddenCount)
	assert.Equal(t, 2, result.Summary.GlobalCount)
	assert.Equal(t, map[models.Color]int{models.ColorBlue: 3, models.ColorGreen: 1}, result.Summary.ByColor)
	require.NotNil(t, result.Summary.SedeName)
	assert.Equal(t, "Sede Central", *result.Summary.SedeName)
	assert.Nil(t, result.Summary.FacultadName)
	assert.Nil(t, result.Summary.ProgramaName)
}

func TestFilterEventsPreservesOrderAsSubsequence(t *testing.T) {
	p := NewPipeline(nil)
	events := fifteenEvents()
	visibles := []VisibilitySet{VisibilitySetOf(), VisibilitySetOf(models.Palette()...), VisibilitySetOf(models.ColorBlue)}
	selections := []Selection{{}, {SedeID: strPtr("sede-norte")}, {SedeID: strPtr("sede-central"), FacultadID: strPtr("fac-ing")}}

	for _, visible := range visibles {
		for _, sel := range selections {
			filtered := p.FilterEvents(events, sel, visible).Filtered
			next := 0
			for _, f := range filtered {
				for next < len(events) && events[next].ID != f.ID {
					next++
				}
				require.Less(t, next, len(events), "%s out of order", f.ID)
				next++
			}
		}
	}
}

func TestFilterEventsIsPure(t *testing.T) {
	p := NewPipeline(NewScopeModel(testHierarchy()))
	events := fifteenEvents()
	snapshot := fifteenEvents()
	sel := Selection{SedeID: strPtr("sede-central"), FacultadID: strPtr("fac-ing")}
	visible := VisibilitySetOf(models.ColorBlue, models.ColorGreen)

	first := p.FilterEvents(events, sel, visible)
	second := p.FilterEvents(events, sel, visible)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, events)
	assert.Equal(t, VisibilitySetOf(models.ColorBlue, models.ColorGreen), visible)
}

func TestFilterEventsUnresolvableSelection(t *testing.T) {
	p := NewPipeline(NewScopeModel(testHierarchy()))
	sel := Selection{SedeID: strPtr("sede-inexistente")}
	events := append(fifteenEvents(),
		event("16", nil, strPtr("sede-inexistente"), nil, nil),
		event("17", colorPtr(models.ColorBlue), strPtr("sede-inexistente"), strPtr("fac-ing"), nil),
	)

	result := p.FilterEvents(events, sel, VisibilitySetOf(models.Palette()...))

	assert.Equal(t, []string{"01", "02", "07", "11"}, ids(result.Filtered))
	assert.Nil(t, result.Summary.SedeName)
}

func TestFilterEventsDanglingFacultadKeepsResolvedSede(t *testing.T) {
	p := NewPipeline(NewScopeModel(testHierarchy()))
	sel := Selection{SedeID: strPtr("sede-central"), FacultadID: strPtr("fac-huerfana")}
	events := []models.CalendarEvent{
		event("a", nil, nil, strPtr("fac-huerfana"), nil),
		event("b", nil, strPtr("sede-central"), nil, nil),
		event("c", nil, nil, nil, nil),
		event("d", nil, nil, nil, strPtr("prog-huerfano")),
	}

	result := p.FilterEvents(events, sel, VisibilitySetOf())

	assert.Equal(t, []string{"b", "c"}, ids(result.Filtered))
	require.NotNil(t, result.Summary.SedeName)
	assert.Equal(t, "Sede Central", *result.Summary.SedeName)
	assert.Nil(t, result.Summary.FacultadName)
}

func TestFilterEventsEmptyInput(t *testing.T) {
	result := NewPipeline(nil).FilterEvents(nil, Selection{}, VisibilitySetOf())

	assert.NotNil(t, result.Filtered)
	assert.Empty(t, result.Filtered)
	assert.Equal(t, 0, result.Summary.Total)
}

func TestRunUsesStateAndReportsActiveFilters(t *testing.T) {
	p := NewPipeline(NewScopeModel(testHierarchy()))
	state := NewState(testEtiquettes())
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))

	result := p.Run(fifteenEvents(), state)

	assert.Equal(t, []string{"01", "03", "05", "07", "10", "14"}, ids(result.Filtered))
	assert.Equal(t, state.ActiveFilterCount(), result.Summary.ActiveFilters)
	require.NotNil(t, result.Summary.FacultadName)
	assert.Equal(t, "Ingeniería", *result.Summary.FacultadName)
}
