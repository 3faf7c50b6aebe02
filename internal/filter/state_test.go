package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrxnomo/agendaun/internal/models"
)

func TestNewStateSeedsVisibilityFromActiveEtiquettes(t *testing.T) {
	state := NewState(testEtiquettes())

	assert.Equal(t, []models.Color{models.ColorGreen, models.ColorBlue}, state.Visible().Colors())
	assert.True(t, state.Selection().IsEmpty())
}

func TestSetFilterSedeClearsDescendants(t *testing.T) {
	state := NewState(nil)
	require.NoError(t, state.SetFilter(models.TierSede, "sede-norte"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	require.NoError(t, state.SetFilter(models.TierPrograma, "prog-sistemas"))

	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))

	sel := state.Selection()
	require.NotNil(t, sel.SedeID)
	assert.Equal(t, "sede-central", *sel.SedeID)
	assert.Nil(t, sel.FacultadID)
	assert.Nil(t, sel.ProgramaID)
}

func TestSetFilterFacultadClearsPrograma(t *testing.T) {
	state := NewState(nil)
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	require.NoError(t, state.SetFilter(models.TierPrograma, "prog-civil"))

	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-med"))

	sel := state.Selection()
	assert.Equal(t, "sede-central", *sel.SedeID)
	assert.Equal(t, "fac-med", *sel.FacultadID)
	assert.Nil(t, sel.ProgramaID)
}

func TestSetFilterProgramaOnlySetsPrograma(t *testing.T) {
	state := NewState(nil)
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	require.NoError(t, state.SetFilter(models.TierPrograma, "prog-civil"))
	require.NoError(t, state.SetFilter(models.TierPrograma, "prog-sistemas"))

	sel := state.Selection()
	assert.Equal(t, "sede-central", *sel.SedeID)
	assert.Equal(t, "fac-ing", *sel.FacultadID)
	assert.Equal(t, "prog-sistemas", *sel.ProgramaID)
}

func TestSetFilterSameValueKeepsDescendants(t *testing.T) {
	state := NewState(nil)
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	require.NoError(t, state.SetFilter(models.TierPrograma, "prog-civil"))

	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))

	sel := state.Selection()
	require.NotNil(t, sel.FacultadID)
	require.NotNil(t, sel.ProgramaID)
	assert.Equal(t, "fac-ing", *sel.FacultadID)
	assert.Equal(t, "prog-civil", *sel.ProgramaID)
}

func TestSetFilterRejectsChildWithoutParent(t *testing.T) {
	state := NewState(nil)

	err := state.SetFilter(models.TierFacultad, "fac-ing")
	assert.ErrorIs(t, err, ErrMissingParent)
	err = state.SetFilter(models.TierPrograma, "prog-civil")
	assert.ErrorIs(t, err, ErrMissingParent)
	assert.True(t, state.Selection().IsEmpty())

	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	assert.ErrorIs(t, state.SetFilter(models.TierPrograma, "prog-civil"), ErrMissingParent)
}

func TestSetFilterSedeAfterOrphanFacultad(t *testing.T) {
	state := NewState(nil)

	_ = state.SetFilter(models.TierFacultad, "fac-ing")
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))

	sel := state.Selection()
	require.NotNil(t, sel.SedeID)
	assert.Equal(t, "sede-central", *sel.SedeID)
	assert.Nil(t, sel.FacultadID)
	assert.Nil(t, sel.ProgramaID)
}

func TestSetFilterEmptyValueUnsetsAndCascades(t *testing.T) {
	state := NewState(nil)
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	require.NoError(t, state.SetFilter(models.TierPrograma, "prog-civil"))

	require.NoError(t, state.SetFilter(models.TierFacultad, ""))
	sel := state.Selection()
	assert.NotNil(t, sel.SedeID)
	assert.Nil(t, sel.FacultadID)
	assert.Nil(t, sel.ProgramaID)

	require.NoError(t, state.SetFilter(models.TierSede, ""))
	assert.True(t, state.Selection().IsEmpty())
}

func TestSetFilterUnknownTier(t *testing.T) {
	state := NewState(nil)
	assert.Error(t, state.SetFilter(models.ScopeTier("departamento"), "x"))
}

func TestSelectionIsACopy(t *testing.T) {
	state := NewState(nil)
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))

	sel := state.Selection()
	*sel.SedeID = "mutated"

	assert.Equal(t, "sede-central", *state.Selection().SedeID)
}

func TestClearAllResetsSelectionOnly(t *testing.T) {
	state := NewState(testEtiquettes())
	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	state.ToggleColorVisibility(models.ColorBlue)

	state.ClearAll()

	assert.True(t, state.Selection().IsEmpty())
	assert.False(t, state.IsColorVisible(colorPtr(models.ColorBlue)))
}

func TestToggleColorVisibilityTwiceIsIdentity(t *testing.T) {
	for _, c := range models.Palette() {
		state := NewState(testEtiquettes())
		before := state.Visible()

		state.ToggleColorVisibility(c)
		assert.NotEqual(t, before, state.Visible(), "color %s", c)
		state.ToggleColorVisibility(c)

		assert.Equal(t, before, state.Visible(), "color %s", c)
	}
}

func TestIsColorVisible(t *testing.T) {
	state := &State{visible: VisibilitySetOf(models.ColorBlue, models.ColorGreen), known: VisibilitySetOf(models.Palette()...)}

	assert.True(t, state.IsColorVisible(colorPtr(models.ColorBlue)))
	assert.False(t, state.IsColorVisible(colorPtr(models.ColorRed)))
}

func TestColorlessAlwaysVisible(t *testing.T) {
	sets := []VisibilitySet{
		VisibilitySetOf(),
		VisibilitySetOf(models.ColorRed),
		VisibilitySetOf(models.Palette()...),
	}
	for _, set := range sets {
		state := &State{visible: set, known: VisibilitySetOf(models.Palette()...)}
		assert.True(t, state.IsColorVisible(nil))
	}
}

func TestActiveFilterCount(t *testing.T) {
	state := &State{visible: VisibilitySetOf(models.Palette()...), known: VisibilitySetOf(models.Palette()...)}
	assert.Equal(t, 0, state.ActiveFilterCount())

	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	state.ToggleColorVisibility(models.ColorRed)

	assert.Equal(t, 2, state.ActiveFilterCount())

	require.NoError(t, state.SetFilter(models.TierFacultad, "fac-ing"))
	state.ToggleColorVisibility(models.ColorGray)
	assert.Equal(t, 4, state.ActiveFilterCount())
}

func TestActiveFilterCountUsesEtiquetteColors(t *testing.T) {
	state := NewState([]models.Etiquette{
		{ID: "et-1", Color: models.ColorBlue, IsActive: true},
		{ID: "et-2", Color: models.ColorGreen, IsActive: true},
	})
	assert.Equal(t, 0, state.ActiveFilterCount())

	state = NewState(testEtiquettes())
	// red belongs to an inactive etiquette.
	assert.Equal(t, 1, state.ActiveFilterCount())

	state.ToggleColorVisibility(models.ColorRed)
	assert.Equal(t, 0, state.ActiveFilterCount())

	state.ToggleColorVisibility(models.ColorPink)
	state.ToggleColorVisibility(models.ColorBlue)
	assert.Equal(t, 1, state.ActiveFilterCount())
}

func TestActiveFilterCountOneTierOneHiddenColor(t *testing.T) {
	colors := []models.Color{models.ColorGray, models.ColorRed, models.ColorOrange, models.ColorYellow, models.ColorGreen, models.ColorBlue}
	etiquettes := make([]models.Etiquette, 0, len(colors))
	for _, c := range colors {
		etiquettes = append(etiquettes, models.Etiquette{ID: "et-" + string(c), Color: c, IsActive: true})
	}
	state := NewState(etiquettes)

	require.NoError(t, state.SetFilter(models.TierSede, "sede-central"))
	state.ToggleColorVisibility(models.ColorOrange)

	assert.Equal(t, 2, state.ActiveFilterCount())
}
