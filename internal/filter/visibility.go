package filter

import "github.com/astrxnomo/agendaun/internal/models"

// VisibilitySet holds the colors currently shown in a calendar view.
type VisibilitySet map[models.Color]struct{}

// NewVisibilitySet starts with the colors of every active etiquette.
func NewVisibilitySet(etiquettes []models.Etiquette) VisibilitySet {
	set := make(VisibilitySet, len(etiquettes))
	for _, e := range etiquettes {
		if e.IsActive {
			set[e.Color] = struct{}{}
		}
	}
	return set
}

// VisibilitySetOf builds a set from explicit colors.
func VisibilitySetOf(colors ...models.Color) VisibilitySet {
	set := make(VisibilitySet, len(colors))
	for _, c := range colors {
		set[c] = struct{}{}
	}
	return set
}

// Contains reports membership of c.
func (v VisibilitySet) Contains(c models.Color) bool {
	_, ok := v[c]
	return ok
}

// Toggle flips membership of c.
func (v VisibilitySet) Toggle(c models.Color) {
	if _, ok := v[c]; ok {
		delete(v, c)
		return
	}
	v[c] = struct{}{}
}

// Clone returns an independent copy.
func (v VisibilitySet) Clone() VisibilitySet {
	out := make(VisibilitySet, len(v))
	for c := range v {
		out[c] = struct{}{}
	}
	return out
}

// Colors lists members in palette order.
func (v VisibilitySet) Colors() []models.Color {
	out := make([]models.Color, 0, len(v))
	for _, c := range models.Palette() {
		if v.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// IsColorVisible is true for colorless events and for members of v.
func (v VisibilitySet) IsColorVisible(c *models.Color) bool {
	if c == nil {
		return true
	}
	return v.Contains(*c)
}
