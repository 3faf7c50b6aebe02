package models

import (
	"strings"
	"time"
)

// Color is the closed palette used by etiquettes and events.
type Color string

const (
	ColorGray   Color = "gray"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
)

var palette = []Color{ColorGray, ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorPink}

// Palette returns every known color in display order.
func Palette() []Color {
	out := make([]Color, len(palette))
	copy(out, palette)
	return out
}

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	for _, known := range palette {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor normalises raw and checks it against the palette.
func ParseColor(raw string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// Etiquette is a colored label scoped to a calendar. IsActive is its default
// visibility when a calendar view opens.
type Etiquette struct {
	ID         string    `db:"id" json:"id"`
	CalendarID string    `db:"calendar_id" json:"calendar_id"`
	Name       string    `db:"name" json:"name"`
	Color      Color     `db:"color" json:"color"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
