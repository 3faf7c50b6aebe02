package models

import "time"

// ScopeTier names one level of the academic hierarchy.
type ScopeTier string

const (
	TierSede     ScopeTier = "sede"
	TierFacultad ScopeTier = "facultad"
	TierPrograma ScopeTier = "programa"
)

// Valid reports whether t is one of the three known tiers.
func (t ScopeTier) Valid() bool {
	switch t {
	case TierSede, TierFacultad, TierPrograma:
		return true
	}
	return false
}

// Sede is a university campus, the top tier of the hierarchy.
type Sede struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Facultad is a faculty that belongs to a Sede.
type Facultad struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SedeID    string    `db:"sede_id" json:"sede_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Programa is an academic program that belongs to a Facultad.
type Programa struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	FacultadID string    `db:"facultad_id" json:"facultad_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AcademicHierarchy is the fully loaded Sede -> Facultad -> Programa tree in
// flat form, as cached and handed to the filter core.
type AcademicHierarchy struct {
	Sedes      []Sede     `json:"sedes"`
	Facultades []Facultad `json:"facultades"`
	Programas  []Programa `json:"programas"`
}
