// Package costing implements the cost-conversion engine shared by the recipe,
// ingredient, and production-batch features: unit conversion between
// compatible measurement units, pack-based ingredient costing with optional
// tax handling, and proportional recipe scaling. Everything here is a pure
// computation over supplied inputs; persistence belongs to the callers.
package costing

import "strings"

// Unit identifies a supported measurement unit.
type Unit string

// Supported units. Mass and volume units convert within their family through
// a canonical base (grams and millilitres); Piece only converts to itself.
const (
	Kilogram   Unit = "kg"
	Gram       Unit = "g"
	Litre      Unit = "l"
	Millilitre Unit = "ml"
	Piece      Unit = "unit"
)

type unitFamily int

const (
	familyNone unitFamily = iota
	familyMass
	familyVolume
	familyCount
)

// baseFactor converts one of the unit into the family base unit.
var baseFactor = map[Unit]float64{
	Kilogram:   1000,
	Gram:       1,
	Litre:      1000,
	Millilitre: 1,
	Piece:      1,
}

var families = map[Unit]unitFamily{
	Kilogram:   familyMass,
	Gram:       familyMass,
	Litre:      familyVolume,
	Millilitre: familyVolume,
	Piece:      familyCount,
}

var unitAliases = map[string]Unit{
	"kg":          Kilogram,
	"kilogram":    Kilogram,
	"kilograms":   Kilogram,
	"g":           Gram,
	"gram":        Gram,
	"grams":       Gram,
	"l":           Litre,
	"litre":       Litre,
	"litres":      Litre,
	"liter":       Litre,
	"liters":      Litre,
	"ml":          Millilitre,
	"millilitre":  Millilitre,
	"millilitres": Millilitre,
	"milliliter":  Millilitre,
	"milliliters": Millilitre,
	"unit":        Piece,
	"units":       Piece,
	"piece":       Piece,
	"pieces":      Piece,
	"each":        Piece,
	"ea":          Piece,
}

// ParseUnit resolves user-supplied text to a canonical unit. Matching is
// case-insensitive and tolerates common spellings and plurals.
func ParseUnit(value string) (Unit, bool) {
	unit, ok := unitAliases[strings.ToLower(strings.TrimSpace(value))]
	return unit, ok
}

// Valid reports whether the unit is one of the supported units.
func (u Unit) Valid() bool {
	_, ok := families[u]
	return ok
}

// SameFamily reports whether two units share a conversion family.
func SameFamily(a, b Unit) bool {
	fa, okA := families[a]
	fb, okB := families[b]
	return okA && okB && fa == fb
}

// Convert translates a quantity between units of the same family by routing
// through the family base unit. Conversion across families has no defined
// relationship and returns IncompatibleUnitsError rather than passing the
// value through unconverted.
func Convert(value float64, from, to Unit) (float64, error) {
	if !from.Valid() {
		return 0, IncompatibleUnitsError{From: from, To: to}
	}
	if !to.Valid() {
		return 0, IncompatibleUnitsError{From: from, To: to}
	}
	if from == to {
		return value, nil
	}
	if !SameFamily(from, to) {
		return 0, IncompatibleUnitsError{From: from, To: to}
	}
	inBase := value * baseFactor[from]
	return inBase / baseFactor[to], nil
}
