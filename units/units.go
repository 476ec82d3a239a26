// Package units converts lengths and weights between the unit names used in robot and path files.
package units

import (
	"strings"

	"github.com/pkg/errors"
)

// Length unit names.
const (
	Meters      = "m"
	Centimeters = "cm"
	Millimeters = "mm"
	Inches      = "in"
	Feet        = "ft"
)

// Weight unit names.
const (
	Kilograms = "kg"
	Grams     = "g"
	Pounds    = "lb"
)

var lengthToMeters = map[string]float64{
	Meters:      1,
	Centimeters: 0.01,
	Millimeters: 0.001,
	Inches:      0.0254,
	Feet:        0.3048,
}

var weightToKilograms = map[string]float64{
	Kilograms: 1,
	Grams:     0.001,
	Pounds:    0.45359237,
}

var aliases = map[string]string{
	"meter": Meters, "meters": Meters,
	"centimeter": Centimeters, "centimeters": Centimeters,
	"millimeter": Millimeters, "millimeters": Millimeters,
	"inch": Inches, "inches": Inches,
	"foot": Feet, "feet": Feet,
	"kilogram": Kilograms, "kilograms": Kilograms,
	"gram": Grams, "grams": Grams,
	"lbs": Pounds, "pound": Pounds, "pounds": Pounds,
}

// Canonical returns the short unit name for a unit or one of its spelled-out aliases.
func Canonical(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canon, ok := aliases[u]; ok {
		return canon
	}
	return u
}

// IsLength reports whether unit names a known length unit.
func IsLength(unit string) bool {
	_, ok := lengthToMeters[Canonical(unit)]
	return ok
}

// IsWeight reports whether unit names a known weight unit.
func IsWeight(unit string) bool {
	_, ok := weightToKilograms[Canonical(unit)]
	return ok
}

// ConvertLength converts value from one length unit to another.
func ConvertLength(value float64, from, to string) (float64, error) {
	f, ok := lengthToMeters[Canonical(from)]
	if !ok {
		return 0, errors.Errorf("unknown length unit %q", from)
	}
	t, ok := lengthToMeters[Canonical(to)]
	if !ok {
		return 0, errors.Errorf("unknown length unit %q", to)
	}
	return value * f / t, nil
}

// ConvertWeight converts value from one weight unit to another.
func ConvertWeight(value float64, from, to string) (float64, error) {
	f, ok := weightToKilograms[Canonical(from)]
	if !ok {
		return 0, errors.Errorf("unknown weight unit %q", from)
	}
	t, ok := weightToKilograms[Canonical(to)]
	if !ok {
		return 0, errors.Errorf("unknown weight unit %q", to)
	}
	return value * f / t, nil
}

// MustLength is ConvertLength for unit names that have already been validated.
func MustLength(value float64, from, to string) float64 {
	v, err := ConvertLength(value, from, to)
	if err != nil {
		panic(err)
	}
	return v
}

// MustWeight is ConvertWeight for unit names that have already been validated.
func MustWeight(value float64, from, to string) float64 {
	v, err := ConvertWeight(value, from, to)
	if err != nil {
		panic(err)
	}
	return v
}
