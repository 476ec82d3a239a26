package units

import (
	"testing"

	"go.viam.com/test"
)

func TestConvertLength(t *testing.T) {
	v, err := ConvertLength(1, Meters, Inches)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 39.37007874, 1e-8)

	v, err = ConvertLength(12, "inches", Feet)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 1)

	v, err = ConvertLength(250, Millimeters, Centimeters)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 25)

	_, err = ConvertLength(1, "furlong", Meters)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "furlong")
}

func TestConvertWeight(t *testing.T) {
	v, err := ConvertWeight(100, Pounds, Kilograms)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v, test.ShouldAlmostEqual, 45.359237, 1e-9)

	_, err = ConvertWeight(1, Kilograms, "stone")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCanonical(t *testing.T) {
	test.That(t, Canonical(" Meters "), test.ShouldEqual, Meters)
	test.That(t, IsLength("FT"), test.ShouldBeTrue)
	test.That(t, IsLength("kg"), test.ShouldBeFalse)
	test.That(t, IsWeight("lbs"), test.ShouldBeTrue)
}
