package logging

import (
	"testing"

	"go.viam.com/test"
)

func TestValidatePattern(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		pattern string
		isValid bool
	}{
		{"trajgen.generator", true},
		{"trajgen.generator.*", true},
		{"trajgen.*.swerve", true},
		{"*", true},
		{"trajgen..generator", false},
		{"trajgen.generator.", false},
		{".trajgen", false},
		{"trajgen.**", false},
		{"_.trajgen", false},
	} {
		tc := tc
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()
			test.That(t, ValidatePattern(tc.pattern), test.ShouldEqual, tc.isValid)
		})
	}
}

func TestRegistryUpdateConfig(t *testing.T) {
	registry := NewRegistry()
	root := registry.GetOrRegister(NewBlankLogger("trajgen"))
	gen := registry.Sublogger(root, "generator")
	swerve := registry.Sublogger(gen, "swerve")
	root.SetLevel(INFO)
	gen.SetLevel(INFO)
	swerve.SetLevel(INFO)

	err := registry.UpdateConfig([]LoggerPatternConfig{
		{Pattern: "trajgen.*", Level: "warn"},
		{Pattern: "trajgen.generator.swerve", Level: "debug"},
		{Pattern: "bad..pattern", Level: "error"},
	}, NewBlankLogger("errors"))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, root.GetLevel(), test.ShouldEqual, INFO)
	test.That(t, gen.GetLevel(), test.ShouldEqual, WARN)
	test.That(t, swerve.GetLevel(), test.ShouldEqual, DEBUG)

	// Loggers registered after the config are configured on registration.
	late := registry.Sublogger(gen, "queue")
	test.That(t, late.GetLevel(), test.ShouldEqual, WARN)

	again := registry.GetOrRegister(NewBlankLogger("trajgen.generator"))
	test.That(t, again, test.ShouldEqual, gen)

	err = registry.UpdateConfig([]LoggerPatternConfig{{Pattern: "trajgen", Level: "loud"}}, NewBlankLogger("errors"))
	test.That(t, err, test.ShouldNotBeNil)
}
