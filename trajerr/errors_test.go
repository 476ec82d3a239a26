package trajerr

import (
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestKindOf(t *testing.T) {
	test.That(t, KindOf(NewValidationError("waypoints", "need at least 2, got %d", 1)), test.ShouldEqual, KindValidation)
	test.That(t, KindOf(NewDegeneratePathError("waypoints coincide")), test.ShouldEqual, KindDegeneratePath)
	test.That(t, KindOf(NewInfeasibleError("no budget")), test.ShouldEqual, KindInfeasible)
	test.That(t, KindOf(NewNumericError(3, "time is NaN")), test.ShouldEqual, KindNumeric)
	test.That(t, KindOf(errors.New("plain")), test.ShouldEqual, KindUnknown)
	test.That(t, KindOf(nil), test.ShouldEqual, KindUnknown)

	wrapped := errors.Wrap(NewInfeasibleError("corner fl too fast"), "path fwd")
	test.That(t, Is(wrapped, KindInfeasible), test.ShouldBeTrue)
	test.That(t, Is(wrapped, KindNumeric), test.ShouldBeFalse)
	test.That(t, Is(nil, KindUnknown), test.ShouldBeFalse)
}

func TestMessages(t *testing.T) {
	err := NewValidationError("robot.weight", "must be positive")
	test.That(t, err.Error(), test.ShouldEqual, "validation error: robot.weight: must be positive")

	agg := WrapValidation(multierr.Combine(errors.New("a"), errors.New("b")))
	test.That(t, KindOf(agg), test.ShouldEqual, KindValidation)
	test.That(t, agg.Error(), test.ShouldContainSubstring, "a; b")
	test.That(t, WrapValidation(nil), test.ShouldBeNil)

	inf := &InfeasibleError{Reason: "budget exhausted", Attempts: 20}
	test.That(t, inf.Error(), test.ShouldEqual, "infeasible path after 20 attempts: budget exhausted")
	test.That(t, KindNumeric.String(), test.ShouldEqual, "numeric")
}
