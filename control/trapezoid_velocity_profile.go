// Package control solves one-dimensional motion profiles with bounded acceleration and velocity.
package control

import (
	"fmt"
	"math"

	"go.viam.com/trajgen/trajerr"
	"go.viam.com/trajgen/utils"
)

// fitIterations bounds the bisection in FitToDuration.
const fitIterations = 60

// Shape is the form a solved profile takes.
type Shape int

const (
	// ShapeNone is an unsolved profile.
	ShapeNone Shape = iota
	// ShapeTrapezoid accelerates (or decelerates) to the velocity cap, cruises, then decelerates.
	ShapeTrapezoid
	// ShapePyramid accelerates and immediately decelerates without reaching the cap.
	ShapePyramid
	// ShapeLine uses a single constant acceleration between the start and end velocities.
	ShapeLine
)

func (s Shape) String() string {
	switch s {
	case ShapeTrapezoid:
		return "trapezoid"
	case ShapePyramid:
		return "pyramid"
	case ShapeLine:
		return "line"
	default:
		return "none"
	}
}

// phase is a constant-acceleration stretch of the profile, in the unsigned frame.
type phase struct {
	start    float64
	duration float64
	pos      float64
	vel      float64
	accel    float64
}

func (p phase) end() float64 {
	return p.start + p.duration
}

func (p phase) length() float64 {
	return p.vel*p.duration + 0.5*p.accel*p.duration*p.duration
}

// TrapezoidalProfile is a 1D motion over a signed distance with bounded acceleration, deceleration
// and velocity. Velocities passed to Update are signed along the same axis as the distance.
type TrapezoidalProfile struct {
	maxAccel float64
	maxDecel float64
	maxVel   float64

	distance float64
	dir      float64
	startVel float64
	endVel   float64
	shape    Shape
	phases   []phase
	total    float64
}

// NewTrapezoidalProfile returns an unsolved profile with the given limits. All limits are
// magnitudes and must be positive.
func NewTrapezoidalProfile(maxAccel, maxDecel, maxVel float64) (*TrapezoidalProfile, error) {
	if !(maxAccel > 0) {
		return nil, trajerr.NewValidationError("max_accel", "must be positive, got %g", maxAccel)
	}
	if !(maxDecel > 0) {
		return nil, trajerr.NewValidationError("max_decel", "must be positive, got %g", maxDecel)
	}
	if !(maxVel > 0) {
		return nil, trajerr.NewValidationError("max_velocity", "must be positive, got %g", maxVel)
	}
	return &TrapezoidalProfile{maxAccel: maxAccel, maxDecel: maxDecel, maxVel: maxVel, dir: 1}, nil
}

// Update solves the fastest profile covering distance that starts at startVel and ends at endVel.
func (p *TrapezoidalProfile) Update(distance, startVel, endVel float64) error {
	return p.solve(distance, startVel, endVel, p.maxVel)
}

// FitToDuration solves a profile covering distance that takes as close to duration as the
// limits allow, lowering the cruise velocity below the cap as needed. It returns an
// InfeasibleError when even the fastest profile takes longer than duration. When the slowest
// profile that still reaches endVel is faster than duration, that profile is kept.
func (p *TrapezoidalProfile) FitToDuration(distance, startVel, endVel, duration float64) error {
	if err := p.solve(distance, startVel, endVel, p.maxVel); err != nil {
		return err
	}
	if p.total > duration+utils.Epsilon {
		return trajerr.NewInfeasibleError("profile needs %.4fs but only %.4fs are available", p.total, duration)
	}
	if p.total >= duration-utils.Epsilon || math.Abs(distance) < utils.Epsilon {
		return nil
	}

	lo := math.Max(math.Abs(endVel), 1e-9*p.maxVel)
	hi := p.maxVel
	if err := p.solve(distance, startVel, endVel, lo); err != nil {
		return err
	}
	if p.total <= duration {
		return nil
	}
	for i := 0; i < fitIterations; i++ {
		mid := (lo + hi) / 2
		if err := p.solve(distance, startVel, endVel, mid); err != nil {
			return err
		}
		if p.total > duration {
			lo = mid
		} else {
			hi = mid
		}
	}
	return p.solve(distance, startVel, endVel, hi)
}

func (p *TrapezoidalProfile) solve(distance, startVel, endVel, capVel float64) error {
	p.dir = 1
	if distance < 0 {
		p.dir = -1
	}
	d := math.Abs(distance)
	vs := startVel * p.dir
	ve := endVel * p.dir
	p.distance = distance
	p.startVel = startVel
	p.endVel = endVel
	p.shape = ShapeNone
	p.phases = p.phases[:0]
	p.total = 0

	if vs < -utils.Epsilon || ve < -utils.Epsilon {
		return trajerr.NewInfeasibleError("velocities %g and %g oppose a move of %g", startVel, endVel, distance)
	}
	vs = math.Max(vs, 0)
	ve = math.Max(ve, 0)
	if ve > capVel+utils.Epsilon {
		return trajerr.NewInfeasibleError("end velocity %g exceeds velocity cap %g", ve, capVel)
	}

	if d < utils.Epsilon {
		if math.Abs(vs-ve) > utils.Epsilon {
			return trajerr.NewInfeasibleError("cannot change velocity from %g to %g over zero distance", vs, ve)
		}
		p.shape = ShapeLine
		return nil
	}

	a, dec := p.maxAccel, p.maxDecel
	peak := math.Sqrt((2*a*dec*d + dec*vs*vs + a*ve*ve) / (a + dec))
	switch {
	case math.IsNaN(peak):
		return trajerr.NewInfeasibleError("no real peak velocity for distance %g", distance)
	case peak < vs-utils.Epsilon || peak < ve-utils.Epsilon:
		// Braking (or accelerating) at the limit cannot hit endVel in time.
		p.shape = ShapeLine
		accel := (ve*ve - vs*vs) / (2 * d)
		p.addPhase(2*d/(vs+ve), vs, accel)
	case peak <= capVel:
		p.shape = ShapePyramid
		p.addPhase((peak-vs)/a, vs, a)
		p.addPhase((peak-ve)/dec, peak, -dec)
	default:
		p.shape = ShapeTrapezoid
		var rampDist float64
		if vs > capVel {
			p.addPhase((vs-capVel)/dec, vs, -dec)
			rampDist = (vs*vs - capVel*capVel) / (2 * dec)
		} else {
			p.addPhase((capVel-vs)/a, vs, a)
			rampDist = (capVel*capVel - vs*vs) / (2 * a)
		}
		brakeDist := (capVel*capVel - ve*ve) / (2 * dec)
		cruise := math.Max(0, d-rampDist-brakeDist)
		p.addPhase(cruise/capVel, capVel, 0)
		p.addPhase((capVel-ve)/dec, capVel, -dec)
	}
	if !utils.IsFinite(p.total) {
		return trajerr.NewNumericError(-1, "profile duration is not finite")
	}
	return nil
}

func (p *TrapezoidalProfile) addPhase(duration, vel, accel float64) {
	if duration <= 0 {
		return
	}
	ph := phase{start: p.total, duration: duration, vel: vel, accel: accel}
	if n := len(p.phases); n > 0 {
		ph.pos = p.phases[n-1].pos + p.phases[n-1].length()
	}
	p.phases = append(p.phases, ph)
	p.total = ph.end()
}

func (p *TrapezoidalProfile) phaseAt(t float64) (phase, float64) {
	for _, ph := range p.phases {
		if t <= ph.end() {
			return ph, t - ph.start
		}
	}
	last := p.phases[len(p.phases)-1]
	return last, last.duration
}

// Position returns the signed distance travelled at time t.
func (p *TrapezoidalProfile) Position(t float64) float64 {
	switch {
	case len(p.phases) == 0 || t <= 0:
		return 0
	case t >= p.total:
		return p.distance
	}
	ph, tau := p.phaseAt(t)
	return p.dir * (ph.pos + ph.vel*tau + 0.5*ph.accel*tau*tau)
}

// Velocity returns the signed velocity at time t.
func (p *TrapezoidalProfile) Velocity(t float64) float64 {
	switch {
	case len(p.phases) == 0 || t <= 0:
		return p.startVel
	case t >= p.total:
		return p.endVel
	}
	ph, tau := p.phaseAt(t)
	return p.dir * (ph.vel + ph.accel*tau)
}

// Acceleration returns the signed acceleration at time t, or zero outside the profile.
func (p *TrapezoidalProfile) Acceleration(t float64) float64 {
	if len(p.phases) == 0 || t < 0 || t > p.total {
		return 0
	}
	ph, _ := p.phaseAt(t)
	return p.dir * ph.accel
}

// TotalTime returns the duration of the solved profile.
func (p *TrapezoidalProfile) TotalTime() float64 {
	return p.total
}

// Distance returns the signed distance the profile was solved for.
func (p *TrapezoidalProfile) Distance() float64 {
	return p.distance
}

// Shape returns the form of the solved profile.
func (p *TrapezoidalProfile) Shape() Shape {
	return p.shape
}

// TimeForDistance returns the earliest time at which the profile has covered the signed distance d.
func (p *TrapezoidalProfile) TimeForDistance(d float64) (float64, error) {
	s := d * p.dir
	length := math.Abs(p.distance)
	if s < -utils.Epsilon || s > length+utils.Epsilon {
		return 0, trajerr.NewInfeasibleError("distance %g is outside the profile's %g", d, p.distance)
	}
	if len(p.phases) == 0 || s <= 0 {
		return 0, nil
	}
	for _, ph := range p.phases {
		if s > ph.pos+ph.length()+utils.Epsilon {
			continue
		}
		tau, err := utils.SmallestNonNegativeRoot(0.5*ph.accel, ph.vel, ph.pos-s)
		if err != nil {
			return 0, trajerr.NewInfeasibleError("no time reaches distance %g: %v", d, err)
		}
		return ph.start + math.Min(tau, ph.duration), nil
	}
	return p.total, nil
}

func (p *TrapezoidalProfile) String() string {
	return fmt.Sprintf("%s(distance=%g, v=%g→%g, t=%.4fs, limits a=%g d=%g v=%g)",
		p.shape, p.distance, p.startVel, p.endVel, p.total, p.maxAccel, p.maxDecel, p.maxVel)
}
