package perf

import (
	"math"

	"github.com/okian/foamperf/internal/domain/model"
)

// PropellerConfig holds the rotating-propeller parameters. Zero RPM or
// diameter nulls the coefficient metrics; it never aborts the run.
type PropellerConfig struct {
	// RPM is the configured rotation rate in revolutions per minute.
	RPM float64
	// Diameter is the propeller diameter D in m.
	Diameter float64
	// Density is the fluid density rho in kg/m^3.
	Density float64
	// AdvanceVelocity is the inflow velocity V in m/s.
	AdvanceVelocity float64
	// Axis is the rotation axis; it need not be unit length.
	Axis model.Vec3
}

// DefaultPropellerConfig returns the documented defaults: air at sea level
// and rotation about +X. RPM and diameter have no sensible default and stay
// zero, which nulls the coefficient metrics until configured.
func DefaultPropellerConfig() PropellerConfig {
	return PropellerConfig{
		Density: 1.225,
		Axis:    model.Vec3{X: 1},
	}
}

// RevsPerSec returns the rotation rate n in rev/s.
func (c PropellerConfig) RevsPerSec() float64 { return c.RPM / 60.0 }

// PropellerFormulas derives thrust, torque, power, efficiency and the
// dimensionless propeller coefficients.
type PropellerFormulas struct {
	cfg PropellerConfig
}

// NewPropellerFormulas creates the propeller formula set.
func NewPropellerFormulas(cfg PropellerConfig) *PropellerFormulas {
	return &PropellerFormulas{cfg: cfg}
}

// Domain returns the propeller tag.
func (f *PropellerFormulas) Domain() model.Domain { return model.DomainPropeller }

// Compute derives the propeller metrics from a reduced force record.
//
// The forces function object reports the force the fluid exerts on the
// blade, which opposes the thrust direction, so thrust and torque are
// reported as magnitudes of the axial projections. The raw signed
// projection is kept as axial_force for convention checks.
func (f *PropellerFormulas) Compute(reduced model.ReductionResult) model.MetricSet {
	m := make(model.MetricSet)
	rec := reduced.Record

	axis, haveAxis := f.cfg.Axis.Normalized()
	if !haveAxis {
		for _, name := range []string{"thrust", "axial_force"} {
			m.SetNull(name, UnitNewton, noteNoAxis)
		}
		m.SetNull("torque", UnitNewtonMetre, noteNoAxis)
		m.SetNull("power", UnitWatt, noteNoAxis)
		m.SetNull("efficiency", UnitDimensionless, noteNoAxis)
		for _, name := range []string{"kt", "kq", "cp", "advance_ratio"} {
			m.SetNull(name, UnitDimensionless, noteNoAxis)
		}
		return m
	}

	rawThrust := rec.TotalForce().Dot(axis)
	rawTorque := rec.TotalMoment().Dot(axis)
	thrust := math.Abs(rawThrust)
	torque := math.Abs(rawTorque)

	m.Set("axial_force", rawThrust, UnitNewton)
	m.Set("thrust", thrust, UnitNewton)
	m.Set("torque", torque, UnitNewtonMetre)

	n := f.cfg.RevsPerSec()
	d := f.cfg.Diameter
	rho := f.cfg.Density
	v := f.cfg.AdvanceVelocity

	if n <= 0 {
		m.SetNull("power", UnitWatt, noteNoRotation)
		m.SetNull("efficiency", UnitDimensionless, noteNoRotation)
	} else {
		power := torque * 2 * math.Pi * n
		m.Set("power", power, UnitWatt)
		if power > 0 {
			m.Set("efficiency", thrust*v/power, UnitDimensionless)
		} else {
			m.SetNull("efficiency", UnitDimensionless, noteZeroPower)
		}
	}

	if n <= 0 || d <= 0 {
		for _, name := range []string{"kt", "kq", "cp", "advance_ratio"} {
			m.SetNull(name, UnitDimensionless, noteNoRotation)
		}
		return m
	}

	m.Set("advance_ratio", v/(n*d), UnitDimensionless)

	if rho <= 0 {
		for _, name := range []string{"kt", "kq", "cp"} {
			m.SetNull(name, UnitDimensionless, noteNoDensity)
		}
		return m
	}

	d4 := d * d * d * d
	m.Set("kt", thrust/(rho*n*n*d4), UnitDimensionless)
	m.Set("kq", torque/(rho*n*n*d4*d), UnitDimensionless)
	// Cp = P / (rho n^3 D^5) = 2 pi Kq
	m.Set("cp", torque*2*math.Pi*n/(rho*n*n*n*d4*d), UnitDimensionless)

	return m
}
