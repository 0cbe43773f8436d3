package perf

import (
	"github.com/okian/foamperf/internal/domain/model"
)

// AeroConfig holds the external-flow reference values. Zero or negative
// required values null the dependent metrics; they never abort the run.
type AeroConfig struct {
	// RefArea is the reference area A_ref in m^2.
	RefArea float64
	// RefLength is the reference length l_ref in m.
	RefLength float64
	// Velocity is the freestream velocity U_inf in m/s.
	Velocity float64
	// Density is the fluid density rho in kg/m^3.
	Density float64
	// DragAxis and LiftAxis are the projection axes. They must be non-zero;
	// orthogonality is not validated.
	DragAxis model.Vec3
	LiftAxis model.Vec3
}

// DefaultAeroConfig returns the documented defaults: air at sea level, a
// unit reference area, freestream along +X and lift along +Z. Every default
// lives here, not inside the formulas, so tests can assert on this table.
func DefaultAeroConfig() AeroConfig {
	return AeroConfig{
		RefArea:   1.0,
		RefLength: 1.0,
		Velocity:  10.0,
		Density:   1.225,
		DragAxis:  model.Vec3{X: 1},
		LiftAxis:  model.Vec3{Z: 1},
	}
}

// AeroFormulas derives drag, lift, side force and their coefficients for
// external-flow bodies.
type AeroFormulas struct {
	cfg AeroConfig
}

// NewAeroFormulas creates the aero formula set.
func NewAeroFormulas(cfg AeroConfig) *AeroFormulas {
	return &AeroFormulas{cfg: cfg}
}

// Domain returns the aero tag.
func (f *AeroFormulas) Domain() model.Domain { return model.DomainAero }

// Compute derives the aero metrics. Force logs produce forces first and
// coefficients from the dynamic pressure; coefficient logs pass Cd/Cl
// through verbatim and back-compute the forces, so both log kinds converge
// to the same metric set shape.
func (f *AeroFormulas) Compute(reduced model.ReductionResult) model.MetricSet {
	if reduced.Schema == model.SchemaCoefficient {
		return f.fromCoefficients(reduced.Record)
	}
	return f.fromForces(reduced.Record)
}

func (f *AeroFormulas) fromForces(rec model.ForceRecord) model.MetricSet {
	m := make(model.MetricSet)
	total := rec.PressureForce().Add(rec.ViscousForce())

	var drag, lift float64
	haveDrag := !f.cfg.DragAxis.IsZero()
	haveLift := !f.cfg.LiftAxis.IsZero()

	if haveDrag {
		drag = total.Dot(f.cfg.DragAxis)
		m.Set("drag", drag, UnitNewton)
	} else {
		m.SetNull("drag", UnitNewton, noteNoAxis)
	}
	if haveLift {
		lift = total.Dot(f.cfg.LiftAxis)
		m.Set("lift", lift, UnitNewton)
	} else {
		m.SetNull("lift", UnitNewton, noteNoAxis)
	}

	// Side axis completes the frame: normalized drag x lift.
	if haveDrag && haveLift {
		if side, ok := f.cfg.DragAxis.Cross(f.cfg.LiftAxis).Normalized(); ok {
			m.Set("side_force", total.Dot(side), UnitNewton)
		} else {
			m.SetNull("side_force", UnitNewton, noteParallelAxes)
		}
	} else {
		m.SetNull("side_force", UnitNewton, noteNoAxis)
	}

	q, haveQ := dynamicPressure(f.cfg.Density, f.cfg.Velocity)
	haveRef := haveQ && f.cfg.RefArea > 0
	if haveRef && haveDrag {
		m.Set("cd", drag/(q*f.cfg.RefArea), UnitDimensionless)
	} else {
		m.SetNull("cd", UnitDimensionless, noteNoReference)
	}
	if haveRef && haveLift {
		m.Set("cl", lift/(q*f.cfg.RefArea), UnitDimensionless)
	} else {
		m.SetNull("cl", UnitDimensionless, noteNoReference)
	}

	if haveDrag && haveLift && drag != 0 {
		m.Set("l_d_ratio", lift/drag, UnitDimensionless)
	} else {
		m.SetNull("l_d_ratio", UnitDimensionless, noteZeroDrag)
	}

	return m
}

func (f *AeroFormulas) fromCoefficients(rec model.ForceRecord) model.MetricSet {
	m := make(model.MetricSet)

	cd := rec.Value("cd")
	cl := rec.Value("cl")
	cs := rec.Value("cs")

	m.Set("cd", cd, UnitDimensionless)
	m.Set("cl", cl, UnitDimensionless)
	m.Set("cm_pitch", rec.Value("cm_pitch"), UnitDimensionless)

	if cd != 0 {
		m.Set("l_d_ratio", cl/cd, UnitDimensionless)
	} else {
		m.SetNull("l_d_ratio", UnitDimensionless, noteZeroDrag)
	}

	// Back-compute dimensional forces with the same dynamic-pressure
	// formula used in the force path.
	q, haveQ := dynamicPressure(f.cfg.Density, f.cfg.Velocity)
	if haveQ && f.cfg.RefArea > 0 {
		qa := q * f.cfg.RefArea
		m.Set("drag", cd*qa, UnitNewton)
		m.Set("lift", cl*qa, UnitNewton)
		m.Set("side_force", cs*qa, UnitNewton)
	} else {
		m.SetNull("drag", UnitNewton, noteNoReference)
		m.SetNull("lift", UnitNewton, noteNoReference)
		m.SetNull("side_force", UnitNewton, noteNoReference)
	}

	return m
}
