// Package perf derives final engineering metrics from reduced force data.
// The two simulation domains share the pipeline and diverge only in their
// formula set, expressed as one interface with two implementations.
package perf

import (
	"github.com/okian/foamperf/internal/domain/model"
)

// Unit strings used in metric sets.
const (
	UnitNewton        = "N"
	UnitNewtonMetre   = "Nm"
	UnitWatt          = "W"
	UnitDimensionless = "-"
)

// Notes attached to null metrics. A null metric means the value is
// mathematically undefined for this run, never that the pipeline failed.
const (
	noteNoReference  = "reference values not configured"
	noteNoAxis       = "axis not configured"
	noteParallelAxes = "drag and lift axes are parallel"
	noteNoRotation   = "rpm or diameter not configured"
	noteZeroPower    = "power is zero or negative"
	noteZeroDrag     = "drag is zero"
	noteNoDensity    = "density not configured"
)

// Formulas computes a metric set for one domain. Implementations must not
// panic and must guard every division; partially configured runs yield null
// metrics with notes instead of errors.
type Formulas interface {
	// Domain returns the tag this formula set serves.
	Domain() model.Domain

	// Compute derives the named metrics from a reduced record.
	Compute(reduced model.ReductionResult) model.MetricSet
}

// New returns the formula set for a domain with its typed configuration.
// Exactly one of aero/prop is consulted, per the domain tag.
func New(d model.Domain, aero AeroConfig, prop PropellerConfig) Formulas {
	if d == model.DomainPropeller {
		return &PropellerFormulas{cfg: prop}
	}
	return &AeroFormulas{cfg: aero}
}

// dynamicPressure returns 0.5 * rho * U^2 and whether it is positive.
func dynamicPressure(rho, u float64) (float64, bool) {
	if rho <= 0 || u <= 0 {
		return 0, false
	}
	return 0.5 * rho * u * u, true
}
