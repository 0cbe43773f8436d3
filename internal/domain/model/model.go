// Package model contains domain models passed between layers.
package model

import "math"

// Domain selects the formula set applied to reduced force data.
type Domain string

// Supported analysis domains.
const (
	DomainAero      Domain = "aero"
	DomainPropeller Domain = "propeller"
)

// Valid reports whether the domain is one of the supported tags.
func (d Domain) Valid() bool {
	return d == DomainAero || d == DomainPropeller
}

// ReductionMode is the temporal aggregation strategy applied to a time series.
type ReductionMode string

// Supported reduction modes.
const (
	ReduceLatest         ReductionMode = "latest"
	ReduceAverage        ReductionMode = "average"
	ReduceWindow         ReductionMode = "window"
	ReduceExcludeInitial ReductionMode = "exclude_initial"
)

// Valid reports whether the mode is one of the supported tags.
func (m ReductionMode) Valid() bool {
	switch m {
	case ReduceLatest, ReduceAverage, ReduceWindow, ReduceExcludeInitial:
		return true
	}
	return false
}

// Patch is a named boundary surface read from mesh metadata.
// Identity is the name, unique within a run.
type Patch struct {
	Name  string
	Type  string // e.g. "wall", "patch", "mappedWall"
	Faces int
}

// Wall reports whether the patch is a wall-type boundary, the only kind
// force function objects integrate over.
func (p Patch) Wall() bool {
	switch p.Type {
	case "wall", "mappedWall":
		return true
	}
	return false
}

// Vec3 is a three-component vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns the component-wise sum v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Dot returns the scalar product v · o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the vector product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns v scaled to unit length, and false when v is
// (numerically) the zero vector.
func (v Vec3) Normalized() (Vec3, bool) {
	n := v.Norm()
	if n < 1e-12 {
		return Vec3{}, false
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}, true
}

// IsZero reports whether all components are exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Schema identifies the column layout of a force log file.
type Schema string

// Supported log schemas.
const (
	// SchemaForce is the forces function object layout: time followed by
	// pressure, viscous and porous force vectors, then pressure and viscous
	// moment vectors (16 columns).
	SchemaForce Schema = "force"

	// SchemaCoefficient is the forceCoeffs layout: time, Cd, Cs, Cl, CmRoll,
	// CmPitch, CmYaw, optionally followed by front/rear drag split
	// (7 or 9 columns).
	SchemaCoefficient Schema = "coefficient"
)

// Field keys for the force schema, in file column order.
var forceFields = []string{
	"fx_p", "fy_p", "fz_p",
	"fx_v", "fy_v", "fz_v",
	"fx_por", "fy_por", "fz_por",
	"mx_p", "my_p", "mz_p",
	"mx_v", "my_v", "mz_v",
}

// Field keys for the coefficient schema, in file column order. The last two
// are optional in the file.
var coefficientFields = []string{
	"cd", "cs", "cl", "cm_roll", "cm_pitch", "cm_yaw", "cd_front", "cd_rear",
}

// Fields returns the ordered field keys for the schema, excluding time.
func (s Schema) Fields() []string {
	switch s {
	case SchemaForce:
		return forceFields
	case SchemaCoefficient:
		return coefficientFields
	}
	return nil
}

// ForceRecord is one time-stamped sample of a force or coefficient log.
// Values are keyed by the schema field names.
type ForceRecord struct {
	Time   float64
	Values map[string]float64
}

// Value returns the named field, or zero when the field is absent.
func (r ForceRecord) Value(key string) float64 {
	return r.Values[key]
}

// Has reports whether the named field is present in the record.
func (r ForceRecord) Has(key string) bool {
	_, ok := r.Values[key]
	return ok
}

// vec assembles a vector from three field keys.
func (r ForceRecord) vec(kx, ky, kz string) Vec3 {
	return Vec3{X: r.Values[kx], Y: r.Values[ky], Z: r.Values[kz]}
}

// PressureForce returns the pressure force vector (force schema).
func (r ForceRecord) PressureForce() Vec3 { return r.vec("fx_p", "fy_p", "fz_p") }

// ViscousForce returns the viscous force vector (force schema).
func (r ForceRecord) ViscousForce() Vec3 { return r.vec("fx_v", "fy_v", "fz_v") }

// PorousForce returns the porous force vector (force schema).
func (r ForceRecord) PorousForce() Vec3 { return r.vec("fx_por", "fy_por", "fz_por") }

// TotalForce returns pressure + viscous + porous force.
func (r ForceRecord) TotalForce() Vec3 {
	return r.PressureForce().Add(r.ViscousForce()).Add(r.PorousForce())
}

// PressureMoment returns the pressure moment vector (force schema).
func (r ForceRecord) PressureMoment() Vec3 { return r.vec("mx_p", "my_p", "mz_p") }

// ViscousMoment returns the viscous moment vector (force schema).
func (r ForceRecord) ViscousMoment() Vec3 { return r.vec("mx_v", "my_v", "mz_v") }

// TotalMoment returns pressure + viscous moment.
func (r ForceRecord) TotalMoment() Vec3 {
	return r.PressureMoment().Add(r.ViscousMoment())
}

// TimeSeries is an ordered sequence of records from one log, time ascending
// with no duplicate times. Non-empty on successful parse.
type TimeSeries struct {
	Schema  Schema
	Records []ForceRecord
}

// Len returns the number of records.
func (s TimeSeries) Len() int { return len(s.Records) }

// First returns the earliest record. Caller must check Len first.
func (s TimeSeries) First() ForceRecord { return s.Records[0] }

// Last returns the latest record. Caller must check Len first.
func (s TimeSeries) Last() ForceRecord { return s.Records[len(s.Records)-1] }

// ReductionResult is one synthesized record plus provenance. Never mutated
// after construction.
type ReductionResult struct {
	Record    ForceRecord
	Schema    Schema
	Mode      ReductionMode
	TimeStart float64
	TimeEnd   float64
	Samples   int
}

// Metric is a single named engineering value. A nil Value means the metric
// is mathematically undefined for this run; Note says why.
type Metric struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
	Note  string   `json:"note,omitempty"`
}

// MetricSet maps metric names to values. Immutable once produced.
type MetricSet map[string]Metric

// Set stores a concrete metric value.
func (m MetricSet) Set(name string, value float64, unit string) {
	v := value
	m[name] = Metric{Value: &v, Unit: unit}
}

// SetNull stores a null metric with an explanatory note.
func (m MetricSet) SetNull(name, unit, note string) {
	m[name] = Metric{Unit: unit, Note: note}
}

// Provenance records how the metrics were derived from the raw series.
type Provenance struct {
	Method    ReductionMode `json:"method"`
	TimeStart float64       `json:"time_start"`
	TimeEnd   float64       `json:"time_end"`
	Samples   int           `json:"samples"`
}

// Report is the final output of one analysis request.
type Report struct {
	ID         string     `json:"id"`
	RunDir     string     `json:"run_dir"`
	Domain     Domain     `json:"domain"`
	Patches    []string   `json:"patches,omitempty"`
	Metrics    MetricSet  `json:"metrics"`
	Provenance Provenance `json:"provenance"`
	Note       string     `json:"note,omitempty"`
}
