// Package logtest generates synthetic OpenFOAM force logs for tests.
package logtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/foamperf/internal/domain/model"
)

// File permission constants.
const (
	dirPermission  = 0o755
	filePermission = 0o644
)

// ForceSample is one synthetic force log row.
type ForceSample struct {
	Time     float64
	Pressure model.Vec3
	Viscous  model.Vec3
	Porous   model.Vec3
	MomentP  model.Vec3
	MomentV  model.Vec3
}

// CoefficientSample is one synthetic coefficient log row.
type CoefficientSample struct {
	Time                   float64
	Cd, Cs, Cl             float64
	CmRoll, CmPitch, CmYaw float64
}

// ForceHeader mirrors the comment block the forces function object writes.
const ForceHeader = `# Force
# CofR        : (0 0 0)
# Time        forces(pressure viscous porous) moments(pressure viscous)
`

// WriteForceFile writes a force.dat with parenthesized vector triples, the
// encoding current OpenFOAM versions emit.
func WriteForceFile(path string, samples []ForceSample) error {
	var b strings.Builder
	b.WriteString(ForceHeader)
	for _, s := range samples {
		fmt.Fprintf(&b, "%g\t%s %s %s\t%s %s\n",
			s.Time, triple(s.Pressure), triple(s.Viscous), triple(s.Porous),
			triple(s.MomentP), triple(s.MomentV))
	}
	return write(path, b.String())
}

// WriteForceFileBare writes the same table with bare numeric columns, the
// older solver encoding.
func WriteForceFileBare(path string, samples []ForceSample) error {
	var b strings.Builder
	b.WriteString(ForceHeader)
	for _, s := range samples {
		fmt.Fprintf(&b, "%g %s %s %s %s %s\n",
			s.Time, bare(s.Pressure), bare(s.Viscous), bare(s.Porous),
			bare(s.MomentP), bare(s.MomentV))
	}
	return write(path, b.String())
}

// WriteCoefficientFile writes a coefficient.dat table.
func WriteCoefficientFile(path string, samples []CoefficientSample) error {
	var b strings.Builder
	b.WriteString("# Force coefficients\n# Time Cd Cs Cl CmRoll CmPitch CmYaw\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "%g\t%g\t%g\t%g\t%g\t%g\t%g\n",
			s.Time, s.Cd, s.Cs, s.Cl, s.CmRoll, s.CmPitch, s.CmYaw)
	}
	return write(path, b.String())
}

// AppendRaw appends raw text to an existing log, for torn-write scenarios.
func AppendRaw(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, filePermission)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(text)
	return err
}

// LinearForceSeries builds n samples from t0 with step dt, forces ramping
// linearly toward the given final pressure/viscous vectors.
func LinearForceSeries(t0, dt float64, n int, pressure, viscous model.Vec3) []ForceSample {
	samples := make([]ForceSample, n)
	for i := range samples {
		frac := float64(i+1) / float64(n)
		samples[i] = ForceSample{
			Time:     t0 + float64(i)*dt,
			Pressure: scale(pressure, frac),
			Viscous:  scale(viscous, frac),
			MomentP:  scale(model.Vec3{X: 1, Y: 2, Z: 3}, frac),
		}
	}
	return samples
}

// WriteRunDir lays out a minimal run directory:
// <dir>/postProcessing/<object>/<time>/<file>. Returns the log file path.
func WriteRunDir(dir, object, timeDir, file, content string) (string, error) {
	full := filepath.Join(dir, "postProcessing", object, timeDir)
	if err := os.MkdirAll(full, dirPermission); err != nil {
		return "", err
	}
	path := filepath.Join(full, file)
	return path, write(path, content)
}

// BoundaryFile is a minimal polyMesh/boundary with a model wall flanked by
// the usual tunnel patches.
const BoundaryFile = `FoamFile
{
    version     2.0;
    format      ascii;
    class       polyBoundaryMesh;
    object      boundary;
}

4
(
    inlet
    {
        type            patch;
        nFaces          100;
        startFace       1000;
    }
    outlet
    {
        type            patch;
        nFaces          100;
        startFace       1100;
    }
    ground
    {
        type            wall;
        nFaces          400;
        startFace       1200;
    }
    model_wall
    {
        type            wall;
        nFaces          2500;
        startFace       1600;
    }
)
`

// WriteBoundaryFile writes the canned boundary file under
// <dir>/constant/polyMesh/boundary.
func WriteBoundaryFile(dir string) error {
	full := filepath.Join(dir, "constant", "polyMesh")
	if err := os.MkdirAll(full, dirPermission); err != nil {
		return err
	}
	return write(filepath.Join(full, "boundary"), BoundaryFile)
}

func triple(v model.Vec3) string {
	return fmt.Sprintf("(%g %g %g)", v.X, v.Y, v.Z)
}

func bare(v model.Vec3) string {
	return fmt.Sprintf("%g %g %g", v.X, v.Y, v.Z)
}

func scale(v model.Vec3, f float64) model.Vec3 {
	return model.Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

func write(path, content string) error {
	return os.WriteFile(path, []byte(content), filePermission)
}
