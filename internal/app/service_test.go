package app_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/okian/foamperf/internal/app"
	"github.com/okian/foamperf/internal/domain/forcelog"
	"github.com/okian/foamperf/internal/domain/model"
	"github.com/okian/foamperf/internal/domain/perf"
	"github.com/okian/foamperf/internal/logtest"
	"github.com/okian/foamperf/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// aeroRunDir lays out a complete aero case: boundary file plus a steady
// force log with total force (12, 0, 5).
func aeroRunDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	So(logtest.WriteBoundaryFile(dir), ShouldBeNil)

	samples := make([]logtest.ForceSample, 12)
	for i := range samples {
		samples[i] = logtest.ForceSample{
			Time:     float64(i) * 0.1,
			Pressure: model.Vec3{X: 10, Z: 4},
			Viscous:  model.Vec3{X: 2, Z: 1},
		}
	}
	path, err := logtest.WriteRunDir(dir, "forces", "0", "force.dat", "")
	So(err, ShouldBeNil)
	So(logtest.WriteForceFile(path, samples), ShouldBeNil)
	return dir
}

// propellerRunDir lays out a rotating case under the stator sub-case with
// the forces1 object name, axial force -100 and axial moment -5.
func propellerRunDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	samples := make([]logtest.ForceSample, 15)
	for i := range samples {
		samples[i] = logtest.ForceSample{
			Time:     float64(i) * 0.01,
			Pressure: model.Vec3{X: -80},
			Viscous:  model.Vec3{X: -20},
			MomentP:  model.Vec3{X: -4},
			MomentV:  model.Vec3{X: -1},
		}
	}
	path, err := logtest.WriteRunDir(filepath.Join(dir, "stator"), "forces1", "0", "force.dat", "")
	So(err, ShouldBeNil)
	So(logtest.WriteForceFile(path, samples), ShouldBeNil)
	return dir
}

func TestAnalyzeAero(t *testing.T) {
	Convey("Given an aero run directory with a boundary file and force log", t, func() {
		dir := aeroRunDir(t)
		svc := app.New()

		Convey("When analyzing with averaging", func() {
			rep, err := svc.Analyze(context.Background(), app.Request{
				RunDir: dir,
				Domain: model.DomainAero,
				Mode:   model.ReduceAverage,
			})

			Convey("Then the model wall is detected from the mesh", func() {
				So(err, ShouldBeNil)
				So(rep.Patches, ShouldResemble, []string{"model_wall"})
			})

			Convey("And the forces reduce to the steady values", func() {
				So(err, ShouldBeNil)
				So(*rep.Metrics["drag"].Value, ShouldAlmostEqual, 12)
				So(*rep.Metrics["lift"].Value, ShouldAlmostEqual, 5)

				q := 0.5 * 1.225 * 10 * 10
				So(*rep.Metrics["cd"].Value, ShouldAlmostEqual, 12/q)
			})

			Convey("And the provenance records the full window", func() {
				So(err, ShouldBeNil)
				So(rep.ID, ShouldNotBeEmpty)
				So(rep.Provenance.Method, ShouldEqual, model.ReduceAverage)
				So(rep.Provenance.Samples, ShouldEqual, 12)
				So(rep.Provenance.TimeStart, ShouldAlmostEqual, 0)
				So(rep.Provenance.TimeEnd, ShouldAlmostEqual, 1.1)
				So(rep.Note, ShouldBeEmpty)
			})
		})

		Convey("When analyzing with an empty mode", func() {
			rep, err := svc.Analyze(context.Background(), app.Request{
				RunDir: dir,
				Domain: model.DomainAero,
			})

			Convey("Then the initial transient is excluded by default", func() {
				So(err, ShouldBeNil)
				So(rep.Provenance.Method, ShouldEqual, model.ReduceExcludeInitial)
				So(rep.Provenance.TimeStart, ShouldAlmostEqual, 0.3)
				So(rep.Provenance.Samples, ShouldEqual, 9)
			})
		})

		Convey("When overriding the patch list", func() {
			rep, err := svc.Analyze(context.Background(), app.Request{
				RunDir:  dir,
				Domain:  model.DomainAero,
				Mode:    model.ReduceLatest,
				Patches: []string{"front_wing", "rear_wing"},
			})

			Convey("Then detection is bypassed", func() {
				So(err, ShouldBeNil)
				So(rep.Patches, ShouldResemble, []string{"front_wing", "rear_wing"})
			})
		})
	})
}

func TestAnalyzePropeller(t *testing.T) {
	Convey("Given a propeller run under the stator sub-case", t, func() {
		dir := propellerRunDir(t)
		svc := app.New()

		Convey("When analyzing with the full physical configuration", func() {
			rep, err := svc.Analyze(context.Background(), app.Request{
				RunDir:  dir,
				Domain:  model.DomainPropeller,
				Mode:    model.ReduceAverage,
				Patches: []string{"blade"},
				Prop: &perf.PropellerConfig{
					RPM:             1200,
					Diameter:        0.5,
					Density:         1000,
					AdvanceVelocity: 5,
					Axis:            model.Vec3{X: 1},
				},
			})

			Convey("Then the log is found despite the nested layout", func() {
				So(err, ShouldBeNil)
				So(rep.Provenance.Samples, ShouldEqual, 15)
			})

			Convey("And the propeller metrics come out", func() {
				So(err, ShouldBeNil)
				So(*rep.Metrics["thrust"].Value, ShouldAlmostEqual, 100)
				So(*rep.Metrics["torque"].Value, ShouldAlmostEqual, 5)
				So(*rep.Metrics["power"].Value, ShouldAlmostEqual, 5*2*math.Pi*20)
			})
		})

		Convey("When analyzing without rotation parameters", func() {
			rep, err := svc.Analyze(context.Background(), app.Request{
				RunDir:  dir,
				Domain:  model.DomainPropeller,
				Mode:    model.ReduceLatest,
				Patches: []string{"blade"},
			})

			Convey("Then thrust is reported and the coefficients are null", func() {
				So(err, ShouldBeNil)
				So(*rep.Metrics["thrust"].Value, ShouldAlmostEqual, 100)
				So(rep.Metrics["kt"].Value, ShouldBeNil)
				So(rep.Metrics["efficiency"].Value, ShouldBeNil)
			})
		})
	})
}

func TestAnalyzeErrors(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := app.New()
		ctx := context.Background()

		Convey("When the run directory has no force output", func() {
			_, err := svc.Analyze(ctx, app.Request{
				RunDir: t.TempDir(),
				Domain: model.DomainAero,
			})

			Convey("Then the missing log is reported", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, forcelog.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the domain is unknown", func() {
			_, err := svc.Analyze(ctx, app.Request{RunDir: t.TempDir(), Domain: "hydro"})
			So(err, ShouldNotBeNil)
		})

		Convey("When the reduction mode is unknown", func() {
			_, err := svc.Analyze(ctx, app.Request{
				RunDir: t.TempDir(),
				Domain: model.DomainAero,
				Mode:   "median",
			})
			So(err, ShouldNotBeNil)
		})

		Convey("When the window selects no samples", func() {
			dir := aeroRunDir(t)
			_, err := svc.Analyze(ctx, app.Request{
				RunDir:    dir,
				Domain:    model.DomainAero,
				Mode:      model.ReduceWindow,
				TimeStart: 50,
				TimeEnd:   60,
			})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSweep(t *testing.T) {
	Convey("Given a mix of valid and broken run directories", t, func() {
		good := aeroRunDir(t)
		broken := t.TempDir()
		svc := app.New(app.WithSweepWorkers(2))

		Convey("When sweeping them with one request template", func() {
			results := svc.Sweep(context.Background(), []string{good, broken, good}, app.Request{
				Domain: model.DomainAero,
				Mode:   model.ReduceAverage,
			})

			Convey("Then results keep the input order", func() {
				So(results, ShouldHaveLength, 3)
				So(results[0].RunDir, ShouldEqual, good)
				So(results[1].RunDir, ShouldEqual, broken)
			})

			Convey("And one failure does not poison the others", func() {
				So(results[0].Err, ShouldBeNil)
				So(*results[0].Report.Metrics["drag"].Value, ShouldAlmostEqual, 12)
				So(results[1].Err, ShouldNotBeNil)
				So(results[2].Err, ShouldBeNil)
			})
		})
	})
}
