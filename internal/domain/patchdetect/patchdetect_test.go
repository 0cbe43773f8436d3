package patchdetect_test

import (
	"testing"

	"github.com/okian/foamperf/internal/domain/model"
	"github.com/okian/foamperf/internal/domain/patchdetect"
	. "github.com/smartystreets/goconvey/convey"
)

func patches(names ...string) []model.Patch {
	out := make([]model.Patch, len(names))
	for i, n := range names {
		out[i] = model.Patch{Name: n, Type: "wall"}
	}
	return out
}

func TestDetect(t *testing.T) {
	Convey("Given a typical wind tunnel patch list", t, func() {
		available := patches("inlet", "outlet", "model_wall")
		detector := patchdetect.New(
			patchdetect.WithExclusions([]string{"inlet", "outlet"}),
		)

		Convey("When detecting with the candidate 'model'", func() {
			found := detector.Detect(available, []string{"model"})

			Convey("Then exactly the model wall is returned with positive confidence", func() {
				So(found, ShouldHaveLength, 1)
				So(found[0].Name, ShouldEqual, "model_wall")
				So(found[0].Confidence, ShouldBeGreaterThan, 0)
				So(found[0].Reason, ShouldEqual, "substring")
			})
		})
	})

	Convey("Given patch names with varying match quality", t, func() {
		available := patches("wing", "wing_tip", "winglet_mount", "fuselage")
		detector := patchdetect.New(patchdetect.WithExclusions(nil))

		Convey("When detecting with the candidate 'wing'", func() {
			found := detector.Detect(available, []string{"wing"})

			Convey("Then the exact match ranks first, substrings after", func() {
				So(len(found), ShouldBeGreaterThanOrEqualTo, 3)
				So(found[0].Name, ShouldEqual, "wing")
				So(found[0].Confidence, ShouldEqual, 1.0)
				So(found[0].Reason, ShouldEqual, "exact")
				So(found[1].Confidence, ShouldEqual, 0.9)
			})

			Convey("And equal-confidence matches sort by name", func() {
				So(found[1].Name, ShouldEqual, "wing_tip")
				So(found[2].Name, ShouldEqual, "winglet_mount")
			})
		})
	})

	Convey("Given candidates in preference order", t, func() {
		available := patches("rotor", "blade")
		detector := patchdetect.New(patchdetect.WithExclusions(nil))

		Convey("When two patches match different candidates exactly", func() {
			found := detector.Detect(available, []string{"blade", "rotor"})

			Convey("Then the earlier candidate wins the tie", func() {
				So(found, ShouldHaveLength, 2)
				So(found[0].Name, ShouldEqual, "blade")
				So(found[1].Name, ShouldEqual, "rotor")
			})
		})
	})

	Convey("Given the default exclusion list", t, func() {
		available := patches("inlet", "outlet", "sideLeft", "sideRight", "rotorAMI", "propeller_blades")
		detector := patchdetect.New()

		Convey("When detecting propeller geometry", func() {
			found := detector.Detect(available, patchdetect.CandidatesFor(model.DomainPropeller))

			Convey("Then glob exclusions drop tunnel and AMI patches", func() {
				So(found, ShouldHaveLength, 1)
				So(found[0].Name, ShouldEqual, "propeller_blades")
			})
		})
	})

	Convey("Given no patch resembling any candidate", t, func() {
		available := patches("farfield", "symmetry")
		detector := patchdetect.New(patchdetect.WithExclusions(nil))

		Convey("When detecting", func() {
			found := detector.Detect(available, []string{"model"})

			Convey("Then the result is empty, not an error", func() {
				So(found, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a near-miss patch name", t, func() {
		available := patches("modle")
		detector := patchdetect.New(patchdetect.WithExclusions(nil))

		Convey("When detecting with the candidate 'model'", func() {
			found := detector.Detect(available, []string{"model"})

			Convey("Then the fuzzy score clears the default threshold", func() {
				So(found, ShouldHaveLength, 1)
				So(found[0].Reason, ShouldEqual, "fuzzy")
				So(found[0].Confidence, ShouldBeBetween, 0.5, 1.0)
			})
		})
	})

	Convey("Given a non-wall patch when walls-only is set", t, func() {
		available := []model.Patch{
			{Name: "model_inlet", Type: "patch"},
			{Name: "model_wall", Type: "wall"},
		}
		detector := patchdetect.New(
			patchdetect.WithExclusions(nil),
			patchdetect.WithWallsOnly(true),
		)

		Convey("When detecting", func() {
			found := detector.Detect(available, []string{"model"})

			Convey("Then only the wall patch is returned", func() {
				So(found, ShouldHaveLength, 1)
				So(found[0].Name, ShouldEqual, "model_wall")
			})
		})
	})
}

func TestDetectThreshold(t *testing.T) {
	Convey("Given a detector with a raised threshold", t, func() {
		detector := patchdetect.New(
			patchdetect.WithExclusions(nil),
			patchdetect.WithMinConfidence(0.95),
		)

		Convey("When a substring match scores below the threshold", func() {
			found := detector.Detect(patches("model_wall"), []string{"model"})

			Convey("Then it is dropped", func() {
				So(found, ShouldBeEmpty)
			})
		})

		Convey("When an exact match scores above it", func() {
			found := detector.Detect(patches("model"), []string{"model"})

			Convey("Then it is kept", func() {
				So(found, ShouldHaveLength, 1)
			})
		})
	})
}
