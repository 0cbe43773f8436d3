package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/foamperf/internal/adapters/history"
	"github.com/okian/foamperf/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHistoryStore(t *testing.T) {
	Convey("Given an open history store", t, func() {
		path := filepath.Join(t.TempDir(), "history.db")
		store, err := history.Open(path)
		So(err, ShouldBeNil)
		defer store.Close()

		ctx := context.Background()
		metrics := make(model.MetricSet)
		metrics.Set("thrust", 100, "N")
		metrics.SetNull("efficiency", "-", "power is zero or negative")

		Convey("When saving an analysis without an ID", func() {
			saved, err := store.Save(ctx, history.Record{
				RunDir:    "/runs/prop-001",
				Domain:    model.DomainPropeller,
				Method:    model.ReduceAverage,
				TimeStart: 0.1,
				TimeEnd:   2.0,
				Samples:   200,
				Metrics:   metrics,
			})

			Convey("Then a ULID and timestamp are filled in", func() {
				So(err, ShouldBeNil)
				So(saved.ID, ShouldNotBeEmpty)
				So(saved.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And listing the run returns it with intact metrics", func() {
				So(err, ShouldBeNil)
				records, err := store.List(ctx, "/runs/prop-001", 10)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 1)

				rec := records[0]
				So(rec.Domain, ShouldEqual, model.DomainPropeller)
				So(rec.Samples, ShouldEqual, 200)
				So(*rec.Metrics["thrust"].Value, ShouldAlmostEqual, 100)
				So(rec.Metrics["efficiency"].Value, ShouldBeNil)
				So(rec.Metrics["efficiency"].Note, ShouldNotBeEmpty)
			})
		})

		Convey("When saving several analyses for one run", func() {
			for i := 0; i < 3; i++ {
				_, err := store.Save(ctx, history.Record{
					RunDir:  "/runs/prop-002",
					Domain:  model.DomainPropeller,
					Method:  model.ReduceLatest,
					Samples: 1,
					Metrics: metrics,
				})
				So(err, ShouldBeNil)
			}

			Convey("Then listing honors the limit, newest first", func() {
				records, err := store.List(ctx, "/runs/prop-002", 2)
				So(err, ShouldBeNil)
				So(records, ShouldHaveLength, 2)
				So(records[0].ID, ShouldBeGreaterThan, records[1].ID)
			})

			Convey("And other runs are not mixed in", func() {
				records, err := store.List(ctx, "/runs/other", 10)
				So(err, ShouldBeNil)
				So(records, ShouldBeEmpty)
			})
		})
	})
}
