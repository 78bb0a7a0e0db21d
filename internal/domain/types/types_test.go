package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	types "github.com/okian/heatsheet/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewHeatEntry(t *testing.T) {
	Convey("Given a projected heat", t, func() {
		date := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
		p := model.Projected{
			Heat: model.Heat{
				Event: 7, Index: 2, Count: 3, AgeGroup: "11-12", Gender: "M",
				EventName: "100 Free", DayKey: "d1", DayLabel: "Day 1", EstimatedSeconds: 72.5,
			},
			ScheduledStart: clock.Of(9, 10, 0),
			ScheduledEnd:   clock.Of(9, 11, 12),
		}

		Convey("When it has no operator end", func() {
			e := types.NewHeatEntry(p, date)

			Convey("Then times are rendered from the schedule", func() {
				So(e.Heat, ShouldEqual, 2)
				So(e.HeatCount, ShouldEqual, 3)
				So(e.Estimated, ShouldEqual, "01:12.50")
				So(e.ActualEnd, ShouldBeNil)
				So(e.StartAt, ShouldEqual, time.Date(2025, 9, 19, 9, 10, 0, 0, time.UTC))
				So(e.EndAt, ShouldEqual, time.Date(2025, 9, 19, 9, 11, 12, 0, time.UTC))
			})

			Convey("And the JSON omits actual_end", func() {
				b, err := json.Marshal(e)
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"scheduled_start":"09:10:00"`)
				So(string(b), ShouldNotContainSubstring, "actual_end")
			})
		})

		Convey("When the operator recorded an end", func() {
			p.ActualEnd = model.Manual(clock.Of(9, 12, 0))
			e := types.NewHeatEntry(p, date)

			Convey("Then the end follows the operator", func() {
				So(*e.ActualEnd, ShouldEqual, clock.Of(9, 12, 0))
				So(e.EndAt, ShouldEqual, time.Date(2025, 9, 19, 9, 12, 0, 0, time.UTC))
			})
		})
	})
}
