package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/heatsheet/internal/adapters/ingest"
	service "github.com/okian/heatsheet/internal/app"
	"github.com/okian/heatsheet/internal/domain/clock"
	"github.com/okian/heatsheet/internal/domain/model"
	"github.com/okian/heatsheet/internal/domain/types"
	"github.com/okian/heatsheet/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const roster = "項次,組次,年齡組,性別,比賽項目,姓名,單位,報名成績\n" +
	"1,1/2,10歲,男,50自由式,王小明,A隊,01:00\n" +
	"1,2/2,10歲,男,50自由式,李大同,B隊,\n" +
	"2,1/1,11歲,女,50蛙式,林二,C隊,00:30\n" +
	"3,1/1,12歲,女,400自由式,張三,D隊,\n"

var (
	h11 = model.HeatKey{Event: 1, Index: 1}
	h12 = model.HeatKey{Event: 1, Index: 2}
	h21 = model.HeatKey{Event: 2, Index: 1}
	h31 = model.HeatKey{Event: 3, Index: 1}
)

func starts(ps []model.Projected) map[model.HeatKey]clock.TimeOfDay {
	out := make(map[model.HeatKey]clock.TimeOfDay, len(ps))
	for _, p := range ps {
		out[p.Key()] = p.ScheduledStart
	}
	return out
}

func newStarted(opts ...service.Option) *service.Service {
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	_, err := svc.LoadRoster(context.Background(), "meet.csv", strings.NewReader(roster))
	So(err, ShouldBeNil)
	return svc
}

func TestServiceProjection(t *testing.T) {
	Convey("Given a started service with a roster", t, func() {
		ctx := context.Background()
		svc := newStarted()
		defer svc.Stop()

		Convey("Estimates follow own, sibling, then fallback", func() {
			heats := svc.Batch().Heats
			So(heats, ShouldHaveLength, 4)
			So(heats[0].EstimatedSeconds, ShouldEqual, 60)
			So(heats[1].EstimatedSeconds, ShouldEqual, 60)
			So(heats[2].EstimatedSeconds, ShouldEqual, 30)
			So(heats[3].EstimatedSeconds, ShouldEqual, 360)
		})

		Convey("The projection chains heats with turnover", func() {
			s := starts(svc.Projection(ctx, model.Filter{}))
			So(s[h11], ShouldEqual, clock.Of(9, 0, 0))
			So(s[h12], ShouldEqual, clock.Of(9, 1, 10))
			So(s[h21], ShouldEqual, clock.Of(9, 2, 20))
			So(s[h31], ShouldEqual, clock.Of(9, 3, 0))
		})

		Convey("An actual end ripples to later heats only", func() {
			end, err := svc.SetActualEnd(ctx, h11, "09:05")
			So(err, ShouldBeNil)
			So(end.At(), ShouldEqual, clock.Of(9, 5, 0))

			s := starts(svc.Projection(ctx, model.Filter{}))
			So(s[h11], ShouldEqual, clock.Of(9, 0, 0))
			So(s[h12], ShouldEqual, clock.Of(9, 5, 10))
			So(s[h21], ShouldEqual, clock.Of(9, 6, 20))

			Convey("and clearing it restores the estimate", func() {
				_, err := svc.SetActualEnd(ctx, h11, "")
				So(err, ShouldBeNil)
				So(starts(svc.Projection(ctx, model.Filter{}))[h12], ShouldEqual, clock.Of(9, 1, 10))
				So(svc.ActualEnds(), ShouldBeEmpty)
			})
		})

		Convey("A filter hides heats without moving the others", func() {
			_, err := svc.SetActualEnd(ctx, h11, "09:05")
			So(err, ShouldBeNil)
			shown := svc.Projection(ctx, model.Filter{Gender: "女"})
			So(shown, ShouldHaveLength, 2)
			So(shown[0].Key(), ShouldResemble, h21)
			So(shown[0].ScheduledStart, ShouldEqual, clock.Of(9, 6, 20))
		})

		Convey("An actual end inside lunch moves to lunch end", func() {
			end, err := svc.SetActualEnd(ctx, h31, "12:10")
			So(err, ShouldBeNil)
			So(end.At(), ShouldEqual, clock.Of(13, 30, 0))
		})

		Convey("Malformed times are rejected without changing state", func() {
			_, err := svc.SetActualEnd(ctx, h11, "9h05")
			So(errors.Is(err, service.ErrInvalidTime), ShouldBeTrue)
			So(svc.ActualEnds(), ShouldBeEmpty)
		})

		Convey("Unknown heats are rejected", func() {
			_, err := svc.SetActualEnd(ctx, model.HeatKey{Event: 7, Index: 1}, "10:00")
			So(errors.Is(err, service.ErrNotFound), ShouldBeTrue)
		})

		Convey("ClearActualEnds removes every end time", func() {
			_, _ = svc.SetActualEnd(ctx, h11, "09:05")
			_, _ = svc.SetActualEnd(ctx, h21, "09:10")
			n, err := svc.ClearActualEnds(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(svc.ActualEnds(), ShouldBeEmpty)
		})

		Convey("The board shows the running heat and the inspection heat", func() {
			b := svc.Board(ctx, "", clock.Of(9, 1, 30))
			So(b.Current, ShouldNotBeNil)
			So(b.Current.Key(), ShouldResemble, h12)
			So(b.Inspection, ShouldNotBeNil)
			So(b.Inspection.Key(), ShouldResemble, h31)
		})

		Convey("Filter options list the distinct values", func() {
			opts := svc.FilterOptions()
			So(opts.Genders, ShouldHaveLength, 2)
			So(opts.Days, ShouldHaveLength, 1)
			So(opts.Participants, ShouldHaveLength, 4)
		})

		Convey("Schedule config updates apply to the next projection", func() {
			err := svc.UpdateScheduleConfig(ctx, types.ScheduleConfig{
				TurnoverSeconds:         0,
				LunchStart:              "12:00",
				LunchEnd:                "13:30",
				FallbackDurationSeconds: 120,
			})
			So(err, ShouldBeNil)
			So(svc.ScheduleConfig().FallbackDurationSeconds, ShouldEqual, 120)
			So(svc.Batch().Heats[3].EstimatedSeconds, ShouldEqual, 120)
			So(starts(svc.Projection(ctx, model.Filter{}))[h12], ShouldEqual, clock.Of(9, 1, 0))
		})

		Convey("Invalid schedule configs are rejected", func() {
			err := svc.UpdateScheduleConfig(ctx, types.ScheduleConfig{
				LunchStart: "13:30", LunchEnd: "12:00", FallbackDurationSeconds: 60,
			})
			So(errors.Is(err, service.ErrInvalidSchedule), ShouldBeTrue)

			err = svc.UpdateScheduleConfig(ctx, types.ScheduleConfig{
				LunchStart: "noon", LunchEnd: "13:00", FallbackDurationSeconds: 60,
			})
			So(errors.Is(err, service.ErrInvalidSchedule), ShouldBeTrue)
			So(svc.ScheduleConfig().LunchStart, ShouldEqual, "12:00")
		})

		Convey("A bad upload keeps the previous batch", func() {
			before := svc.Batch()
			_, err := svc.LoadRoster(ctx, "meet.csv", strings.NewReader("nothing,here\n"))
			So(errors.Is(err, ingest.ErrNoHeaderRow), ShouldBeTrue)
			So(svc.Batch(), ShouldEqual, before)
		})

		Convey("Stats describe the batch", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, true)
			So(stats["heats"], ShouldEqual, 4)
			So(stats["source"], ShouldEqual, "meet.csv")
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a service that has not started", t, func() {
		svc := service.New(service.WithClock(func() time.Time { return time.Date(2025, 9, 19, 9, 0, 0, 0, time.UTC) }))

		Convey("Operator edits are refused", func() {
			_, err := svc.SetActualEnd(context.Background(), h11, "09:00")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.ClearActualEnds(context.Background())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("Projections are empty before a roster is loaded", func() {
			So(svc.Projection(context.Background(), model.Filter{}), ShouldBeEmpty)
			So(svc.Now().Hour(), ShouldEqual, 9)
		})

		Convey("Start and Stop are idempotent", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			So(svc.Start(context.Background()), ShouldBeNil)
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("Edits during a restart either land or are refused", func() {
			svc := newStarted()
			defer svc.Stop()
			ctx := context.Background()

			var wg sync.WaitGroup
			errs := make(chan error, 200)
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 25; j++ {
						if _, err := svc.SetActualEnd(ctx, h11, "09:05"); err != nil {
							errs <- err
						}
						if _, err := svc.ClearActualEnds(ctx); err != nil {
							errs <- err
						}
					}
				}()
			}
			for i := 0; i < 5; i++ {
				svc.Stop()
				So(svc.Start(ctx), ShouldBeNil)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			}
			_, err := svc.SetActualEnd(ctx, h11, "09:06")
			So(err, ShouldBeNil)
			So(svc.ActualEnds()[h11], ShouldEqual, clock.Of(9, 6, 0))
		})

		Convey("An unknown store driver fails Start", func() {
			bad := service.New(service.WithStore("postgres", ""))
			So(bad.Start(context.Background()), ShouldNotBeNil)
		})
	})
}
