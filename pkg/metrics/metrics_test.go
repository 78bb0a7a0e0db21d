package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(WithPrometheusRegistry(registry))

			Convey("Then defaults are applied", func() {
				So(m.namespace, ShouldEqual, "heatsheet")
				So(m.subsystem, ShouldEqual, "schedule")
				So(m.histogramBuckets, ShouldResemble, latencyBuckets)
				So(m.ConstLabels(), ShouldBeEmpty)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithNamespace("meet"),
				WithSubsystem("pool"),
				WithMetricPrefix("test"),
				WithLatencyBuckets([]float64{1, 10, 100}),
				WithMeet("spring-open"),
				WithConstLabels(map[string]string{"env": "test", "zone": ""}),
				WithPrometheusRegistry(registry),
			)
			m.projectionsTotal.Inc()

			Convey("Then metric names carry the namespace and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found *dto.MetricFamily
				for _, f := range families {
					if f.GetName() == "meet_pool_test_projections_total" {
						found = f
					}
				}
				So(found, ShouldNotBeNil)

				labels := map[string]string{}
				for _, l := range found.GetMetric()[0].GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				So(labels, ShouldResemble, map[string]string{"meet": "spring-open", "env": "test"})
				So(m.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})
		})

		Convey("When ignoring invalid option values", func() {
			m := NewManager(
				WithPrometheusRegistry(prometheus.NewRegistry()),
				WithNamespace(""),
				WithLatencyBuckets(nil),
				WithMeet(""),
			)

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "heatsheet")
				So(m.histogramBuckets, ShouldResemble, latencyBuckets)
				So(m.ConstLabels(), ShouldBeEmpty)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager reconfigured for a meet", t, func() {
		previous, previousRegistry := globalManager, customRegistry
		defer func() { globalManager, customRegistry = previous, previousRegistry }()

		Configure(WithMeet("spring-open"))
		RecordProjection(2)

		Convey("Then the new registry carries the meet label", func() {
			So(GetRegistry() != previousRegistry, ShouldBeTrue)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeEmpty)
			for _, f := range families {
				for _, metric := range f.GetMetric() {
					var meet string
					for _, l := range metric.GetLabel() {
						if l.GetName() == "meet" {
							meet = l.GetValue()
						}
					}
					So(meet, ShouldEqual, "spring-open")
				}
			}
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When schedule metrics are recorded", func() {
			before := value(globalManager.projectionsTotal)
			RecordProjection(1.5)
			UpdateHeatsLoaded(42)
			UpdateOverrideCount(3)

			Convey("Then the values are visible", func() {
				So(value(globalManager.projectionsTotal), ShouldEqual, before+1)
				So(value(globalManager.heatsLoaded), ShouldEqual, 42)
				So(value(globalManager.overrideCount), ShouldEqual, 3)
			})
		})

		Convey("When queue metrics are recorded", func() {
			UpdateQueueSize(7)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(0.7)
			dropped := value(globalManager.queueEnqueueErrors)
			RecordQueueEnqueueError()

			Convey("Then gauges and counters move", func() {
				So(value(globalManager.queueSize), ShouldEqual, 7)
				So(value(globalManager.queueCapacity), ShouldEqual, 10)
				So(value(globalManager.queueEnqueueErrors), ShouldEqual, dropped+1)
			})
		})

		Convey("When remaining recorders are called", func() {
			So(func() {
				RecordRosterLoad()
				RecordRosterError()
				RecordOverrideSet()
				RecordOverrideCleared(2)
				UpdateStoreRecords(5)
				RecordStoreWriteLatency(0.3)
				RecordStoreError()
				RecordQueueEnqueue()
				RecordQueueDequeue()
				UpdateWorkerCount(2)
				UpdateWorkerActiveCount(1)
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordHTTPRequest("/schedule", "GET", "200")
				RecordHTTPRequestDuration("/schedule", "GET", "200", 3)
				RecordErrorByComponent("service", "roster")
				RecordErrorByEndpoint("/roster", "POST", "bad_request")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("The custom registry is exposed", func() {
			So(GetRegistry(), ShouldEqual, customRegistry)
		})
	})
}

func TestSince(t *testing.T) {
	Convey("Since reports elapsed milliseconds", t, func() {
		So(Since(time.Now().Add(-10*time.Millisecond)), ShouldBeGreaterThanOrEqualTo, 10)
	})
}

func value(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return -1
	}
	if c := out.GetCounter(); c != nil {
		return c.GetValue()
	}
	return out.GetGauge().GetValue()
}
