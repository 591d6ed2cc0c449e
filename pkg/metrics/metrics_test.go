package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it uses the jobscout namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "jobscout")
				So(manager.subsystem, ShouldEqual, "search")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("x"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithNetworkBuckets([]float64{100, 1000}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.sourceTasks.WithLabelValues("linkedin", "ok").Inc()

			Convey("Then metric names carry the namespace and prefix", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_x_source_tasks_total"], ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithLatencyBuckets(nil),
				WithNetworkBuckets([]float64{}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults survive", func() {
				So(manager.namespace, ShouldEqual, "jobscout")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.networkBuckets, ShouldResemble, defaultStrategyBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording source outcomes", func() {
			before := testutil.ToFloat64(globalManager.sourceTasks.WithLabelValues("pracuj", "empty"))
			RecordSourceTask("pracuj", "empty")
			RecordSourceTask("pracuj", "empty")

			Convey("Then the labelled counter moves", func() {
				after := testutil.ToFloat64(globalManager.sourceTasks.WithLabelValues("pracuj", "empty"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When recording a merge", func() {
			before := testutil.ToFloat64(globalManager.duplicatesCollapse)
			RecordMergeResult(10, 7)
			RecordMergeResult(3, 3)

			Convey("Then only collapsed postings are counted as duplicates", func() {
				So(testutil.ToFloat64(globalManager.duplicatesCollapse)-before, ShouldEqual, 3)
			})
		})

		Convey("When toggling active sessions", func() {
			before := testutil.ToFloat64(globalManager.activeSessions)
			AddActiveSessions(1)
			AddActiveSessions(1)
			AddActiveSessions(-1)

			Convey("Then the gauge reflects the net change", func() {
				So(testutil.ToFloat64(globalManager.activeSessions)-before, ShouldEqual, 1)
			})
		})

		Convey("When recording the score cache", func() {
			hits := testutil.ToFloat64(globalManager.scoreCacheHits)
			misses := testutil.ToFloat64(globalManager.scoreCacheMiss)
			RecordScoreCache(true)
			RecordScoreCache(false)
			RecordScoreCache(false)

			Convey("Then hits and misses are split", func() {
				So(testutil.ToFloat64(globalManager.scoreCacheHits)-hits, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.scoreCacheMiss)-misses, ShouldEqual, 2)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordSessionStatus("completed")
				RecordSessionDuration(2 * time.Second)
				RecordStrategyAttempt("linkedin", "guest-api", "ok", 300*time.Millisecond)
				RecordPostingsFetched("linkedin", 12)
				RecordRankedPostings(4)
				RecordScoringLatency(3)
				RecordMatchScore(72)
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(8)
				AddWorkerBusy(1)
				AddWorkerBusy(-1)
				RecordWorkerProcessingLatency(12)
				RecordWorkerError()
				RecordEventPublished("started")
				RecordEventDuplicate()
				RecordHTTPRequest("searches", "POST", "202")
				RecordHTTPRequestDuration("searches", "POST", "202", 4)
				RecordErrorByComponent("source", "timeout")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("searches", "GET", "not_found")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			families, err := GetRegistry().Gather()

			Convey("Then jobscout metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
