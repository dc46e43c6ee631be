package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

var (
	once          sync.Once
	metricsRouter *chi.Mux

	// Collectors exist before Init so that packages can record without a
	// running metrics server, as they do in tests.
	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)
	flowDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "threshold_flow_duration_seconds",
			Help:    "Histogram of threshold operation flow durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"action", "role", "outcome"},
	)
	eventsReceivedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_events_total",
			Help: "Number of domain events handled by the dispatcher.",
		},
		[]string{"kind"},
	)
	eventsDroppedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monitor_events_dropped_total",
			Help: "Number of ledger events dropped by monitors.",
		},
		[]string{"monitor", "reason"},
	)
	correlationRecordsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatcher_correlation_records",
			Help: "Number of in-memory correlation records per list.",
		},
		[]string{"list"},
	)
	withdrawUnbondedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatcher_withdraw_unbonded_amount",
			Help: "Funds withdrawn on the relay chain but not yet returned to unstakers.",
		},
	)
)

// Init registers the collectors and serves them on addr under path.
func Init(addr, path string) {
	once.Do(func() {
		registerMetrics()
		initMetricsRouter(addr, path)
	})
}

func initMetricsRouter(addr, path string) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Handle(path, promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, metricsRouter); err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", addr)
		}
	}()
}

// registerMetrics register the Prometheus metrics.
func registerMetrics() {
	prometheus.MustRegister(
		httpRequestDurationHistogram,
		flowDurationHistogram,
		eventsReceivedCounter,
		eventsDroppedCounter,
		correlationRecordsGauge,
		withdrawUnbondedGauge,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

// StartFlowDurationTimer starts a timer for one threshold operation flow.
func StartFlowDurationTimer(action, role string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		duration := time.Since(startTime).Seconds()
		flowDurationHistogram.WithLabelValues(action, role, outcome.String()).Observe(duration)
	}
}

func RecordEventReceived(kind string) {
	eventsReceivedCounter.WithLabelValues(kind).Inc()
}

func RecordEventDropped(monitor, reason string) {
	eventsDroppedCounter.WithLabelValues(monitor, reason).Inc()
}

func SetCorrelationRecords(list string, count int) {
	correlationRecordsGauge.WithLabelValues(list).Set(float64(count))
}

func SetWithdrawUnbonded(amount float64) {
	withdrawUnbondedGauge.Set(amount)
}
