// Package metrics exports query cache instrumentation to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-sitecontent/internal/query"
)

const namespace = "sitecontent"

// Recorder implements query.Recorder on a private registry so several
// modules can live in one process.
type Recorder struct {
	registry *prometheus.Registry

	fetches   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	inflight  *prometheus.GaugeVec
	retries   *prometheus.CounterVec
	dedup     *prometheus.CounterVec
	cacheHits *prometheus.CounterVec

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
}

var _ query.Recorder = (*Recorder)(nil)

// NewRecorder registers the query collectors plus Go runtime collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_total",
			Help:      "Completed fetches by resource and outcome",
		}, []string{"resource", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_duration_seconds",
			Help:      "Fetch latency including retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"resource"}),
		inflight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetches_in_flight",
			Help:      "Fetches currently running",
		}, []string{"resource"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "retries_total",
			Help:      "Retry attempts after a failed fetch",
		}, []string{"resource"}),
		dedup: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "dedup_total",
			Help:      "Requests that joined a fetch already in flight",
		}, []string{"resource"}),
		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "cache_hits_total",
			Help:      "Requests served from fresh cached data",
		}, []string{"resource"}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "executions_total",
			Help:      "Command executions by message type and outcome",
		}, []string{"command", "status"}),
		commandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Command execution latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

func (r *Recorder) FetchStarted(key query.Key) {
	r.inflight.WithLabelValues(key.Root()).Inc()
}

func (r *Recorder) FetchFinished(key query.Key, outcome string, elapsed time.Duration) {
	resource := key.Root()
	r.inflight.WithLabelValues(resource).Dec()
	r.fetches.WithLabelValues(resource, outcome).Inc()
	r.duration.WithLabelValues(resource).Observe(elapsed.Seconds())
}

func (r *Recorder) Retry(key query.Key, _ int, _ time.Duration) {
	r.retries.WithLabelValues(key.Root()).Inc()
}

func (r *Recorder) Deduplicated(key query.Key) {
	r.dedup.WithLabelValues(key.Root()).Inc()
}

func (r *Recorder) CacheHit(key query.Key) {
	r.cacheHits.WithLabelValues(key.Root()).Inc()
}

// CommandFinished records one command outcome.
func (r *Recorder) CommandFinished(command, status string, elapsed time.Duration) {
	r.commands.WithLabelValues(command, status).Inc()
	r.commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
