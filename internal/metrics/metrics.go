package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"db-retain/internal/schema"
)

// Recorder holds the retention metrics on a private registry, so repeated
// runs in one process (scheduled mode) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	tables        *prometheus.CounterVec
	stmtDuration  *prometheus.HistogramVec
	lastRun       prometheus.Gauge
	lastRunTables *prometheus.GaugeVec
}

// NewRecorder creates a Recorder. Every action label is pre-created at zero.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	r := &Recorder{
		registry: registry,

		tables: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_retain_tables_total",
				Help: "Total number of tables processed, by action",
			},
			[]string{"action", "dry_run"},
		),

		stmtDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_retain_statement_duration_seconds",
				Help:    "Time spent deciding and running the statement for one table",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
			},
			[]string{"action"},
		),

		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_retain_last_run_timestamp_seconds",
				Help: "Unix time the last retention run finished",
			},
		),

		lastRunTables: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "db_retain_last_run_tables",
				Help: "Tables per action in the last retention run",
			},
			[]string{"action"},
		),
	}

	for _, a := range schema.AllActions {
		for _, dry := range []bool{true, false} {
			r.tables.WithLabelValues(a.String(), strconv.FormatBool(dry))
		}
		r.lastRunTables.WithLabelValues(a.String())
	}
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one table outcome.
func (r *Recorder) Observe(rec schema.OutcomeRecord, dryRun bool) {
	action := rec.Action.String()
	r.tables.WithLabelValues(action, strconv.FormatBool(dryRun)).Inc()
	r.stmtDuration.WithLabelValues(action).Observe(rec.Duration.Seconds())
}

// RunFinished stamps the end of a run with its per-action counts.
func (r *Recorder) RunFinished(at time.Time, counts map[schema.ActionKind]int) {
	r.lastRun.Set(float64(at.Unix()))
	for _, a := range schema.AllActions {
		r.lastRunTables.WithLabelValues(a.String()).Set(float64(counts[a]))
	}
}

// WriteTextfile writes all metrics in the text exposition format for the
// node exporter textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
