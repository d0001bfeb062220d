// Package metrics exposes the Prometheus instruments named in
// SPEC_FULL.md §10: global convergence and active agent gauges, per-file
// best-quality gauges, and counters for deposits, reinforcements,
// evaporation cycles, and scaling decisions. Grounded on the teacher's
// engine/infra/monitoring package, simplified to a direct
// prometheus/client_golang registry since the OpenTelemetry/Gin/Temporal
// exporter chain it wraps has no counterpart in this engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the instrument set an orchestrator run reports into.
// A nil *Recorder is safe to call methods on; every method is a no-op.
type Recorder struct {
	registry *prometheus.Registry

	globalConvergence prometheus.Gauge
	activeAgents      prometheus.Gauge
	fileQuality       *prometheus.GaugeVec

	deposits     prometheus.Counter
	reinforced   prometheus.Counter
	evaporations prometheus.Counter
	scaleUps     prometheus.Counter
	scaleDowns   prometheus.Counter
}

// New builds a Recorder registered on a fresh registry, mirroring the
// teacher's convention of one dedicated prometheus.Registry per service
// rather than the global default registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		globalConvergence: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "antforge",
			Name:      "global_convergence",
			Help:      "Fraction of files that are solid or better, weighted per CalculateGlobalConvergence.",
		}),
		activeAgents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "antforge",
			Name:      "active_agents",
			Help:      "Number of agents currently registered with the hive.",
		}),
		fileQuality: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "antforge",
			Name:      "file_best_quality",
			Help:      "Best solution quality score per file slot.",
		}, []string{"file_path"}),
		deposits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "antforge",
			Name:      "deposits_total",
			Help:      "Total solution deposits accepted by the hive.",
		}),
		reinforced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "antforge",
			Name:      "reinforcements_total",
			Help:      "Total deposits that reinforced an existing pheromone instead of creating a new one.",
		}),
		evaporations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "antforge",
			Name:      "evaporation_cycles_total",
			Help:      "Total evaporation cycles run.",
		}),
		scaleUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "antforge",
			Name:      "scale_up_total",
			Help:      "Total scale-up decisions made by the orchestrator.",
		}),
		scaleDowns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "antforge",
			Name:      "scale_down_total",
			Help:      "Total scale-down decisions made by the orchestrator.",
		}),
	}
	reg.MustRegister(
		r.globalConvergence, r.activeAgents, r.fileQuality,
		r.deposits, r.reinforced, r.evaporations, r.scaleUps, r.scaleDowns,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) SetGlobalConvergence(v float64) {
	if r == nil {
		return
	}
	r.globalConvergence.Set(v)
}

func (r *Recorder) SetActiveAgents(n int) {
	if r == nil {
		return
	}
	r.activeAgents.Set(float64(n))
}

func (r *Recorder) SetFileQuality(filePath string, quality float64) {
	if r == nil {
		return
	}
	r.fileQuality.WithLabelValues(filePath).Set(quality)
}

func (r *Recorder) RecordDeposit(reinforced bool) {
	if r == nil {
		return
	}
	r.deposits.Inc()
	if reinforced {
		r.reinforced.Inc()
	}
}

func (r *Recorder) RecordEvaporation() {
	if r == nil {
		return
	}
	r.evaporations.Inc()
}

func (r *Recorder) RecordScaleUp() {
	if r == nil {
		return
	}
	r.scaleUps.Inc()
}

func (r *Recorder) RecordScaleDown() {
	if r == nil {
		return
	}
	r.scaleDowns.Inc()
}
