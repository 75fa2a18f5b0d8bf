package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Workflow counters for submission state transitions.
type Workflow struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	conflicts   prometheus.Counter
}

// NewWorkflow registers the workflow collectors on reg.
func NewWorkflow(reg prometheus.Registerer) *Workflow {
	factory := promauto.With(reg)
	return &Workflow{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fpms",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "submission state transitions by operation and resulting status",
		}, []string{"operation", "status"}),
		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fpms",
			Subsystem: "workflow",
			Name:      "rejections_total",
			Help:      "workflow operations refused by a domain rule",
		}, []string{"operation", "reason"}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fpms",
			Subsystem: "workflow",
			Name:      "write_conflicts_total",
			Help:      "optimistic write conflicts retried by the submission store",
		}),
	}
}

// Transition records a successful operation. Safe on a nil receiver.
func (w *Workflow) Transition(operation, status string) {
	if w == nil {
		return
	}
	w.transitions.WithLabelValues(operation, status).Inc()
}

// Rejection records a refused operation. Safe on a nil receiver.
func (w *Workflow) Rejection(operation, reason string) {
	if w == nil {
		return
	}
	w.rejections.WithLabelValues(operation, reason).Inc()
}

// Conflict records an optimistic write conflict. Safe on a nil receiver.
func (w *Workflow) Conflict() {
	if w == nil {
		return
	}
	w.conflicts.Inc()
}

// NewRegistry a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes reg over HTTP.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
