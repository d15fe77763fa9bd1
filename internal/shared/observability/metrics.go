package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one process. Use NewMetrics with a
// private registry so runs never share counters.
type Metrics struct {
	Registry *prometheus.Registry

	GrammarResults *prometheus.CounterVec
	NodeKinds      *prometheus.GaugeVec
	ProbeDuration  *prometheus.HistogramVec
	GenerateTotal  *prometheus.CounterVec
	WatchEvents    prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		GrammarResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grammarcheck_grammar_results_total",
			Help: "Validation outcomes per grammar, by status and failure reason.",
		}, []string{"status", "reason"}),

		NodeKinds: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "grammarcheck_grammar_node_kinds",
			Help: "Number of node kinds reported by each loaded grammar.",
		}, []string{"grammar"}),

		ProbeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grammarcheck_probe_seconds",
			Help:    "Time spent loading and probing a grammar.",
			Buckets: prometheus.DefBuckets,
		}, []string{"grammar"}),

		GenerateTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "grammarcheck_generate_total",
			Help: "Binding generator runs by result (written, unchanged, failed).",
		}, []string{"result"}),

		WatchEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "grammarcheck_watch_events_total",
			Help: "Filesystem events seen by the watch command.",
		}),
	}
}

// WriteTextfile writes the current metric values in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
