package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "caseforge"

const (
	outcomeMapped         = "mapped"
	outcomeMissingField   = "missing_field"
	outcomeMalformedValue = "malformed_value"
	outcomeOther          = "rejected"
)

// Metrics holds the run counters exported in Prometheus text format. A nil
// *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	records      *prometheus.CounterVec
	flushes      prometheus.Counter
	nodes        prometheus.Counter
	batchRecords prometheus.Histogram
}

// NewMetrics creates the run metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_total",
			Help:      "Input records by outcome.",
		}, []string{"outcome"}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "flushes_total",
			Help:      "Batches written to the sink.",
		}),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "nodes_total",
			Help:      "Graph nodes written, embedded nodes included.",
		}),
		batchRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "batch_records",
			Help:      "Records per flushed batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 10, 6),
		}),
	}
	m.registry.MustRegister(m.records, m.flushes, m.nodes, m.batchRecords)
	return m
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics to path in the node_exporter textfile
// format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) recordMapped() {
	if m == nil {
		return
	}
	m.records.WithLabelValues(outcomeMapped).Inc()
}

func (m *Metrics) recordRejected(outcome string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordFlush(records, nodes int) {
	if m == nil {
		return
	}
	m.flushes.Inc()
	m.nodes.Add(float64(nodes))
	m.batchRecords.Observe(float64(records))
}
