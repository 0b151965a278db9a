package docbind

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/docbind/internal/metrics"
)

// MetricsCollectors returns the Prometheus collectors maintained by the
// engine: resolution outcomes, factory evaluations and skipped object fields.
func MetricsCollectors() []prometheus.Collector { return metrics.Collectors() }

// RegisterMetrics registers MetricsCollectors with r. Collectors that are
// already registered are ignored.
func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
