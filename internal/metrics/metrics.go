package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "docbind"

	resultLabel = "result"

	ResultHit         = "hit"
	ResultMiss        = "miss"
	ResultUnsupported = "unsupported"
)

var (
	// Resolutions counts adapter lookups by outcome. A miss is a successful
	// factory-chain walk; unsupported means no factory matched.
	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "adapter resolutions by cache outcome",
		}, []string{resultLabel})

	// FactoryEvaluations counts individual factory invocations during chain walks.
	FactoryEvaluations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "factory_evaluations_total",
			Help:      "factory invocations while walking the resolution chain",
		})

	// SkippedFields counts structured-object fields dropped because of access
	// failures or unknown keys.
	SkippedFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_fields_total",
			Help:      "object fields skipped while reading or writing",
		}, []string{"reason"})
)

// Collectors returns every collector of this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Resolutions, FactoryEvaluations, SkippedFields}
}

// Register registers the collectors with r, ignoring duplicates.
func Register(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}
