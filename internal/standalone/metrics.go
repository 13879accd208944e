package standalone

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	scaleTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Name:      "standalone_scale_total",
			Help:      "Total number of reactive scale evaluations by outcome",
		},
		[]string{"namespace", "name", "outcome"},
	)

	deleteTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Name:      "standalone_delete_total",
			Help:      "Total number of cluster deployment deletions",
		},
		[]string{"namespace", "name"},
	)
)

// Scale outcomes reported on the scale counter.
const (
	scaleOutcomeApplied     = "applied"
	scaleOutcomeNoop        = "noop"
	scaleOutcomeNotReactive = "not_reactive"
	scaleOutcomeNoJob       = "no_job"
	scaleOutcomeNotFound    = "not_found"
)

func init() {
	metrics.Registry.MustRegister(
		scaleTotal,
		deleteTotal,
	)
}
