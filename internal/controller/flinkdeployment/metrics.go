/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package flinkdeployment

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
)

var (
	reconcileDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flink_operator",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation loops in seconds",
			// Buckets chosen to capture fast reconciles and longer tail up to 60s.
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"namespace", "name"},
	)

	reconcileErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flink_operator",
			Name:      "reconcile_errors_total",
			Help:      "Total number of reconciliation errors",
		},
		[]string{"namespace", "name", "reason"},
	)
)

// Error reasons reported on the reconcile error counter.
const (
	errorReasonConfiguration    = "configuration"
	errorReasonDeploymentFailed = "deployment_failed"
	errorReasonTransient        = "transient"
	errorReasonUnknown          = "unknown"
)

func init() {
	metrics.Registry.MustRegister(
		reconcileDurationHistogram,
		reconcileErrorsTotal,
	)
}

func observeReconcileDuration(namespace, name string, start time.Time) {
	reconcileDurationHistogram.WithLabelValues(namespace, name).Observe(time.Since(start).Seconds())
}

func errorReason(err error) string {
	switch {
	case operatorerrors.IsConfiguration(err):
		return errorReasonConfiguration
	case operatorerrors.IsDeploymentFailed(err):
		return errorReasonDeploymentFailed
	case operatorerrors.IsTransientKubernetesAPI(err):
		return errorReasonTransient
	default:
		return errorReasonUnknown
	}
}
