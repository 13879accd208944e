// Package naming holds the deterministic resource-name and label functions
// for standalone Flink clusters. Names are pure functions of the cluster id
// so lookups stay idempotent across reconciliation passes.
package naming

import (
	"github.com/Grypse/flink-kubernetes-operator/internal/constants"
)

// JobManagerStatefulSetName returns the job-manager workload name for a
// cluster. The cluster id is used unchanged so the stable network identity
// of the cluster is derivable from its id alone.
func JobManagerStatefulSetName(clusterID string) string {
	return clusterID
}

// TaskManagerStatefulSetName returns the task-manager workload name for a cluster.
func TaskManagerStatefulSetName(clusterID string) string {
	return clusterID + constants.SuffixTaskManager
}

// InternalServiceName returns the headless service name fronting the
// job-manager RPC endpoints.
func InternalServiceName(clusterID string) string {
	return clusterID
}

// RestServiceName returns the name of the REST endpoint service.
func RestServiceName(clusterID string) string {
	return clusterID + constants.SuffixRestService
}

// FlinkConfConfigMapName returns the name of the ConfigMap carrying
// flink-conf.yaml and the logging configuration.
func FlinkConfConfigMapName(clusterID string) string {
	return constants.SuffixConfigMapPrefix + clusterID
}

// JobManagerSelectorLabels returns the selector labels for job-manager pods.
func JobManagerSelectorLabels(clusterID string) map[string]string {
	return map[string]string{
		constants.LabelApp:       clusterID,
		constants.LabelComponent: constants.LabelValueComponentJobManager,
	}
}

// TaskManagerSelectorLabels returns the selector labels for task-manager pods.
func TaskManagerSelectorLabels(clusterID string) map[string]string {
	return map[string]string{
		constants.LabelApp:       clusterID,
		constants.LabelComponent: constants.LabelValueComponentTaskManager,
	}
}

// HAConfigMapLabels returns the labels Flink puts on its high-availability
// ConfigMaps, used to purge HA metadata on cluster deletion.
func HAConfigMapLabels(clusterID string) map[string]string {
	return map[string]string{
		constants.LabelApp:           clusterID,
		constants.LabelConfigMapType: constants.LabelValueConfigMapTypeHA,
	}
}
