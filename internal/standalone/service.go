// Package standalone implements the cluster lifecycle operations for
// standalone-mode Flink clusters: reactive scaling of the task-manager
// workload and full teardown of a cluster's resources. Both operations read
// live control-plane state before acting and are safe to retry.
package standalone

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/deployment"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
)

// Service performs lifecycle operations against deployed standalone
// clusters. The caller serializes operations per cluster id; Service itself
// holds no per-cluster state and never caches live objects across calls.
type Service struct {
	client client.Client
}

// NewService constructs a Service using the provided Kubernetes client.
func NewService(c client.Client) *Service {
	return &Service{client: c}
}

// Scale aligns the task-manager replica count with the job's desired
// parallelism. It reports whether the cluster is converged on the desired
// replica count: false when reactive scheduling is not configured or when
// the task-manager workload does not exist yet (the caller retries later),
// true when the live count already matches or was just updated. Only the
// replica field is written, so concurrent mutations of other fields by a
// separate reconciliation pass are never clobbered.
func (s *Service) Scale(ctx context.Context, logger logr.Logger, meta metav1.ObjectMeta, job *flinkv1alpha1.JobSpec, cfg config.Configuration) (bool, error) {
	clusterID := meta.Name

	if !cfg.ReactiveSchedulerEnabled() {
		logger.Info("Scheduler mode is not reactive, skipping scaling", "cluster", clusterID)
		scaleTotal.WithLabelValues(meta.Namespace, clusterID, scaleOutcomeNotReactive).Inc()
		return false, nil
	}
	if job == nil {
		logger.Info("No job configured, skipping scaling", "cluster", clusterID)
		scaleTotal.WithLabelValues(meta.Namespace, clusterID, scaleOutcomeNoJob).Inc()
		return false, nil
	}

	name := naming.TaskManagerStatefulSetName(clusterID)
	var statefulSet appsv1.StatefulSet
	if err := s.client.Get(ctx, types.NamespacedName{Namespace: meta.Namespace, Name: name}, &statefulSet); err != nil {
		if apierrors.IsNotFound(err) {
			logger.Info("Task manager StatefulSet not found, skipping scaling", "name", name)
			scaleTotal.WithLabelValues(meta.Namespace, clusterID, scaleOutcomeNotFound).Inc()
			return false, nil
		}
		return false, fmt.Errorf("failed to get task manager StatefulSet %s/%s: %w", meta.Namespace, name, err)
	}

	desired, err := deployment.ReplicasForParallelism(job.Parallelism, cfg)
	if err != nil {
		return false, err
	}

	// An unset replica field defaults to one on the platform side.
	current := int32(1)
	if statefulSet.Spec.Replicas != nil {
		current = *statefulSet.Spec.Replicas
	}

	if current == desired {
		scaleTotal.WithLabelValues(meta.Namespace, clusterID, scaleOutcomeNoop).Inc()
		return true, nil
	}

	logger.Info("Scaling task manager StatefulSet", "name", name, "from", current, "to", desired)
	patch := client.MergeFrom(statefulSet.DeepCopy())
	statefulSet.Spec.Replicas = &desired
	if err := s.client.Patch(ctx, &statefulSet, patch); err != nil {
		return false, fmt.Errorf("failed to scale task manager StatefulSet %s/%s: %w", meta.Namespace, name, err)
	}

	scaleTotal.WithLabelValues(meta.Namespace, clusterID, scaleOutcomeApplied).Inc()
	return true, nil
}

// DeleteClusterDeployment removes every workload resource belonging to the
// cluster and, when deleteHAData is set, the high-availability metadata
// stored in Kubernetes ConfigMaps. Absent resources are not errors, so the
// operation is idempotent and recoverable from partial completion.
func (s *Service) DeleteClusterDeployment(ctx context.Context, logger logr.Logger, meta metav1.ObjectMeta, status *flinkv1alpha1.FlinkDeploymentStatus, deleteHAData bool) error {
	clusterID := meta.Name

	names := []string{
		naming.JobManagerStatefulSetName(clusterID),
		naming.TaskManagerStatefulSetName(clusterID),
	}
	for _, name := range names {
		statefulSet := &appsv1.StatefulSet{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: meta.Namespace,
			},
		}
		if err := s.client.Delete(ctx, statefulSet); err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to delete StatefulSet %s/%s: %w", meta.Namespace, name, err)
		}
	}

	if deleteHAData {
		if err := s.deleteHAData(ctx, logger, meta); err != nil {
			return err
		}
	}

	logger.Info("Deleted cluster deployment", "cluster", clusterID, "deleteHAData", deleteHAData)
	deleteTotal.WithLabelValues(meta.Namespace, clusterID).Inc()

	if status != nil {
		status.JobManagerDeploymentStatus = flinkv1alpha1.JobManagerDeploymentStatusMissing
	}
	return nil
}

// deleteHAData removes the leader-election and checkpoint-pointer
// ConfigMaps Flink keeps for Kubernetes high availability. Omitting the
// purge leaves that metadata in place for a later resume.
func (s *Service) deleteHAData(ctx context.Context, logger logr.Logger, meta metav1.ObjectMeta) error {
	logger.Info("Deleting HA metadata", "cluster", meta.Name)
	err := s.client.DeleteAllOf(ctx, &corev1.ConfigMap{},
		client.InNamespace(meta.Namespace),
		client.MatchingLabels(naming.HAConfigMapLabels(meta.Name)),
	)
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete HA ConfigMaps for cluster %s/%s: %w", meta.Namespace, meta.Name, err)
	}
	return nil
}
