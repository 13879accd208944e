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

// Package flinkdeployment registers the controller that keeps standalone
// Flink clusters aligned with their FlinkDeployment resources. The
// controller is deliberately thin: it delegates composition to the
// deployment package and lifecycle mutations to the standalone service.
package flinkdeployment

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/config"
	"github.com/Grypse/flink-kubernetes-operator/internal/deployment"
	operatorerrors "github.com/Grypse/flink-kubernetes-operator/internal/errors"
	"github.com/Grypse/flink-kubernetes-operator/internal/kube"
	"github.com/Grypse/flink-kubernetes-operator/internal/naming"
	"github.com/Grypse/flink-kubernetes-operator/internal/standalone"
)

// FlinkDeploymentReconciler reconciles a FlinkDeployment object.
type FlinkDeploymentReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Service *standalone.Service
}

// +kubebuilder:rbac:groups=flink.apache.org,resources=flinkdeployments,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=flink.apache.org,resources=flinkdeployments/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=apps,resources=statefulsets,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=services;configmaps,verbs=get;list;watch;create;update;patch;delete

// Reconcile drives one FlinkDeployment toward its declared state: creating
// the cluster workloads when absent, scaling the task managers under
// reactive scheduling, and tearing everything down on deletion.
func (r *FlinkDeploymentReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	defer observeReconcileDuration(req.Namespace, req.Name, time.Now())

	logger := log.FromContext(ctx).WithValues(
		"cluster_namespace", req.Namespace,
		"cluster_name", req.Name,
	)

	dep := &flinkv1alpha1.FlinkDeployment{}
	if err := r.Get(ctx, req.NamespacedName, dep); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, fmt.Errorf("failed to get FlinkDeployment %s/%s: %w", req.Namespace, req.Name, err)
	}

	cfg := config.BuildFrom(dep)

	if !dep.DeletionTimestamp.IsZero() {
		return r.handleDeletion(ctx, logger, dep, cfg)
	}

	if dep.Spec.Mode != "" && dep.Spec.Mode != flinkv1alpha1.DeploymentModeStandalone {
		logger.Info("Deployment mode is not standalone, ignoring", "mode", dep.Spec.Mode)
		return ctrl.Result{}, nil
	}

	if !slices.Contains(dep.Finalizers, flinkv1alpha1.FlinkDeploymentFinalizer) {
		dep.Finalizers = append(dep.Finalizers, flinkv1alpha1.FlinkDeploymentFinalizer)
		if err := r.Update(ctx, dep); err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to add finalizer: %w", err)
		}
	}

	if err := r.reconcileCluster(ctx, logger, dep, cfg); err != nil {
		reconcileErrorsTotal.WithLabelValues(req.Namespace, req.Name, errorReason(err)).Inc()
		requeue, after := operatorerrors.ShouldRequeue(err)
		if !requeue {
			logger.Error(err, "Deployment cannot proceed without a spec change")
			dep.Status.JobManagerDeploymentStatus = flinkv1alpha1.JobManagerDeploymentStatusError
			dep.Status.Error = err.Error()
			if statusErr := r.Status().Update(ctx, dep); statusErr != nil {
				logger.Error(statusErr, "Failed to record deployment error")
			}
			return ctrl.Result{}, nil
		}
		if after > 0 {
			// controller-runtime discards the Result when an error is
			// returned alongside it, so the fixed delay goes back alone.
			logger.Error(err, "Transient failure, retrying", "after", after)
			return ctrl.Result{RequeueAfter: after}, nil
		}
		return ctrl.Result{}, err
	}

	return ctrl.Result{}, nil
}

// reconcileCluster creates the cluster workloads when they are missing and
// otherwise applies reactive scaling for the running job.
func (r *FlinkDeploymentReconciler) reconcileCluster(ctx context.Context, logger logr.Logger, dep *flinkv1alpha1.FlinkDeployment, cfg config.Configuration) error {
	var jmStatefulSet appsv1.StatefulSet
	err := r.Get(ctx, types.NamespacedName{
		Namespace: dep.Namespace,
		Name:      naming.JobManagerStatefulSetName(dep.Name),
	}, &jmStatefulSet)
	switch {
	case apierrors.IsNotFound(err):
		return r.deployCluster(ctx, logger, dep, cfg)
	case err != nil:
		return fmt.Errorf("failed to get job manager StatefulSet: %w", err)
	}

	if err := r.checkClusterHealth(ctx, dep); err != nil {
		return err
	}

	if _, err := r.Service.Scale(ctx, logger, dep.ObjectMeta, dep.Spec.Job, cfg); err != nil {
		return err
	}
	return nil
}

// nonRecoverableWaitReasons are container waiting reasons that indicate the
// deployment will not become ready without a spec change.
var nonRecoverableWaitReasons = map[string]struct{}{
	"CrashLoopBackOff":           {},
	"ImagePullBackOff":           {},
	"ErrImagePull":               {},
	"CreateContainerConfigError": {},
}

// checkClusterHealth inspects the job-manager pods for terminal container
// failures and surfaces them as a deployment failure carrying the
// platform's message and reason.
func (r *FlinkDeploymentReconciler) checkClusterHealth(ctx context.Context, dep *flinkv1alpha1.FlinkDeployment) error {
	var pods corev1.PodList
	err := r.List(ctx, &pods,
		client.InNamespace(dep.Namespace),
		client.MatchingLabels(naming.JobManagerSelectorLabels(dep.Name)),
	)
	if err != nil {
		return fmt.Errorf("failed to list job manager pods: %w", err)
	}

	for i := range pods.Items {
		for _, cs := range pods.Items[i].Status.ContainerStatuses {
			if cs.State.Waiting == nil {
				continue
			}
			if _, terminal := nonRecoverableWaitReasons[cs.State.Waiting.Reason]; terminal {
				return operatorerrors.DeploymentFailedFromContainerWaiting(*cs.State.Waiting)
			}
		}
	}
	return nil
}

func (r *FlinkDeploymentReconciler) deployCluster(ctx context.Context, logger logr.Logger, dep *flinkv1alpha1.FlinkDeployment, cfg config.Configuration) error {
	logger.Info("Deploying standalone cluster")

	jmParams, err := deployment.NewJobManagerParameters(dep, cfg)
	if err != nil {
		return err
	}
	spec, err := deployment.BuildJobManagerDeploymentSpec(deployment.NewPodTemplate(), nil, jmParams)
	if err != nil {
		return err
	}
	if err := kube.DeployJobManagerSpec(ctx, r.Client, spec); err != nil {
		return err
	}

	tmParams, err := deployment.NewTaskManagerParameters(dep, cfg)
	if err != nil {
		return err
	}
	if err := kube.CreateOrReplace(ctx, r.Client, deployment.BuildTaskManagerStatefulSet(tmParams)); err != nil {
		return err
	}

	dep.Status.JobManagerDeploymentStatus = flinkv1alpha1.JobManagerDeploymentStatusDeploying
	dep.Status.Error = ""
	if err := r.Status().Update(ctx, dep); err != nil {
		return fmt.Errorf("failed to update FlinkDeployment status: %w", err)
	}
	return nil
}

func (r *FlinkDeploymentReconciler) handleDeletion(ctx context.Context, logger logr.Logger, dep *flinkv1alpha1.FlinkDeployment, cfg config.Configuration) (ctrl.Result, error) {
	if !slices.Contains(dep.Finalizers, flinkv1alpha1.FlinkDeploymentFinalizer) {
		return ctrl.Result{}, nil
	}

	logger.Info("FlinkDeployment is marked for deletion")
	deleteHAData := cfg.KubernetesHAEnabled()
	if err := r.Service.DeleteClusterDeployment(ctx, logger, dep.ObjectMeta, &dep.Status, deleteHAData); err != nil {
		return ctrl.Result{}, err
	}

	dep.Finalizers = slices.DeleteFunc(dep.Finalizers, func(f string) bool {
		return f == flinkv1alpha1.FlinkDeploymentFinalizer
	})
	if err := r.Update(ctx, dep); err != nil {
		return ctrl.Result{}, fmt.Errorf("failed to remove finalizer: %w", err)
	}
	return ctrl.Result{}, nil
}
