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

	"golang.org/x/time/rate"
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/client-go/util/workqueue"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/controller"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
	"github.com/Grypse/flink-kubernetes-operator/internal/standalone"
)

// SetupWithManager sets up the FlinkDeployment controller with the Manager.
// The workqueue combines per-item exponential backoff with an overall
// bucket limiter so a flapping cluster cannot starve the queue.
func (r *FlinkDeploymentReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if r.Service == nil {
		r.Service = standalone.NewService(mgr.GetClient())
	}

	return ctrl.NewControllerManagedBy(mgr).
		For(&flinkv1alpha1.FlinkDeployment{}, builder.WithPredicates(FlinkDeploymentPredicate())).
		Owns(&appsv1.StatefulSet{}).
		Named("flinkdeployment").
		WithOptions(controller.Options{
			RateLimiter: workqueue.NewTypedMaxOfRateLimiter(
				workqueue.NewTypedItemExponentialFailureRateLimiter[ctrl.Request](1*time.Second, 60*time.Second),
				&workqueue.TypedBucketRateLimiter[ctrl.Request]{Limiter: rate.NewLimiter(rate.Limit(10), 100)},
			),
		}).
		Complete(r)
}
