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
	"k8s.io/apimachinery/pkg/api/equality"
	"sigs.k8s.io/controller-runtime/pkg/event"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	flinkv1alpha1 "github.com/Grypse/flink-kubernetes-operator/api/v1alpha1"
)

// FlinkDeploymentPredicate filters FlinkDeployment events to only reconcile
// on meaningful changes. Status-only updates are filtered out: the
// controller writes status from observed state and must not wake itself up
// in response.
//
// The predicate allows reconciliation when:
//   - The resource is created or deleted
//   - The Spec changes (detected via Generation change)
//   - DeletionTimestamp changes (triggers deletion handling)
//   - Finalizers change (triggers finalizer handling)
//   - Metadata labels or annotations change (may affect behavior)
func FlinkDeploymentPredicate() predicate.Predicate {
	return predicate.Funcs{
		CreateFunc: func(e event.CreateEvent) bool {
			return true
		},
		DeleteFunc: func(e event.DeleteEvent) bool {
			return true
		},
		UpdateFunc: func(e event.UpdateEvent) bool {
			oldDep, ok := e.ObjectOld.(*flinkv1alpha1.FlinkDeployment)
			if !ok {
				return true // If type assertion fails, allow reconciliation to be safe
			}
			newDep, ok := e.ObjectNew.(*flinkv1alpha1.FlinkDeployment)
			if !ok {
				return true
			}

			if oldDep.Generation != newDep.Generation {
				return true
			}
			if !oldDep.DeletionTimestamp.Equal(newDep.DeletionTimestamp) {
				return true
			}
			if !equality.Semantic.DeepEqual(oldDep.Finalizers, newDep.Finalizers) {
				return true
			}
			if !equality.Semantic.DeepEqual(oldDep.Labels, newDep.Labels) {
				return true
			}
			if !equality.Semantic.DeepEqual(oldDep.Annotations, newDep.Annotations) {
				return true
			}

			// Filter out status-only updates
			return false
		},
		GenericFunc: func(e event.GenericEvent) bool {
			return true
		},
	}
}
